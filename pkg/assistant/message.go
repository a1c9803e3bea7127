package assistant

import (
	"github.com/odvcencio/buddy/pkg/errors"
	"github.com/odvcencio/buddy/pkg/openai"
)

// RoleUser is the message role for user-authored turns.
const RoleUser = "user"

const contentTypeText = "text"

// ExtractText returns the text of a thread message. Messages with no
// content or whose first part is not text cannot be rendered as a reply.
func ExtractText(msg openai.ThreadMessage) (string, error) {
	if len(msg.Content) == 0 {
		return "", errors.New(errors.ErrCodeReplyUnreadable, "message has no content").
			WithContext("message_id", msg.ID)
	}
	first := msg.Content[0]
	if first.Type != contentTypeText || first.Text == nil {
		return "", errors.New(errors.ErrCodeReplyUnreadable, "message content is not text").
			WithContext("message_id", msg.ID).
			WithContext("content_type", first.Type)
	}
	return first.Text.Value, nil
}
