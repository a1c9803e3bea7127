package openai

import "fmt"

// PurposeAssistants is the file purpose used for assistant knowledge files.
const PurposeAssistants = "assistants"

// ToolTypeRetrieval enables file retrieval for an assistant.
const ToolTypeRetrieval = "retrieval"

// Tool is one capability granted to an assistant.
type Tool struct {
	Type string `json:"type"`
}

// Assistant is a remote named, model-bound configuration.
type Assistant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`
	Tools        []Tool `json:"tools,omitempty"`
}

// CreateAssistantRequest creates a new assistant.
type CreateAssistantRequest struct {
	Model        string `json:"model"`
	Name         string `json:"name,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Tools        []Tool `json:"tools,omitempty"`
}

// ModifyAssistantRequest updates fields on an existing assistant. Empty
// fields are left untouched remotely.
type ModifyAssistantRequest struct {
	Instructions string `json:"instructions,omitempty"`
}

// Thread is a durable remote conversation.
type Thread struct {
	ID string `json:"id"`
}

// MessageText is the text payload of a message content part.
type MessageText struct {
	Value string `json:"value"`
}

// MessageContent is one content part of a thread message.
type MessageContent struct {
	Type string       `json:"type"` // "text" or "image_file"
	Text *MessageText `json:"text,omitempty"`
}

// ThreadMessage is one message in a thread.
type ThreadMessage struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"`
	CreatedAt int64            `json:"created_at"`
	Content   []MessageContent `json:"content"`
}

// CreateMessageRequest attaches a message to a thread.
type CreateMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RunStatus is the remote-reported lifecycle state of a run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusExpired        RunStatus = "expired"
)

// Run is one execution of an assistant against a thread.
type Run struct {
	ID     string    `json:"id"`
	Status RunStatus `json:"status"`
}

// CreateRunRequest starts a run on a thread.
type CreateRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

// File is an account-owned uploaded file.
type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
	Bytes    int    `json:"bytes"`
}

// AssistantFile is the attachment of an account file to an assistant.
// The listing endpoint exposes ids only, never filenames.
type AssistantFile struct {
	ID          string `json:"id"`
	AssistantID string `json:"assistant_id"`
}

// APIError is a structured error returned by the remote service.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openai: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("openai: request failed (status %d)", e.StatusCode)
}

type apiErrorEnvelope struct {
	Error *APIError `json:"error"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}
