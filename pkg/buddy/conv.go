package buddy

import (
	"encoding/json"
	"os"

	"github.com/odvcencio/buddy/pkg/errors"
)

// Conv is a persisted conversation binding to a remote thread.
type Conv struct {
	ThreadID string `json:"thread_id"`
}

func loadConv(path string) (Conv, error) {
	var conv Conv
	data, err := os.ReadFile(path)
	if err != nil {
		return conv, errors.Wrap(err, errors.ErrCodeConvState, "reading conversation state").
			WithContext("path", path)
	}
	if err := json.Unmarshal(data, &conv); err != nil {
		return conv, errors.Wrap(err, errors.ErrCodeConvState, "parsing conversation state").
			WithContext("path", path)
	}
	return conv, nil
}

func saveConv(path string, conv Conv) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConvState, "encoding conversation state")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeConvState, "writing conversation state").
			WithContext("path", path)
	}
	return nil
}
