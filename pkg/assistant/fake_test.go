package assistant

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/odvcencio/buddy/pkg/bus"
	"github.com/odvcencio/buddy/pkg/openai"
)

// fakeService is an in-memory stand-in for the remote API. Error injection
// fields let tests script individual failures.
type fakeService struct {
	assistants []openai.Assistant
	files      map[string]openai.File
	attached   map[string][]string
	messages   map[string][]openai.ThreadMessage

	runStatuses  []openai.RunStatus
	pollCount    int
	dropMessages bool

	uploadCalls   int
	deleteFileErr map[string]error
	detachErr     error
	attachIDAs    string

	nextID int
}

func newFakeService() *fakeService {
	return &fakeService{
		files:         map[string]openai.File{},
		attached:      map[string][]string{},
		messages:      map[string][]openai.ThreadMessage{},
		deleteFileErr: map[string]error{},
	}
}

func (f *fakeService) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

// seedAttached registers an uploaded file already attached to an assistant.
func (f *fakeService) seedAttached(assistantID, fileID, filename string) {
	f.files[fileID] = openai.File{ID: fileID, Filename: filename, Purpose: openai.PurposeAssistants}
	f.attached[assistantID] = append(f.attached[assistantID], fileID)
}

func (f *fakeService) ListAssistants(_ context.Context, _ int) ([]openai.Assistant, error) {
	return append([]openai.Assistant(nil), f.assistants...), nil
}

func (f *fakeService) CreateAssistant(_ context.Context, req openai.CreateAssistantRequest) (*openai.Assistant, error) {
	a := openai.Assistant{ID: f.id("asst"), Name: req.Name, Model: req.Model, Tools: req.Tools}
	f.assistants = append(f.assistants, a)
	return &a, nil
}

func (f *fakeService) ModifyAssistant(_ context.Context, assistantID string, req openai.ModifyAssistantRequest) (*openai.Assistant, error) {
	for i := range f.assistants {
		if f.assistants[i].ID == assistantID {
			f.assistants[i].Instructions = req.Instructions
			return &f.assistants[i], nil
		}
	}
	return nil, &openai.APIError{StatusCode: 404, Message: "no such assistant"}
}

func (f *fakeService) DeleteAssistant(_ context.Context, assistantID string) error {
	for i := range f.assistants {
		if f.assistants[i].ID == assistantID {
			f.assistants = append(f.assistants[:i], f.assistants[i+1:]...)
			delete(f.attached, assistantID)
			return nil
		}
	}
	return &openai.APIError{StatusCode: 404, Message: "no such assistant"}
}

func (f *fakeService) CreateThread(_ context.Context) (*openai.Thread, error) {
	return &openai.Thread{ID: f.id("thread")}, nil
}

func (f *fakeService) GetThread(_ context.Context, threadID string) (*openai.Thread, error) {
	return &openai.Thread{ID: threadID}, nil
}

func (f *fakeService) CreateMessage(_ context.Context, threadID string, req openai.CreateMessageRequest) (*openai.ThreadMessage, error) {
	m := openai.ThreadMessage{
		ID:   f.id("msg"),
		Role: req.Role,
		Content: []openai.MessageContent{
			{Type: "text", Text: &openai.MessageText{Value: req.Content}},
		},
	}
	f.messages[threadID] = append([]openai.ThreadMessage{m}, f.messages[threadID]...)
	return &m, nil
}

// pushReply prepends an assistant message, as if a run produced it.
func (f *fakeService) pushReply(threadID, text string) {
	m := openai.ThreadMessage{
		ID:   f.id("msg"),
		Role: "assistant",
		Content: []openai.MessageContent{
			{Type: "text", Text: &openai.MessageText{Value: text}},
		},
	}
	f.messages[threadID] = append([]openai.ThreadMessage{m}, f.messages[threadID]...)
}

func (f *fakeService) ListMessages(_ context.Context, threadID string, limit int) ([]openai.ThreadMessage, error) {
	if f.dropMessages {
		return nil, nil
	}
	msgs := f.messages[threadID]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return append([]openai.ThreadMessage(nil), msgs...), nil
}

func (f *fakeService) CreateRun(_ context.Context, _, _ string) (*openai.Run, error) {
	return &openai.Run{ID: f.id("run"), Status: openai.RunStatusQueued}, nil
}

func (f *fakeService) GetRun(_ context.Context, _, runID string) (*openai.Run, error) {
	i := f.pollCount
	if i >= len(f.runStatuses) {
		i = len(f.runStatuses) - 1
	}
	f.pollCount++
	return &openai.Run{ID: runID, Status: f.runStatuses[i]}, nil
}

func (f *fakeService) UploadFile(_ context.Context, name string, content io.Reader, purpose string) (*openai.File, error) {
	f.uploadCalls++
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	file := openai.File{ID: f.id("file"), Filename: name, Purpose: purpose, Bytes: len(data)}
	f.files[file.ID] = file
	return &file, nil
}

func (f *fakeService) ListFiles(_ context.Context, purpose string) ([]openai.File, error) {
	var out []openai.File
	for _, file := range f.files {
		if purpose == "" || file.Purpose == purpose {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeService) DeleteFile(_ context.Context, fileID string) error {
	if err := f.deleteFileErr[fileID]; err != nil {
		return err
	}
	delete(f.files, fileID)
	return nil
}

func (f *fakeService) AttachFile(_ context.Context, assistantID, fileID string) (*openai.AssistantFile, error) {
	f.attached[assistantID] = append(f.attached[assistantID], fileID)
	attachedID := fileID
	if f.attachIDAs != "" {
		attachedID = f.attachIDAs
	}
	return &openai.AssistantFile{ID: attachedID, AssistantID: assistantID}, nil
}

func (f *fakeService) ListAssistantFiles(_ context.Context, assistantID string, _ int) ([]openai.AssistantFile, error) {
	var out []openai.AssistantFile
	for _, id := range f.attached[assistantID] {
		out = append(out, openai.AssistantFile{ID: id, AssistantID: assistantID})
	}
	return out, nil
}

func (f *fakeService) DetachFile(_ context.Context, assistantID, fileID string) error {
	if f.detachErr != nil {
		return f.detachErr
	}
	ids := f.attached[assistantID]
	for i, id := range ids {
		if id == fileID {
			f.attached[assistantID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeClock records sleeps and never blocks.
type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return nil
}

// drainEvents empties a subscription's buffer into a slice of event types.
func drainEvents(sub *bus.Subscription) []bus.EventType {
	var types []bus.EventType
	for {
		select {
		case evt := <-sub.Events():
			types = append(types, evt.Type)
		default:
			return types
		}
	}
}
