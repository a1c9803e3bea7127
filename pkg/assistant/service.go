package assistant

import (
	"context"
	"io"

	"github.com/odvcencio/buddy/pkg/openai"
)

// ListLimit is the page size used for all remote listings. Listings are
// never paginated past the first page.
const ListLimit = 100

// Service is the remote assistant surface the engine drives. *openai.Client
// satisfies it; tests substitute fakes.
type Service interface {
	ListAssistants(ctx context.Context, limit int) ([]openai.Assistant, error)
	CreateAssistant(ctx context.Context, req openai.CreateAssistantRequest) (*openai.Assistant, error)
	ModifyAssistant(ctx context.Context, assistantID string, req openai.ModifyAssistantRequest) (*openai.Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) error

	CreateThread(ctx context.Context) (*openai.Thread, error)
	GetThread(ctx context.Context, threadID string) (*openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, req openai.CreateMessageRequest) (*openai.ThreadMessage, error)
	ListMessages(ctx context.Context, threadID string, limit int) ([]openai.ThreadMessage, error)
	CreateRun(ctx context.Context, threadID, assistantID string) (*openai.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*openai.Run, error)

	UploadFile(ctx context.Context, name string, content io.Reader, purpose string) (*openai.File, error)
	ListFiles(ctx context.Context, purpose string) ([]openai.File, error)
	DeleteFile(ctx context.Context, fileID string) error
	AttachFile(ctx context.Context, assistantID, fileID string) (*openai.AssistantFile, error)
	ListAssistantFiles(ctx context.Context, assistantID string, limit int) ([]openai.AssistantFile, error)
	DetachFile(ctx context.Context, assistantID, fileID string) error
}

var _ Service = (*openai.Client)(nil)
