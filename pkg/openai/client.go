// Package openai is the HTTP client for the remote assistant-hosting API:
// assistants, threads, messages, runs, files, and assistant-file
// attachments. It speaks the v1 Assistants surface over plain net/http.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// betaHeader opts requests into the assistants API surface.
const betaHeader = "assistants=v1"

const defaultTimeout = 5 * time.Minute

// Client calls the remote assistant service.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client using the supplied API key. networkLogDir is
// where request/response logs land when enabled; it should be the profile's
// own log directory.
func NewClient(apiKey, baseURL, networkLogDir string, networkLogsEnabled bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	transport := NewLoggingTransport(nil, networkLogDir, networkLogsEnabled)
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
	}
}

// SetTimeout updates the client timeout (0 disables timeout).
func (c *Client) SetTimeout(timeout time.Duration) {
	if c.httpClient != nil {
		c.httpClient.Timeout = timeout
	}
}

// --- Assistants

// ListAssistants returns up to limit assistants on the account.
func (c *Client) ListAssistants(ctx context.Context, limit int) ([]Assistant, error) {
	var out listEnvelope[Assistant]
	path := "/assistants?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateAssistant creates a new assistant.
func (c *Client) CreateAssistant(ctx context.Context, req CreateAssistantRequest) (*Assistant, error) {
	var out Assistant
	if err := c.doJSON(ctx, http.MethodPost, "/assistants", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ModifyAssistant updates an assistant in place.
func (c *Client) ModifyAssistant(ctx context.Context, assistantID string, req ModifyAssistantRequest) (*Assistant, error) {
	var out Assistant
	if err := c.doJSON(ctx, http.MethodPost, "/assistants/"+assistantID, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAssistant deletes an assistant.
func (c *Client) DeleteAssistant(ctx context.Context, assistantID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/assistants/"+assistantID, nil, nil)
}

// --- Threads

// CreateThread creates an empty thread.
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var out Thread
	if err := c.doJSON(ctx, http.MethodPost, "/threads", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetThread retrieves a thread; a non-2xx response means the thread does
// not exist or is inaccessible.
func (c *Client) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	var out Thread
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Messages

// CreateMessage attaches a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID string, req CreateMessageRequest) (*ThreadMessage, error) {
	var out ThreadMessage
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/messages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns up to limit messages of a thread, most recent first.
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error) {
	var out listEnvelope[ThreadMessage]
	path := "/threads/" + threadID + "/messages?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// --- Runs

// CreateRun starts a run of an assistant against a thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	var out Run
	req := CreateRunRequest{AssistantID: assistantID}
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/runs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun polls a run's status.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var out Run
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Files

// UploadFile uploads raw content to the account file store under the given
// display name and purpose.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, purpose string) (*File, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", purpose); err != nil {
		return nil, fmt.Errorf("writing purpose field: %w", err)
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("creating file field: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copying file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var out File
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFiles returns the account's files with the given purpose.
func (c *Client) ListFiles(ctx context.Context, purpose string) ([]File, error) {
	var out listEnvelope[File]
	path := "/files?purpose=" + url.QueryEscape(purpose)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DeleteFile deletes an account file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/files/"+fileID, nil, nil)
}

// --- Assistant files

// AttachFile attaches an account file to an assistant.
func (c *Client) AttachFile(ctx context.Context, assistantID, fileID string) (*AssistantFile, error) {
	var out AssistantFile
	req := struct {
		FileID string `json:"file_id"`
	}{FileID: fileID}
	if err := c.doJSON(ctx, http.MethodPost, "/assistants/"+assistantID+"/files", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAssistantFiles returns up to limit file attachments of an assistant.
func (c *Client) ListAssistantFiles(ctx context.Context, assistantID string, limit int) ([]AssistantFile, error) {
	var out listEnvelope[AssistantFile]
	path := "/assistants/" + assistantID + "/files?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DetachFile removes a file attachment from an assistant. The account file
// itself is left in place.
func (c *Client) DetachFile(ctx context.Context, assistantID, fileID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/assistants/"+assistantID+"/files/"+fileID, nil, nil)
}

// --- Plumbing

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", betaHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err == nil && len(data) > 0 {
		var envelope apiErrorEnvelope
		if jsonErr := json.Unmarshal(data, &envelope); jsonErr == nil && envelope.Error != nil {
			envelope.Error.StatusCode = resp.StatusCode
			return envelope.Error
		}
	}
	return apiErr
}
