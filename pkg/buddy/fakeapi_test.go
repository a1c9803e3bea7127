package buddy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type apiAssistant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`
}

type apiFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
	Bytes    int    `json:"bytes"`
}

type apiMessage struct {
	ID      string           `json:"id"`
	Role    string           `json:"role"`
	Content []apiContentPart `json:"content"`
}

type apiContentPart struct {
	Type string `json:"type"`
	Text *struct {
		Value string `json:"value"`
	} `json:"text,omitempty"`
}

func textPart(value string) apiContentPart {
	part := apiContentPart{Type: "text"}
	part.Text = &struct {
		Value string `json:"value"`
	}{Value: value}
	return part
}

// fakeAPI is an in-memory assistants backend served over httptest. Runs
// follow the scripted runStatuses sequence; reaching "completed" drops the
// canned reply into the thread.
type fakeAPI struct {
	mu sync.Mutex

	assistants map[string]*apiAssistant
	order      []string
	files      map[string]apiFile
	attached   map[string]map[string]bool
	threads    map[string]bool
	messages   map[string][]apiMessage
	runThread  map[string]string

	runStatuses []string
	pollCount   int
	reply       string

	uploads int
	nextID  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		assistants:  map[string]*apiAssistant{},
		files:       map[string]apiFile{},
		attached:    map[string]map[string]bool{},
		threads:     map[string]bool{},
		messages:    map[string][]apiMessage{},
		runThread:   map[string]string{},
		runStatuses: []string{"completed"},
		reply:       "pong",
	}
}

func (a *fakeAPI) id(prefix string) string {
	a.nextID++
	return fmt.Sprintf("%s_%d", prefix, a.nextID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	writeJSON(w, map[string]any{"error": map[string]any{"type": "invalid_request_error", "message": "not found"}})
}

func (a *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /assistants", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		out := make([]*apiAssistant, 0, len(a.order))
		for _, id := range a.order {
			out = append(out, a.assistants[id])
		}
		writeJSON(w, map[string]any{"data": out})
	})

	mux.HandleFunc("POST /assistants", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
			Name  string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		asst := &apiAssistant{ID: a.id("asst"), Name: req.Name, Model: req.Model}
		a.assistants[asst.ID] = asst
		a.order = append(a.order, asst.ID)
		writeJSON(w, asst)
	})

	mux.HandleFunc("POST /assistants/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Instructions string `json:"instructions"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		asst, ok := a.assistants[r.PathValue("id")]
		if !ok {
			notFound(w)
			return
		}
		asst.Instructions = req.Instructions
		writeJSON(w, asst)
	})

	mux.HandleFunc("DELETE /assistants/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		id := r.PathValue("id")
		if _, ok := a.assistants[id]; !ok {
			notFound(w)
			return
		}
		delete(a.assistants, id)
		delete(a.attached, id)
		for i, o := range a.order {
			if o == id {
				a.order = append(a.order[:i], a.order[i+1:]...)
				break
			}
		}
		writeJSON(w, map[string]any{"id": id, "deleted": true})
	})

	mux.HandleFunc("GET /assistants/{id}/files", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		var out []map[string]string
		for fileID := range a.attached[r.PathValue("id")] {
			out = append(out, map[string]string{"id": fileID, "assistant_id": r.PathValue("id")})
		}
		writeJSON(w, map[string]any{"data": out})
	})

	mux.HandleFunc("POST /assistants/{id}/files", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FileID string `json:"file_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		asstID := r.PathValue("id")
		if a.attached[asstID] == nil {
			a.attached[asstID] = map[string]bool{}
		}
		a.attached[asstID][req.FileID] = true
		writeJSON(w, map[string]string{"id": req.FileID, "assistant_id": asstID})
	})

	mux.HandleFunc("DELETE /assistants/{id}/files/{fileID}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.attached[r.PathValue("id")], r.PathValue("fileID"))
		writeJSON(w, map[string]any{"id": r.PathValue("fileID"), "deleted": true})
	})

	mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		purpose := r.URL.Query().Get("purpose")
		var out []apiFile
		for _, f := range a.files {
			if purpose == "" || f.Purpose == purpose {
				out = append(out, f)
			}
		}
		writeJSON(w, map[string]any{"data": out})
	})

	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		a.mu.Lock()
		defer a.mu.Unlock()
		a.uploads++
		f := apiFile{
			ID:       a.id("file"),
			Filename: header.Filename,
			Purpose:  r.FormValue("purpose"),
			Bytes:    len(data),
		}
		a.files[f.ID] = f
		writeJSON(w, f)
	})

	mux.HandleFunc("DELETE /files/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		id := r.PathValue("id")
		if _, ok := a.files[id]; !ok {
			notFound(w)
			return
		}
		delete(a.files, id)
		writeJSON(w, map[string]any{"id": id, "deleted": true})
	})

	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		id := a.id("thread")
		a.threads[id] = true
		writeJSON(w, map[string]string{"id": id})
	})

	mux.HandleFunc("GET /threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		id := r.PathValue("id")
		if !a.threads[id] {
			notFound(w)
			return
		}
		writeJSON(w, map[string]string{"id": id})
	})

	mux.HandleFunc("POST /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		threadID := r.PathValue("id")
		msg := apiMessage{ID: a.id("msg"), Role: req.Role, Content: []apiContentPart{textPart(req.Content)}}
		a.messages[threadID] = append([]apiMessage{msg}, a.messages[threadID]...)
		writeJSON(w, msg)
	})

	mux.HandleFunc("GET /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		msgs := a.messages[r.PathValue("id")]
		writeJSON(w, map[string]any{"data": msgs})
	})

	mux.HandleFunc("POST /threads/{id}/runs", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		runID := a.id("run")
		a.runThread[runID] = r.PathValue("id")
		a.pollCount = 0
		writeJSON(w, map[string]string{"id": runID, "status": "queued"})
	})

	mux.HandleFunc("GET /threads/{id}/runs/{runID}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		i := a.pollCount
		if i >= len(a.runStatuses) {
			i = len(a.runStatuses) - 1
		}
		a.pollCount++
		status := a.runStatuses[i]
		runID := r.PathValue("runID")
		if status == "completed" {
			threadID := a.runThread[runID]
			msg := apiMessage{ID: a.id("msg"), Role: "assistant", Content: []apiContentPart{textPart(a.reply)}}
			a.messages[threadID] = append([]apiMessage{msg}, a.messages[threadID]...)
		}
		writeJSON(w, map[string]string{"id": runID, "status": status})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
