package assistant

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/odvcencio/buddy/pkg/bus"
	"github.com/odvcencio/buddy/pkg/errors"
	"github.com/odvcencio/buddy/pkg/logging"
	"github.com/odvcencio/buddy/pkg/openai"
)

// FilesByName maps display filename to account file for everything attached
// to one assistant. The attachment listing carries ids only, so it is joined
// on id against the account-wide file listing to recover filenames. The map
// is recomputed on every call rather than cached; remote state is the only
// source of truth.
func FilesByName(ctx context.Context, svc Service, assistantID string) (map[string]openai.File, error) {
	attached, err := svc.ListAssistantFiles(ctx, assistantID, ListLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteAPI, "listing assistant files").
			WithContext("assistant_id", assistantID)
	}
	attachedIDs := make(map[string]bool, len(attached))
	for _, af := range attached {
		attachedIDs[af.ID] = true
	}

	orgFiles, err := svc.ListFiles(ctx, openai.PurposeAssistants)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteAPI, "listing account files")
	}

	byName := make(map[string]openai.File)
	for _, f := range orgFiles {
		if attachedIDs[f.ID] {
			byName[f.Filename] = f
		}
	}
	return byName, nil
}

// FileSync pushes local knowledge files to an assistant.
type FileSync struct {
	svc     Service
	bus     bus.Publisher
	log     *logging.Logger
	warnOut io.Writer
}

// NewFileSync builds a synchronizer. log may be nil; unexpected-state
// warnings then fall back to stderr.
func NewFileSync(svc Service, publisher bus.Publisher, log *logging.Logger) *FileSync {
	return &FileSync{svc: svc, bus: publisher, log: log, warnOut: os.Stderr}
}

// UploadInstructions replaces the assistant's instructions with the given
// text.
func (s *FileSync) UploadInstructions(ctx context.Context, assistantID, instructions string) error {
	_, err := s.svc.ModifyAssistant(ctx, assistantID, openai.ModifyAssistantRequest{
		Instructions: instructions,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRemoteAPI, "uploading instructions").
			WithContext("assistant_id", assistantID)
	}
	return nil
}

// UploadFileByName uploads the file at path and attaches it to the
// assistant, keyed by its base filename. When a file with the same name is
// already attached and force is false the remote copy is reused and nothing
// is transferred. With force set, any prior copy is removed first; removal
// failures are announced and tolerated since the fresh upload supersedes the
// stale remote state anyway. Returns the resulting account file and whether
// an upload actually happened.
func (s *FileSync) UploadFileByName(ctx context.Context, assistantID, path string, force bool) (openai.File, bool, error) {
	name := filepath.Base(path)

	byName, err := FilesByName(ctx, s.svc, assistantID)
	if err != nil {
		return openai.File{}, false, err
	}
	prior, exists := byName[name]

	if exists && !force {
		return prior, false, nil
	}
	if exists {
		if err := s.svc.DeleteFile(ctx, prior.ID); err != nil {
			s.bus.Publish(bus.OrgFileCantDelete(name, prior.ID, err))
		} else {
			s.bus.Publish(bus.OrgFileDeleted(name, prior.ID))
		}
		if err := s.svc.DetachFile(ctx, assistantID, prior.ID); err != nil {
			s.bus.Publish(bus.AsstFileCantRemove(assistantID, prior.ID, err))
		}
	}

	s.bus.Publish(bus.OrgFileUploading(name))

	content, err := os.Open(path)
	if err != nil {
		return openai.File{}, false, errors.Wrap(err, errors.ErrCodeBundleIO, "opening file for upload").
			WithContext("path", path)
	}
	defer content.Close()

	uploaded, err := s.svc.UploadFile(ctx, name, content, openai.PurposeAssistants)
	if err != nil {
		return openai.File{}, false, errors.Wrap(err, errors.ErrCodeRemoteAPI, "uploading file").
			WithContext("file_name", name)
	}
	s.bus.Publish(bus.OrgFileUploaded(name, uploaded.ID))

	attachment, err := s.svc.AttachFile(ctx, assistantID, uploaded.ID)
	if err != nil {
		return openai.File{}, false, errors.Wrap(err, errors.ErrCodeRemoteAPI, "attaching file").
			WithContext("file_id", uploaded.ID).
			WithContext("assistant_id", assistantID)
	}
	if attachment.ID != uploaded.ID {
		// The remote reported an association under a different id than the
		// file it was asked to attach. Never swallow this, logger or not.
		if s.log != nil {
			s.log.Warn(logging.CategoryFiles, "attach_id_mismatch",
				"attachment id differs from uploaded file id", map[string]any{
					"error_code":    string(errors.ErrCodeFileAttachMismatch),
					"uploaded_id":   uploaded.ID,
					"attachment_id": attachment.ID,
					"file_name":     name,
				})
		} else {
			fmt.Fprintf(s.warnOut, "warning: [%s] attachment id %s differs from uploaded file id %s for %s\n",
				errors.ErrCodeFileAttachMismatch, attachment.ID, uploaded.ID, name)
		}
	}
	return *uploaded, true, nil
}
