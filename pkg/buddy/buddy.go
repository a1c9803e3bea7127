// Package buddy is the high-level engine: it binds a profile directory to a
// remote assistant, keeps instructions and knowledge bundles in sync, and
// runs conversations against it. It is scoped to single-user, on-device use.
package buddy

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/buddy/pkg/assistant"
	"github.com/odvcencio/buddy/pkg/bus"
	"github.com/odvcencio/buddy/pkg/config"
	"github.com/odvcencio/buddy/pkg/errors"
	"github.com/odvcencio/buddy/pkg/logging"
	"github.com/odvcencio/buddy/pkg/openai"
	"github.com/odvcencio/buddy/pkg/paths"
)

// Options carries optional collaborators for InitFromDir. Zero values get
// sensible defaults; tests inject a fake Service here.
type Options struct {
	Service assistant.Service
	Bus     *bus.Bus
	Logger  *logging.Logger
}

// Buddy ties a profile directory to its remote assistant.
type Buddy struct {
	dir    string
	cfg    *config.Config
	svc    assistant.Service
	bus    *bus.Bus
	log    *logging.Logger
	asstID string

	files *assistant.FileSync
	exec  *assistant.Executor
}

// InitFromDir loads the profile at dir, resolves its assistant (recreating
// it when asked), pushes instructions, and syncs knowledge bundles. The
// returned Buddy is ready to chat.
func InitFromDir(ctx context.Context, dir string, recreate bool, opts Options) (*Buddy, error) {
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, err
	}

	eventBus := opts.Bus
	if eventBus == nil {
		eventBus = bus.New()
	}

	svc := opts.Service
	if svc == nil {
		key, err := cfg.APIKey()
		if err != nil {
			return nil, err
		}
		svc = openai.NewClient(key, cfg.API.BaseURL, paths.LogsDir(dir), cfg.Diagnostics.NetworkLogsEnabled)
	}

	resolver := assistant.NewResolver(svc, eventBus)
	asstID, err := resolver.Resolve(ctx, assistant.CreateConfig{Name: cfg.Name, Model: cfg.Model}, recreate)
	if err != nil {
		return nil, err
	}

	b := &Buddy{
		dir:    dir,
		cfg:    cfg,
		svc:    svc,
		bus:    eventBus,
		log:    opts.Logger,
		asstID: asstID,
		files:  assistant.NewFileSync(svc, eventBus, opts.Logger),
		exec:   assistant.NewExecutor(svc, cfg.PollInterval(), cfg.MaxWait()),
	}

	if _, err := b.UploadInstructions(ctx); err != nil {
		return nil, err
	}
	if _, err := b.UploadFiles(ctx, false); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buddy) Name() string {
	return b.cfg.Name
}

func (b *Buddy) AssistantID() string {
	return b.asstID
}

// Subscribe returns a subscription on the buddy's event bus.
func (b *Buddy) Subscribe() *bus.Subscription {
	return b.bus.Subscribe()
}

// UploadInstructions pushes the profile's instructions file to the
// assistant. Returns false without error when the profile has none.
func (b *Buddy) UploadInstructions(ctx context.Context) (bool, error) {
	if b.cfg.InstructionsFile == "" {
		return false, nil
	}
	path := filepath.Join(b.dir, b.cfg.InstructionsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeConfigLoad, "reading instructions file").
			WithContext("path", path)
	}
	if err := b.files.UploadInstructions(ctx, b.asstID, string(data)); err != nil {
		return false, err
	}
	b.bus.Publish(bus.InstUploaded())
	return true, nil
}

// UploadFiles regenerates every configured bundle artifact and uploads the
// ones the assistant does not already have. With recreate set, every bundle
// is force-reuploaded. Returns how many bundles were actually transferred.
func (b *Buddy) UploadFiles(ctx context.Context, recreate bool) (int, error) {
	filesDir := paths.FilesDir(b.dir)
	if err := paths.EnsureDir(filesDir); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeBundleIO, "creating files dir").
			WithContext("dir", filesDir)
	}

	if err := b.cleanStaleArtifacts(filesDir); err != nil {
		return 0, err
	}

	uploaded := 0
	for _, bundle := range b.cfg.FileBundles {
		srcDir := filepath.Join(b.dir, bundle.SrcDir)
		info, err := os.Stat(srcDir)
		if err != nil || !info.IsDir() {
			continue
		}

		files, err := sourceFiles(srcDir, bundle.SrcGlobs)
		if err != nil {
			return uploaded, err
		}
		if len(files) == 0 {
			continue
		}

		name := artifactName(b.cfg.Name, bundle.BundleName, b.asstID, bundle.DstExt)
		dst := filepath.Join(filesDir, name)

		_, statErr := os.Stat(dst)
		force := recreate || statErr != nil

		// Regenerated on every sync; the remote listing decides whether a
		// transfer is needed.
		content, err := bundleContent(files)
		if err != nil {
			return uploaded, err
		}
		if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
			return uploaded, errors.Wrap(err, errors.ErrCodeBundleIO, "writing bundle artifact").
				WithContext("path", dst)
		}
		if b.log != nil {
			b.log.Info(logging.CategoryFiles, "bundle_written", "bundle artifact generated", map[string]any{
				"bundle": bundle.BundleName,
				"files":  len(files),
				"tokens": countTokens(content),
			})
		}

		_, didUpload, err := b.files.UploadFileByName(ctx, b.asstID, dst, force)
		if err != nil {
			return uploaded, err
		}
		if didUpload {
			uploaded++
		}
	}
	return uploaded, nil
}

// cleanStaleArtifacts removes bundle artifacts left behind by a previous
// assistant identity. Deletion refuses anything that does not resolve under
// the profile's data dir.
func (b *Buddy) cleanStaleArtifacts(filesDir string) error {
	entries, err := os.ReadDir(filesDir)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBundleIO, "listing files dir").
			WithContext("dir", filesDir)
	}
	dataDir := paths.DataDir(b.dir)
	for _, entry := range entries {
		if entry.IsDir() || strings.Contains(entry.Name(), b.asstID) {
			continue
		}
		path := filepath.Join(filesDir, entry.Name())
		rel, err := filepath.Rel(dataDir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return errors.New(errors.ErrCodeRefuseDelete, "refusing to delete file outside data dir").
				WithContext("path", path)
		}
		if err := os.Remove(path); err != nil {
			return errors.Wrap(err, errors.ErrCodeBundleIO, "removing stale artifact").
				WithContext("path", path)
		}
	}
	return nil
}

// LoadOrCreateConv returns the persisted conversation for this profile,
// creating a fresh thread when none is stored or recreate is set. A stored
// conversation whose thread no longer exists remotely is an error, not a
// silent reset.
func (b *Buddy) LoadOrCreateConv(ctx context.Context, recreate bool) (Conv, error) {
	dataDir := paths.DataDir(b.dir)
	if err := paths.EnsureDir(dataDir); err != nil {
		return Conv{}, errors.Wrap(err, errors.ErrCodeConvState, "creating data dir").
			WithContext("dir", dataDir)
	}
	convFile := paths.ConvFile(b.dir)

	if recreate {
		if err := os.Remove(convFile); err != nil && !os.IsNotExist(err) {
			return Conv{}, errors.Wrap(err, errors.ErrCodeConvState, "removing conversation state").
				WithContext("path", convFile)
		}
	}

	if conv, err := loadConv(convFile); err == nil && conv.ThreadID != "" {
		if _, err := b.svc.GetThread(ctx, conv.ThreadID); err != nil {
			return Conv{}, errors.Wrap(err, errors.ErrCodeConvStale, "stored conversation thread not found").
				WithContext("thread_id", conv.ThreadID)
		}
		b.bus.Publish(bus.ConvLoaded())
		return conv, nil
	}

	thread, err := b.svc.CreateThread(ctx)
	if err != nil {
		return Conv{}, errors.Wrap(err, errors.ErrCodeRemoteAPI, "creating thread")
	}
	conv := Conv{ThreadID: thread.ID}
	if err := saveConv(convFile, conv); err != nil {
		return Conv{}, err
	}
	b.bus.Publish(bus.ConvCreated())
	return conv, nil
}

// Chat sends msg on the conversation and returns the assistant's reply.
func (b *Buddy) Chat(ctx context.Context, conv Conv, msg string) (string, error) {
	return b.exec.RunTurn(ctx, b.asstID, conv.ThreadID, msg)
}
