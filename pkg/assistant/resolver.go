package assistant

import (
	"context"

	"github.com/odvcencio/buddy/pkg/bus"
	"github.com/odvcencio/buddy/pkg/errors"
	"github.com/odvcencio/buddy/pkg/openai"
)

// CreateConfig names the assistant to resolve and the model it runs on.
type CreateConfig struct {
	Name  string
	Model string
}

// Outcome describes how a resolution landed.
type Outcome int

const (
	// OutcomeLoaded means an existing assistant was reused as-is.
	OutcomeLoaded Outcome = iota
	// OutcomeCreated means no assistant matched the name and a fresh one
	// was created.
	OutcomeCreated
	// OutcomeRecreated means a matching assistant was torn down and
	// replaced.
	OutcomeRecreated
)

// decideOutcome is the resolution decision, kept pure so the three-way
// branch is testable without a remote.
func decideOutcome(exists, recreate bool) Outcome {
	switch {
	case exists && recreate:
		return OutcomeRecreated
	case exists:
		return OutcomeLoaded
	default:
		return OutcomeCreated
	}
}

// Resolver finds, creates, or replaces the remote assistant for a profile.
type Resolver struct {
	svc Service
	bus bus.Publisher
}

func NewResolver(svc Service, publisher bus.Publisher) *Resolver {
	return &Resolver{svc: svc, bus: publisher}
}

// Resolve returns the id of the assistant named in cfg, creating it when
// absent. With recreate set, any existing assistant and its attached files
// are deleted first so the caller always ends up with a fresh identity.
func (r *Resolver) Resolve(ctx context.Context, cfg CreateConfig, recreate bool) (string, error) {
	existing, err := r.firstByName(ctx, cfg.Name)
	if err != nil {
		return "", err
	}

	switch decideOutcome(existing != nil, recreate) {
	case OutcomeLoaded:
		r.bus.Publish(bus.AsstLoaded(cfg.Name, existing.ID))
		return existing.ID, nil
	case OutcomeRecreated:
		if err := r.Delete(ctx, existing.ID); err != nil {
			return "", err
		}
		r.bus.Publish(bus.AsstDeleted(cfg.Name, existing.ID))
		return r.Create(ctx, cfg)
	default:
		return r.Create(ctx, cfg)
	}
}

// Create provisions a new retrieval-enabled assistant and announces it.
func (r *Resolver) Create(ctx context.Context, cfg CreateConfig) (string, error) {
	created, err := r.svc.CreateAssistant(ctx, openai.CreateAssistantRequest{
		Model: cfg.Model,
		Name:  cfg.Name,
		Tools: []openai.Tool{{Type: openai.ToolTypeRetrieval}},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeRemoteAPI, "creating assistant").
			WithContext("name", cfg.Name)
	}
	r.bus.Publish(bus.AsstCreated(cfg.Name, created.ID))
	return created.ID, nil
}

// Delete removes an assistant after deleting every account file attached to
// it. Individual file deletions are best effort: a failure is announced and
// skipped so one stuck file never blocks the teardown.
func (r *Resolver) Delete(ctx context.Context, assistantID string) error {
	byName, err := FilesByName(ctx, r.svc, assistantID)
	if err != nil {
		return err
	}
	for name, file := range byName {
		if err := r.svc.DeleteFile(ctx, file.ID); err != nil {
			r.bus.Publish(bus.OrgFileCantDelete(name, file.ID, err))
			continue
		}
		r.bus.Publish(bus.OrgFileDeleted(name, file.ID))
	}
	if err := r.svc.DeleteAssistant(ctx, assistantID); err != nil {
		return errors.Wrap(err, errors.ErrCodeRemoteAPI, "deleting assistant").
			WithContext("assistant_id", assistantID)
	}
	return nil
}

// firstByName scans the first listing page and returns the first assistant
// whose name matches, or nil when none does.
func (r *Resolver) firstByName(ctx context.Context, name string) (*openai.Assistant, error) {
	assistants, err := r.svc.ListAssistants(ctx, ListLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteAPI, "listing assistants")
	}
	for i := range assistants {
		if assistants[i].Name == name {
			return &assistants[i], nil
		}
	}
	return nil, nil
}
