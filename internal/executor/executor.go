// Package executor runs operation plans against a schema store. Execution
// is synchronous and best-effort: operations run in plan order, a failed
// operation records its error and never aborts its siblings, and the
// caller receives one result per operation.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

// Executor applies operation plans.
type Executor struct {
	store    schema.Store
	registry *registry.Registry
	logger   *slog.Logger

	// Bounded retry for lookups racing the store's field index.
	retryAttempts int
	retryDelay    time.Duration
	sleep         func(time.Duration)
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithRetry overrides the lookup retry bound and delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(e *Executor) {
		e.retryAttempts = attempts
		e.retryDelay = delay
	}
}

// WithSleep replaces the inter-retry sleep. Tests inject a no-op.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// New returns an executor over the given store and kind registry.
func New(store schema.Store, reg *registry.Registry, opts ...Option) *Executor {
	e := &Executor{
		store:         store,
		registry:      reg,
		logger:        slog.Default(),
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		sleep:         time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every operation in the plan, in order, and returns one
// result per operation. Artifacts created earlier in the same batch are
// visible to later operations through the run's indexes even before the
// store's own field index catches up.
func (e *Executor) Execute(ctx context.Context, plan *model.PlanDocument) []model.OpResult {
	r := &run{
		Executor:          e,
		createdFields:     make(map[string]*schema.Field),
		createdEntryTypes: make(map[string]*schema.EntryType),
	}

	results := make([]model.OpResult, 0, len(plan.Operations))
	for i, op := range plan.Operations {
		result := r.execute(ctx, i, op)
		result.Index = i
		result.Operation = op
		if result.Success {
			e.logger.Info("operation applied",
				"index", i, "type", op.Type.String(), "target", op.Target.String(),
				"message", result.Message)
		} else {
			e.logger.Warn("operation failed",
				"index", i, "type", op.Type.String(), "target", op.Target.String(),
				"message", result.Message)
		}
		results = append(results, result)
	}
	return results
}

// run is the per-batch state: the indexes of artifacts this batch created,
// keyed by handle.
type run struct {
	*Executor
	createdFields     map[string]*schema.Field
	createdEntryTypes map[string]*schema.EntryType
}

func (r *run) execute(ctx context.Context, index int, op model.Operation) model.OpResult {
	switch op.Type {
	case model.OpCreate:
		return r.executeCreate(ctx, op)
	case model.OpModify:
		return r.executeModify(ctx, op)
	case model.OpDelete:
		// Destructive deletes are deliberately not executed from plans;
		// removal happens through rollback, which knows what this tool
		// created and what is in use.
		return model.OpResult{
			Success: true,
			Message: fmt.Sprintf("Skipped delete of %s %q: plans do not delete artifacts, use rollback instead", op.Target.String(), op.TargetID),
		}
	}
	return failure(fmt.Sprintf("unknown operation type %q", op.Type))
}

func (r *run) executeCreate(ctx context.Context, op model.Operation) model.OpResult {
	if op.Create == nil {
		return failure("create operation has no payload")
	}
	switch op.Target {
	case model.TargetField:
		return r.createFieldOp(ctx, op.Create.Field)
	case model.TargetEntryType:
		return r.createEntryTypeOp(ctx, op.Create.EntryType)
	case model.TargetSection:
		return r.createSectionOp(ctx, op.Create.Section)
	case model.TargetCategoryGroup:
		return r.createCategoryGroupOp(ctx, op.Create.CategoryGroup)
	case model.TargetTagGroup:
		return r.createTagGroupOp(ctx, op.Create.TagGroup)
	}
	return failure(fmt.Sprintf("unknown create target %q", op.Target))
}

// failure builds a failed result with the given message.
func failure(message string) model.OpResult {
	return model.OpResult{Success: false, Message: message}
}

func failuref(format string, args ...any) model.OpResult {
	return failure(fmt.Sprintf(format, args...))
}
