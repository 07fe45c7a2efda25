// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-15

// Package pipeline provides the core pipeline engine for rulebot.
// It defines the Step interface and Context structure used by all pipeline steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/editorial"
	"github.com/similigh/rulebot/internal/host"
	"github.com/similigh/rulebot/internal/triage"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., feature disabled, bot sender).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic.
	// It should return ErrSkipPipeline to stop the pipeline gracefully,
	// or any other error to indicate failure.
	Run(ctx *Context) error
}

// ItemKind distinguishes issues from pull requests.
type ItemKind string

const (
	KindIssue       ItemKind = "issue"
	KindPullRequest ItemKind = "pull_request"
)

// Item is the issue or pull request being processed.
type Item struct {
	Org        string   `json:"org"`
	Repo       string   `json:"repo"`
	Number     int      `json:"number"`
	Kind       ItemKind `json:"kind"`
	Title      string   `json:"title"`
	Body       string   `json:"body,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	Author     string   `json:"author"`
	BaseBranch string   `json:"base_branch,omitempty"`
	URL        string   `json:"url,omitempty"`

	// EventType and EventAction name the webhook event ("pull_request", "edited").
	EventType   string `json:"event_type,omitempty"`
	EventAction string `json:"event_action,omitempty"`
	// Sender is the login that triggered the event.
	Sender string `json:"sender,omitempty"`
}

// Ref returns the host reference of the item.
func (i *Item) Ref() host.ItemRef {
	return host.ItemRef{Org: i.Org, Repo: i.Repo, Number: i.Number}
}

// IsPullRequest reports whether the item is a pull request.
func (i *Item) IsPullRequest() bool {
	return i.Kind == KindPullRequest
}

// Snapshot is the host state read at the start of a run.
type Snapshot struct {
	Labels       []string
	Comments     []host.Comment
	Participants []string
	// Fetched is set once labels and comments have been read.
	Fetched bool
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	Item       string `json:"item"`
	RunID      string `json:"run_id"`
	Preset     string `json:"preset,omitempty"`
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`

	NormalizedTitle string   `json:"normalized_title,omitempty"`
	TitleViolations []string `json:"title_violations,omitempty"`
	BodyViolations  []string `json:"body_violations,omitempty"`
	TriggeredRules  []string `json:"triggered_rules,omitempty"`
	LabelsToAdd     []string `json:"labels_to_add,omitempty"`
	Mentions        string   `json:"mentions,omitempty"`

	// Plan is every action decided by the run, Executed what was actually carried out.
	Plan     []actions.Action `json:"plan,omitempty"`
	Executed []actions.Record `json:"executed,omitempty"`
	DryRun   bool             `json:"dry_run"`
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// RunID identifies this run in logs and results.
	RunID string

	// Logger carries run_id and item attributes.
	Logger *slog.Logger

	// Item is the item being processed.
	Item *Item

	// Config is the loaded configuration.
	Config *config.Config

	// Snapshot holds host state fetched by fetch_state and fetch_participants.
	Snapshot Snapshot

	// Outcome is the triage evaluation.
	Outcome triage.Outcome

	// Violations holds the editorial violations of the item.
	Violations []editorial.Violation

	// Plan holds the actions decided so far, executed by action_executor.
	Plan []actions.Action

	// Result accumulates the processing results.
	Result *Result

	// Metadata allows steps to pass arbitrary data to subsequent steps.
	Metadata map[string]interface{}
}

// NewContext creates a new pipeline context for an item.
func NewContext(ctx context.Context, item *Item, cfg *config.Config, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	ref := item.Ref()
	return &Context{
		Ctx:      ctx,
		RunID:    runID,
		Logger:   logger.With("run_id", runID, "item", ref.String()),
		Item:     item,
		Config:   cfg,
		Result:   &Result{Item: ref.String(), RunID: runID},
		Metadata: make(map[string]interface{}),
	}
}

// Skip marks the run as skipped and returns ErrSkipPipeline.
func (c *Context) Skip(reason string) error {
	c.Result.Skipped = true
	c.Result.SkipReason = reason
	c.Logger.Info("skipping item", "reason", reason)
	return ErrSkipPipeline
}

// AddAction appends an action to the plan.
func (c *Context) AddAction(a actions.Action) {
	c.Plan = append(c.Plan, a)
	c.Result.Plan = append(c.Result.Plan, a)
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipPipeline, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := ctx.Ctx.Err(); err != nil {
			return err
		}
		ctx.Logger.Debug("running step", "step", step.Name())
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
