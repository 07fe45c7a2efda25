// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

// Package pipeline provides step registration and preset workflow building.
package pipeline

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/host"
	"github.com/similigh/rulebot/internal/rules"
)

// Registry holds registered step factories.
// Step factories create Step instances, allowing for dependency injection.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StepFactory
}

// StepFactory is a function that creates a Step.
// It receives dependencies (like clients, config) as parameters.
type StepFactory func(deps *Dependencies) (Step, error)

// Dependencies holds the dependencies that can be injected into steps.
type Dependencies struct {
	// Host reads item state. Mutations go through Actions.
	Host host.Host

	// Actions executes the plan; it logs instead of mutating in dry-run mode.
	Actions actions.Executor

	// Rules is the compiled triage rule set.
	Rules []rules.Rule

	// BotUsers are extra logins treated as bots by the gatekeeper.
	BotUsers []string

	DryRun bool
	Logger *slog.Logger
}

// NewRegistry creates a new step registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]StepFactory),
	}
}

// Register adds a step factory to the registry.
func (r *Registry) Register(name string, factory StepFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a step factory by name.
func (r *Registry) Get(name string) (StepFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// BuildFromNames creates a pipeline from a list of step names.
func (r *Registry) BuildFromNames(names []string, deps *Dependencies) (*Pipeline, error) {
	var steps []Step
	for _, name := range names {
		factory, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown step: %s", name)
		}
		step, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create step '%s': %w", name, err)
		}
		steps = append(steps, step)
	}
	return New(steps...), nil
}

// Preset names.
const (
	PresetIssueOpened       = "issue-opened"
	PresetPullRequestOpened = "pull-request-opened"
	PresetPullRequestEdited = "pull-request-edited"
)

// Presets defines the built-in workflow presets.
var Presets = map[string][]string{
	// issue-opened: triage a new issue
	PresetIssueOpened: {
		"gatekeeper",
		"fetch_state",
		"fetch_participants",
		"triage_rules",
		"triage_labels",
		"triage_comment",
		"action_executor",
	},

	// pull-request-opened: fix the title, check editorial rules, then triage
	PresetPullRequestOpened: {
		"gatekeeper",
		"title_normalizer",
		"fetch_state",
		"fetch_participants",
		"editorial_check",
		"editorial_comment",
		"triage_rules",
		"triage_labels",
		"triage_comment",
		"action_executor",
	},

	// pull-request-edited: re-check editorial rules only
	PresetPullRequestEdited: {
		"gatekeeper",
		"fetch_state",
		"editorial_check",
		"editorial_comment",
		"action_executor",
	},
}

// GetPreset returns the step names for a preset workflow.
func GetPreset(name string) ([]string, bool) {
	steps, ok := Presets[name]
	return steps, ok
}

// PresetForEvent maps a webhook event and action onto a preset name.
func PresetForEvent(event, action string) (string, bool) {
	switch {
	case event == "issues" && action == "opened":
		return PresetIssueOpened, true
	case event == "pull_request" && action == "opened":
		return PresetPullRequestOpened, true
	case event == "pull_request" && action == "edited":
		return PresetPullRequestEdited, true
	}
	return "", false
}
