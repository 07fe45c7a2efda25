// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package steps

import (
	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/metrics"
	"github.com/similigh/rulebot/internal/reconcile"
	"github.com/similigh/rulebot/internal/rules"
	"github.com/similigh/rulebot/internal/triage"
)

const metaTriaged = "triaged"

// triageActive reports whether the triage flavor runs for this item. An empty rule set
// turns triage into a no-op, fallback label included.
func triageActive(ctx *pipeline.Context, ruleCount int) bool {
	return ctx.Config.Features.TriageIssuesAndPullRequests && ruleCount > 0
}

// TriageRules evaluates every configured rule against the item.
type TriageRules struct {
	rules []rules.Rule
}

// NewTriageRules creates a new triage_rules step.
func NewTriageRules(deps *pipeline.Dependencies) *TriageRules {
	return &TriageRules{rules: deps.Rules}
}

// Name returns the step name.
func (s *TriageRules) Name() string {
	return "triage_rules"
}

// Run fills ctx.Outcome.
func (s *TriageRules) Run(ctx *pipeline.Context) error {
	if !triageActive(ctx, len(s.rules)) {
		return nil
	}

	ctx.Outcome = triage.Evaluate(ctx.Item.Title, ctx.Item.Body, ctx.Item.Author, s.rules)
	ctx.Metadata[metaTriaged] = true
	ctx.Result.TriggeredRules = ctx.Outcome.TriggeredRules
	for _, id := range ctx.Outcome.TriggeredRules {
		metrics.RuleMatches.WithLabelValues(id).Inc()
	}

	ctx.Logger.Info("triage rules evaluated", "step", s.Name(), "triggered", ctx.Outcome.TriggeredRules)
	return nil
}

// TriageLabels drops already participating users from the mentions and plans the label additions.
type TriageLabels struct{}

// NewTriageLabels creates a new triage_labels step. The policy is read from the run config.
func NewTriageLabels(deps *pipeline.Dependencies) *TriageLabels {
	return &TriageLabels{}
}

// Name returns the step name.
func (s *TriageLabels) Name() string {
	return "triage_labels"
}

// Run plans a single AddLabels action when anything is left after reduction.
func (s *TriageLabels) Run(ctx *pipeline.Context) error {
	if triaged, _ := ctx.Metadata[metaTriaged].(bool); !triaged {
		return nil
	}

	ctx.Outcome.Mentions = ctx.Outcome.Mentions.WithoutParticipants(ctx.Snapshot.Participants)
	ctx.Result.Mentions = ctx.Outcome.Mentions.String()

	policy := triage.PolicyFromConfig(ctx.Config.Triage)
	labels := triage.ReduceLabels(ctx.Outcome.Labels, ctx.Snapshot.Labels, ctx.Outcome.Mentions, policy)
	ctx.Result.LabelsToAdd = labels
	if len(labels) == 0 {
		return nil
	}

	ctx.AddAction(actions.Action{Kind: actions.AddLabels, Labels: labels})
	return nil
}

// TriageComment reconciles the generic bot comment with the rule comments and mentions.
type TriageComment struct{}

// NewTriageComment creates a new triage_comment step.
func NewTriageComment(deps *pipeline.Dependencies) *TriageComment {
	return &TriageComment{}
}

// Name returns the step name.
func (s *TriageComment) Name() string {
	return "triage_comment"
}

// Run plans at most one create, update or delete of the triage comment.
func (s *TriageComment) Run(ctx *pipeline.Context) error {
	if triaged, _ := ctx.Metadata[metaTriaged].(bool); !triaged {
		return nil
	}

	entries := triage.CommentEntries(ctx.Outcome.Comments, ctx.Outcome.Mentions)
	decision := reconcile.Reconcile(ctx.Snapshot.Comments, reconcile.BotMarker, reconcile.TriageHeader, entries)
	ctx.Logger.Debug("triage comment decision", "step", s.Name(), "decision", decision.String())

	if a, ok := decision.PlanAction(); ok {
		ctx.AddAction(a)
	}
	return nil
}
