// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package steps

import (
	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/editorial"
	"github.com/similigh/rulebot/internal/reconcile"
)

const (
	metaOriginalTitle    = "original_title"
	metaEditorialChecked = "editorial_checked"
)

// TitleNormalizer plans a title update when the pull request title is not canonical.
type TitleNormalizer struct{}

// NewTitleNormalizer creates a new title_normalizer step.
func NewTitleNormalizer(deps *pipeline.Dependencies) *TitleNormalizer {
	return &TitleNormalizer{}
}

// Name returns the step name.
func (s *TitleNormalizer) Name() string {
	return "title_normalizer"
}

// Run normalizes the title against the base branch. Later steps see the normalized title.
func (s *TitleNormalizer) Run(ctx *pipeline.Context) error {
	if !ctx.Item.IsPullRequest() || !ctx.Config.Features.CheckEditorialRules {
		return nil
	}

	original := ctx.Item.Title
	normalized := editorial.NormalizeTitle(original, ctx.Item.BaseBranch)
	if normalized == original {
		return nil
	}

	ctx.Logger.Info("normalizing title", "step", s.Name(), "from", original, "to", normalized)
	ctx.Metadata[metaOriginalTitle] = original
	ctx.Item.Title = normalized
	ctx.Result.NormalizedTitle = normalized
	ctx.AddAction(actions.Action{Kind: actions.SetTitle, Title: normalized})
	return nil
}

// EditorialCheck detects editorial violations on pull requests.
type EditorialCheck struct{}

// NewEditorialCheck creates a new editorial_check step.
func NewEditorialCheck(deps *pipeline.Dependencies) *EditorialCheck {
	return &EditorialCheck{}
}

// Name returns the step name.
func (s *EditorialCheck) Name() string {
	return "editorial_check"
}

// Run fills ctx.Violations.
func (s *EditorialCheck) Run(ctx *pipeline.Context) error {
	if !ctx.Item.IsPullRequest() || !ctx.Config.Features.CheckEditorialRules {
		return nil
	}

	ctx.Violations = editorial.Detect(ctx.Item.Title, ctx.Item.Body)
	ctx.Metadata[metaEditorialChecked] = true
	ctx.Result.TitleViolations = editorial.TitleMessages(ctx.Violations)
	ctx.Result.BodyViolations = editorial.BodyMessages(ctx.Violations)

	if len(ctx.Violations) > 0 {
		ctx.Logger.Info("editorial violations found", "step", s.Name(),
			"title", len(ctx.Result.TitleViolations), "body", len(ctx.Result.BodyViolations))
	}
	return nil
}

// EditorialComment reconciles the editorial bot comment with the detected violations.
type EditorialComment struct{}

// NewEditorialComment creates a new editorial_comment step.
func NewEditorialComment(deps *pipeline.Dependencies) *EditorialComment {
	return &EditorialComment{}
}

// Name returns the step name.
func (s *EditorialComment) Name() string {
	return "editorial_comment"
}

// Run plans at most one create, update or delete of the editorial comment.
func (s *EditorialComment) Run(ctx *pipeline.Context) error {
	if checked, _ := ctx.Metadata[metaEditorialChecked].(bool); !checked {
		return nil
	}

	entries := append(editorial.TitleMessages(ctx.Violations), editorial.BodyMessages(ctx.Violations)...)
	decision := reconcile.Reconcile(ctx.Snapshot.Comments, reconcile.EditorialMarker, reconcile.EditorialHeader, entries)
	ctx.Logger.Debug("editorial comment decision", "step", s.Name(), "decision", decision.String())

	if a, ok := decision.PlanAction(); ok {
		ctx.AddAction(a)
	}
	return nil
}
