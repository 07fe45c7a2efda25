// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-15

// Package steps contains the modular "Lego block" pipeline steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"slices"
	"strings"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
)

// Gatekeeper stops the run for bot senders, disabled features and repositories outside the allow-list.
type Gatekeeper struct {
	botUsers []string
}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{botUsers: deps.BotUsers}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run checks sender, features and repository configuration.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	log := ctx.Logger.With("step", s.Name())
	log.Debug("gatekeeping event", "event", ctx.Item.EventType, "action", ctx.Item.EventAction, "sender", ctx.Item.Sender)

	// Our own title edits come back as pull_request.edited events.
	if ctx.Item.Sender != "" && isBotAuthor(ctx.Item.Sender, append(slices.Clone(s.botUsers), ctx.Config.BotUsers...)) {
		return ctx.Skip("event triggered by bot")
	}

	if !featureEnabled(ctx) {
		return ctx.Skip("feature disabled")
	}

	// If repositories list is empty, allow all (single-repo mode)
	if len(ctx.Config.Repositories) == 0 {
		return nil
	}

	repoConfig := findRepoConfig(ctx)
	if repoConfig == nil {
		return ctx.Skip("repository not configured")
	}
	if !repoConfig.Enabled {
		return ctx.Skip("repository processing disabled")
	}

	log.Debug("repository is enabled, proceeding")
	return nil
}

// featureEnabled reports whether any feature handled by this event is switched on.
func featureEnabled(ctx *pipeline.Context) bool {
	f := ctx.Config.Features
	switch {
	case ctx.Item.IsPullRequest() && ctx.Item.EventAction == "edited":
		return f.CheckEditorialRules
	case ctx.Item.IsPullRequest():
		return f.CheckEditorialRules || f.TriageIssuesAndPullRequests
	default:
		return f.TriageIssuesAndPullRequests
	}
}

// isBotAuthor returns true if the given username matches a known bot pattern
// or is in the user-configured bot_users list.
func isBotAuthor(author string, configBotUsers []string) bool {
	if strings.HasSuffix(author, "[bot]") || strings.EqualFold(author, "rulebot") {
		return true
	}
	for _, u := range configBotUsers {
		if strings.EqualFold(author, u) {
			return true
		}
	}
	return false
}

// findRepoConfig looks up the repository configuration.
func findRepoConfig(ctx *pipeline.Context) *config.RepositoryConfig {
	for i := range ctx.Config.Repositories {
		repo := &ctx.Config.Repositories[i]
		if strings.EqualFold(repo.Org, ctx.Item.Org) && strings.EqualFold(repo.Repo, ctx.Item.Repo) {
			return repo
		}
	}
	return nil
}
