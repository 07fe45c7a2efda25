// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package steps

import (
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/host"
)

// FetchState reads the item's current labels and comments. Any read failure aborts the run.
type FetchState struct {
	host host.Host
}

// NewFetchState creates a new fetch_state step.
func NewFetchState(deps *pipeline.Dependencies) *FetchState {
	return &FetchState{host: deps.Host}
}

// Name returns the step name.
func (s *FetchState) Name() string {
	return "fetch_state"
}

// Run fills ctx.Snapshot.Labels and ctx.Snapshot.Comments.
func (s *FetchState) Run(ctx *pipeline.Context) error {
	ref := ctx.Item.Ref()

	labels, err := s.host.GetLabels(ctx.Ctx, ref)
	if err != nil {
		return host.Wrap("get labels", ref, err)
	}
	comments, err := s.host.GetComments(ctx.Ctx, ref)
	if err != nil {
		return host.Wrap("get comments", ref, err)
	}

	ctx.Snapshot.Labels = labels
	ctx.Snapshot.Comments = comments
	ctx.Snapshot.Fetched = true
	ctx.Logger.Debug("fetched item state", "step", s.Name(), "labels", len(labels), "comments", len(comments))
	return nil
}

// FetchParticipants reads the users already involved in the conversation.
type FetchParticipants struct {
	host  host.Host
	rules int
}

// NewFetchParticipants creates a new fetch_participants step.
func NewFetchParticipants(deps *pipeline.Dependencies) *FetchParticipants {
	return &FetchParticipants{host: deps.Host, rules: len(deps.Rules)}
}

// Name returns the step name.
func (s *FetchParticipants) Name() string {
	return "fetch_participants"
}

// Run fills ctx.Snapshot.Participants. Only triage consumes participants, so the read is
// skipped when triage will not run.
func (s *FetchParticipants) Run(ctx *pipeline.Context) error {
	if !triageActive(ctx, s.rules) {
		return nil
	}
	ref := ctx.Item.Ref()
	participants, err := s.host.GetParticipants(ctx.Ctx, ref)
	if err != nil {
		return host.Wrap("get participants", ref, err)
	}
	ctx.Snapshot.Participants = participants
	ctx.Logger.Debug("fetched participants", "step", s.Name(), "count", len(participants))
	return nil
}
