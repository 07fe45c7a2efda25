// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-15

package steps

import (
	"github.com/similigh/rulebot/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})

	r.Register("fetch_state", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewFetchState(deps), nil
	})

	r.Register("fetch_participants", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewFetchParticipants(deps), nil
	})

	r.Register("title_normalizer", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewTitleNormalizer(deps), nil
	})

	r.Register("editorial_check", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewEditorialCheck(deps), nil
	})

	r.Register("editorial_comment", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewEditorialComment(deps), nil
	})

	r.Register("triage_rules", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewTriageRules(deps), nil
	})

	r.Register("triage_labels", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewTriageLabels(deps), nil
	})

	r.Register("triage_comment", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewTriageComment(deps), nil
	})

	r.Register("action_executor", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewActionExecutor(deps), nil
	})
}
