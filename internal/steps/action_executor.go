// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-15

package steps

import (
	"slices"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/pipeline"
)

// ActionExecutor executes the decided actions (title, labels, comments) in that order.
type ActionExecutor struct {
	executor actions.Executor
	dryRun   bool
}

// NewActionExecutor creates a new action executor step.
func NewActionExecutor(deps *pipeline.Dependencies) *ActionExecutor {
	ex := deps.Actions
	if ex == nil {
		ex = actions.New(deps.Host, deps.DryRun, deps.Logger)
	}
	return &ActionExecutor{executor: ex, dryRun: deps.DryRun}
}

// Name returns the step name.
func (s *ActionExecutor) Name() string {
	return "action_executor"
}

// Run executes the plan. The first failed mutation aborts the remaining ones.
func (s *ActionExecutor) Run(ctx *pipeline.Context) error {
	ctx.Result.DryRun = s.dryRun || ctx.Config.DryRun
	if len(ctx.Plan) == 0 {
		ctx.Logger.Info("nothing to do", "step", s.Name())
		return nil
	}

	plan := slices.Clone(ctx.Plan)
	slices.SortStableFunc(plan, func(a, b actions.Action) int {
		return rank(a.Kind) - rank(b.Kind)
	})

	ex := s.executor
	if ctx.Config.DryRun && !s.dryRun {
		// dry_run in the repository config wins over a live executor.
		ex = actions.New(nil, true, ctx.Logger)
	}

	records, err := actions.ExecuteAll(ctx.Ctx, ex, ctx.Item.Ref(), plan)
	ctx.Result.Executed = records
	if err != nil {
		return err
	}

	ctx.Logger.Info("actions executed", "step", s.Name(), "count", len(records), "dry_run", ctx.Result.DryRun)
	return nil
}

func rank(k actions.Kind) int {
	switch k {
	case actions.SetTitle:
		return 0
	case actions.AddLabels:
		return 1
	default:
		return 2
	}
}
