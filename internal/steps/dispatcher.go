// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/metrics"
)

// StepWrapper decorates every built step, e.g. to report progress.
type StepWrapper func(pipeline.Step) pipeline.Step

// Dispatcher picks the preset for an event and runs it against one item.
// It holds no per-item state, so one Dispatcher may serve concurrent events.
type Dispatcher struct {
	registry *pipeline.Registry
	deps     *pipeline.Dependencies
}

// NewDispatcher creates a dispatcher with every built-in step registered.
func NewDispatcher(deps *pipeline.Dependencies) *Dispatcher {
	registry := pipeline.NewRegistry()
	RegisterAll(registry)
	return &Dispatcher{registry: registry, deps: deps}
}

// Dispatch runs the preset matching the item's event.
func (d *Dispatcher) Dispatch(ctx context.Context, item *pipeline.Item, cfg *config.Config) (*pipeline.Result, error) {
	return d.Run(ctx, item, cfg, "", nil)
}

// Run runs the named preset, or the event's preset when preset is empty.
// Unsupported events produce a skipped result, not an error.
func (d *Dispatcher) Run(ctx context.Context, item *pipeline.Item, cfg *config.Config, preset string, wrap StepWrapper) (*pipeline.Result, error) {
	pCtx := pipeline.NewContext(ctx, item, cfg, d.deps.Logger)

	if preset == "" {
		var ok bool
		preset, ok = pipeline.PresetForEvent(item.EventType, item.EventAction)
		if !ok {
			_ = pCtx.Skip(fmt.Sprintf("unsupported event %s.%s", item.EventType, item.EventAction))
			metrics.PipelineRuns.WithLabelValues("none", "skipped").Inc()
			return pCtx.Result, nil
		}
	}
	pCtx.Result.Preset = preset

	names, ok := pipeline.GetPreset(preset)
	if !ok {
		return pCtx.Result, fmt.Errorf("unknown preset: %s", preset)
	}
	p, err := d.registry.BuildFromNames(names, d.deps)
	if err != nil {
		return pCtx.Result, err
	}
	if wrap != nil {
		wrapped := make([]pipeline.Step, 0, len(p.Steps()))
		for _, s := range p.Steps() {
			wrapped = append(wrapped, wrap(s))
		}
		p = pipeline.New(wrapped...)
	}

	start := time.Now()
	err = p.Run(pCtx)
	metrics.PipelineDuration.WithLabelValues(preset).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.PipelineRuns.WithLabelValues(preset, "failed").Inc()
		pCtx.Logger.Error("pipeline failed", "preset", preset, "error", err)
		return pCtx.Result, err
	case pCtx.Result.Skipped:
		metrics.PipelineRuns.WithLabelValues(preset, "skipped").Inc()
	default:
		metrics.PipelineRuns.WithLabelValues(preset, "ok").Inc()
	}
	return pCtx.Result, nil
}

// Steps returns the step names the dispatcher would run for an event.
func Steps(event, action string) ([]string, bool) {
	preset, ok := pipeline.PresetForEvent(event, action)
	if !ok {
		return nil, false
	}
	return pipeline.GetPreset(preset)
}
