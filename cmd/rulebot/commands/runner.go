// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-17

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/host"
	gh "github.com/similigh/rulebot/internal/integrations/github"
	"github.com/similigh/rulebot/internal/metrics"
	"github.com/similigh/rulebot/internal/rules"
	"github.com/similigh/rulebot/internal/steps"
	"github.com/similigh/rulebot/internal/tui"
)

// newHost builds the GitHub client used for reads and mutations.
func newHost(ctx context.Context) (*gh.Client, error) {
	if env.GitHubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is required")
	}
	return gh.NewClient(ctx, env.GitHubToken, gh.WithRateLimit(env.APIRate)), nil
}

// loadConfig resolves the config file and its extends chain. Without a config file the
// defaults apply, which leave every feature disabled.
func loadConfig(ctx context.Context) (*config.Config, error) {
	path := config.FindConfigPath(cfgFile)
	if path == "" {
		if cfgFile != "" {
			return nil, fmt.Errorf("config file %s not found", cfgFile)
		}
		logger.Warn("no configuration file found, every feature is disabled")
		return config.Parse(nil)
	}

	fetcher := func(ref string) ([]byte, error) {
		org, repo, branch, file, err := config.ParseExtendsRef(ref)
		if err != nil {
			return nil, err
		}
		if env.GitHubToken == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN required to fetch remote config %s", ref)
		}
		return gh.NewClient(ctx, env.GitHubToken).GetFileContent(ctx, org, repo, file, branch)
	}

	cfg, err := config.LoadWithInheritance(path, fetcher)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// compileRules compiles the triage rules. Broken rules are logged and skipped.
func compileRules(cfg *config.Config) []rules.Rule {
	compiled, errs := rules.Compile(cfg.Triage.Rules)
	for _, err := range errs {
		logger.Warn("skipping triage rule", "error", err)
		metrics.ConfigErrors.Inc()
	}
	return compiled
}

// buildDependencies wires the host, executor and compiled rules for the dispatcher.
// Dry-run is on when the flag, the environment or the config asks for it.
func buildDependencies(cfg *config.Config, h host.Host, compiled []rules.Rule, forceDryRun bool) *pipeline.Dependencies {
	dry := forceDryRun || dryRun || (env != nil && env.DryRun) || cfg.DryRun
	return &pipeline.Dependencies{
		Host:    h,
		Actions: actions.New(h, dry, logger),
		Rules:   compiled,
		DryRun:  dry,
		Logger:  logger,
	}
}

// Wrapper step to send status updates
type statusReportingStep struct {
	inner      pipeline.Step
	statusChan chan<- tui.PipelineStatusMsg
}

func (s *statusReportingStep) Name() string {
	return s.inner.Name()
}

func (s *statusReportingStep) Run(ctx *pipeline.Context) error {
	s.send(ctx, tui.StatusStarted, "Starting...")

	err := s.inner.Run(ctx)

	if err != nil {
		if errors.Is(err, pipeline.ErrSkipPipeline) {
			s.send(ctx, tui.StatusSkipped, ctx.Result.SkipReason)
			return err
		}
		s.send(ctx, tui.StatusError, err.Error())
		return err
	}

	s.send(ctx, tui.StatusSuccess, "Completed")
	return nil
}

// send drops the update once the run is cancelled, so a closed TUI never blocks the pipeline.
func (s *statusReportingStep) send(ctx *pipeline.Context, status, msg string) {
	select {
	case s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: status, Message: msg}:
	case <-ctx.Ctx.Done():
	}
}

// runInteractive runs the pipeline behind the progress TUI. When the TUI quits early the
// run is cancelled and awaited, so the plan stops between two mutations.
func runInteractive(ctx context.Context, d *steps.Dispatcher, item *pipeline.Item, cfg *config.Config, preset string) (*pipeline.Result, error) {
	names, ok := pipeline.GetPreset(preset)
	if preset == "" {
		names, ok = steps.Steps(item.EventType, item.EventAction)
	}
	if !ok {
		return d.Run(ctx, item, cfg, preset, nil)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	statusChan := make(chan tui.PipelineStatusMsg, len(names)*2)
	title := fmt.Sprintf("rulebot · %s", item.Ref())
	p := tea.NewProgram(tui.NewModel(title, names, statusChan))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(statusChan)
		res, err := d.Run(runCtx, item, cfg, preset, func(s pipeline.Step) pipeline.Step {
			return &statusReportingStep{inner: s, statusChan: statusChan}
		})
		p.Send(tui.ResultMsg{Result: res, Err: err})
	}()

	final, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	res, err := final.(tui.Model).Result()
	if res == nil && err == nil {
		return nil, errors.New("interrupted")
	}
	return res, err
}

func printResult(w io.Writer, res *pipeline.Result) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
