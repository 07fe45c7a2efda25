package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/tui"
)

type countingStep struct{ runs int }

func (s *countingStep) Name() string { return "counting" }

func (s *countingStep) Run(*pipeline.Context) error {
	s.runs++
	return nil
}

func TestStatusReportingStepDoesNotBlockAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &countingStep{}
	step := &statusReportingStep{inner: inner, statusChan: make(chan tui.PipelineStatusMsg)}
	pCtx := pipeline.NewContext(ctx, &pipeline.Item{Org: "acme", Repo: "widgets", Number: 1}, &config.Config{}, nil)

	done := make(chan error, 1)
	go func() { done <- step.Run(pCtx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.Equal(t, 1, inner.runs)
	case <-time.After(2 * time.Second):
		t.Fatal("status updates blocked with nobody reading")
	}
}

func TestStatusReportingStepReportsProgress(t *testing.T) {
	statusChan := make(chan tui.PipelineStatusMsg, 2)
	step := &statusReportingStep{inner: &countingStep{}, statusChan: statusChan}
	pCtx := pipeline.NewContext(context.Background(), &pipeline.Item{Org: "acme", Repo: "widgets", Number: 1}, &config.Config{}, nil)

	require.NoError(t, step.Run(pCtx))
	assert.Equal(t, tui.StatusStarted, (<-statusChan).Status)
	assert.Equal(t, tui.StatusSuccess, (<-statusChan).Status)
}
