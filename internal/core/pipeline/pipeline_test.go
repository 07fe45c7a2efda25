// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/config"
)

type funcStep struct {
	name string
	run  func(*Context) error
}

func (s funcStep) Name() string { return s.name }

func (s funcStep) Run(ctx *Context) error { return s.run(ctx) }

func newTestContext(t *testing.T, ctx context.Context) *Context {
	t.Helper()
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	item := &Item{Org: "acme", Repo: "widgets", Number: 5, Kind: KindIssue}
	return NewContext(ctx, item, cfg, nil)
}

func TestNewContext(t *testing.T) {
	a := newTestContext(t, context.Background())
	b := newTestContext(t, context.Background())

	_, err := uuid.Parse(a.RunID)
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, "acme/widgets#5", a.Result.Item)
	assert.Equal(t, a.RunID, a.Result.RunID)
}

func TestPipelineRunSkip(t *testing.T) {
	pCtx := newTestContext(t, context.Background())
	var ran []string
	step := func(name string, err error) Step {
		return funcStep{name: name, run: func(c *Context) error {
			ran = append(ran, name)
			if errors.Is(err, ErrSkipPipeline) {
				return c.Skip("not today")
			}
			return err
		}}
	}

	err := New(step("a", nil), step("b", ErrSkipPipeline), step("c", nil)).Run(pCtx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.True(t, pCtx.Result.Skipped)
	assert.Equal(t, "not today", pCtx.Result.SkipReason)
}

func TestPipelineRunError(t *testing.T) {
	pCtx := newTestContext(t, context.Background())
	boom := errors.New("boom")
	p := New(funcStep{name: "fails", run: func(*Context) error { return boom }})

	err := p.Run(pCtx)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step 'fails' failed")
}

func TestPipelineRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pCtx := newTestContext(t, ctx)

	called := false
	err := New(funcStep{name: "never", run: func(*Context) error { called = true; return nil }}).Run(pCtx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAddAction(t *testing.T) {
	pCtx := newTestContext(t, context.Background())
	a := actions.Action{Kind: actions.AddLabels, Labels: []string{"needs-triage"}}
	pCtx.AddAction(a)

	assert.Equal(t, []actions.Action{a}, pCtx.Plan)
	assert.Equal(t, []actions.Action{a}, pCtx.Result.Plan)
}
