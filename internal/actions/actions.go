// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-13
// Last Modified: 2026-10-15

// Package actions executes the mutations decided by a pipeline run against the host, or
// logs an audit record of them in dry-run mode.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/similigh/rulebot/internal/host"
	"github.com/similigh/rulebot/internal/metrics"
)

// Kind identifies a host mutation.
type Kind string

const (
	AddLabels     Kind = "add_labels"
	AddComment    Kind = "add_comment"
	UpdateComment Kind = "update_comment"
	DeleteComment Kind = "delete_comment"
	SetTitle      Kind = "set_title"
)

// Action is one planned host mutation.
type Action struct {
	Kind      Kind     `json:"kind"`
	Labels    []string `json:"labels,omitempty"`
	Title     string   `json:"title,omitempty"`
	CommentID int64    `json:"comment_id,omitempty"`
	Body      string   `json:"body,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case AddLabels:
		return fmt.Sprintf("add labels [%s]", strings.Join(a.Labels, ", "))
	case AddComment:
		return "add comment"
	case UpdateComment:
		return fmt.Sprintf("update comment %d", a.CommentID)
	case DeleteComment:
		return fmt.Sprintf("delete comment %d", a.CommentID)
	case SetTitle:
		return fmt.Sprintf("set title to %q", a.Title)
	default:
		return string(a.Kind)
	}
}

// Record is the audit trail of one executed (or suppressed) action.
type Record struct {
	Item   string `json:"item"`
	Action Action `json:"action"`
	DryRun bool   `json:"dry_run"`
	// CommentID is the id of the comment created by an AddComment action.
	CommentID int64 `json:"created_comment_id,omitempty"`
}

// Executor runs planned actions.
type Executor interface {
	Execute(ctx context.Context, ref host.ItemRef, a Action) (Record, error)
}

// BotActions is the Executor backed by a host.Host.
type BotActions struct {
	host   host.Host
	dryRun bool
	logger *slog.Logger
}

// New creates a BotActions. In dry-run mode h may be nil.
func New(h host.Host, dryRun bool, logger *slog.Logger) *BotActions {
	if logger == nil {
		logger = slog.Default()
	}
	return &BotActions{host: h, dryRun: dryRun, logger: logger.With("component", "actions")}
}

// DryRun reports whether mutations are suppressed.
func (b *BotActions) DryRun() bool {
	return b.dryRun
}

// Execute applies a to the item, or only logs it in dry-run mode. Errors are not retried.
func (b *BotActions) Execute(ctx context.Context, ref host.ItemRef, a Action) (Record, error) {
	rec := Record{Item: ref.String(), Action: a, DryRun: b.dryRun}

	if b.dryRun {
		b.logger.Info("dry run", "item", ref.String(), "action", a.Kind, "detail", a.String(), "body", a.Body)
		metrics.ActionsExecuted.WithLabelValues(string(a.Kind), "dry_run").Inc()
		return rec, nil
	}

	var err error
	switch a.Kind {
	case AddLabels:
		err = b.host.AddLabels(ctx, ref, a.Labels)
	case AddComment:
		rec.CommentID, err = b.host.AddComment(ctx, ref, a.Body)
	case UpdateComment:
		err = b.host.UpdateComment(ctx, ref, a.CommentID, a.Body)
	case DeleteComment:
		err = b.host.DeleteComment(ctx, ref, a.CommentID)
	case SetTitle:
		err = b.host.SetTitle(ctx, ref, a.Title)
	default:
		return rec, fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if err != nil {
		metrics.ActionsExecuted.WithLabelValues(string(a.Kind), "failed").Inc()
		b.logger.Error("action failed", "item", ref.String(), "action", a.Kind, "error", err)
		return rec, host.Wrap(a.String(), ref, err)
	}

	metrics.ActionsExecuted.WithLabelValues(string(a.Kind), "live").Inc()
	b.logger.Debug("action applied", "item", ref.String(), "action", a.Kind, "detail", a.String())
	return rec, nil
}

// ExecuteAll runs actions in order and stops at the first failure. The records of the
// actions that completed are returned alongside the error.
func ExecuteAll(ctx context.Context, ex Executor, ref host.ItemRef, plan []Action) ([]Record, error) {
	records := make([]Record, 0, len(plan))
	for _, a := range plan {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		rec, err := ex.Execute(ctx, ref, a)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}
