// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-15

// Package host defines the capabilities rulebot needs from the repository host.
// Implementations live in the integrations packages; the rule engine only sees this interface.
package host

import (
	"context"
	"fmt"
)

// ItemRef identifies an issue or pull request on the host.
type ItemRef struct {
	Org    string
	Repo   string
	Number int
}

// String renders the reference as org/repo#number.
func (r ItemRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Org, r.Repo, r.Number)
}

// Comment is a single issue or pull request comment.
type Comment struct {
	ID     int64  `json:"id"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

// Host is the set of read and mutation primitives exposed by the repository host.
type Host interface {
	// GetLabels returns the names of the labels currently set on the item.
	GetLabels(ctx context.Context, ref ItemRef) ([]string, error)

	// GetComments returns the item's comments in creation order.
	// A nil slice with a nil error means the host has no comments to offer.
	GetComments(ctx context.Context, ref ItemRef) ([]Comment, error)

	// GetParticipants returns the logins of users already involved in the conversation.
	GetParticipants(ctx context.Context, ref ItemRef) ([]string, error)

	AddLabels(ctx context.Context, ref ItemRef, labels []string) error
	AddComment(ctx context.Context, ref ItemRef, body string) (int64, error)
	UpdateComment(ctx context.Context, ref ItemRef, commentID int64, body string) error
	DeleteComment(ctx context.Context, ref ItemRef, commentID int64) error
	SetTitle(ctx context.Context, ref ItemRef, title string) error
}

// TransportError reports a failed host read or write.
type TransportError struct {
	Op   string
	Item ItemRef
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Item, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Wrap returns err wrapped in a TransportError, or nil when err is nil.
func Wrap(op string, ref ItemRef, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Item: ref, Err: err}
}
