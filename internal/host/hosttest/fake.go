// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

// Package hosttest provides an in-memory host.Host for tests.
package hosttest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/similigh/rulebot/internal/host"
)

// Call records a mutation received by the fake.
type Call struct {
	Op        string
	Item      host.ItemRef
	Labels    []string
	CommentID int64
	Body      string
	Title     string
}

// Item is the fake's view of one issue or pull request.
type Item struct {
	Title        string
	Labels       []string
	Comments     []host.Comment
	Participants []string
}

// Fake is a goroutine-safe in-memory host. Mutations update the stored items so that
// consecutive runs observe the effects of previous ones.
type Fake struct {
	mu     sync.Mutex
	items  map[host.ItemRef]*Item
	calls  []Call
	nextID int64

	// Fail makes the named operation return an error (e.g. "GetComments", "AddComment").
	Fail map[string]error

	// BotLogin is used as the author of comments created through the fake.
	BotLogin string
}

// New creates an empty fake host.
func New() *Fake {
	return &Fake{
		items:    make(map[host.ItemRef]*Item),
		Fail:     make(map[string]error),
		nextID:   1000,
		BotLogin: "rulebot[bot]",
	}
}

// Put stores (or replaces) an item.
func (f *Fake) Put(ref host.ItemRef, item Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := item
	f.items[ref] = &cp
}

// Get returns a copy of the stored item.
func (f *Fake) Get(ref host.ItemRef) Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.item(ref)
	return Item{
		Title:        it.Title,
		Labels:       slices.Clone(it.Labels),
		Comments:     slices.Clone(it.Comments),
		Participants: slices.Clone(it.Participants),
	}
}

// Calls returns the recorded mutations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// ResetCalls forgets recorded mutations, keeping item state.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *Fake) item(ref host.ItemRef) *Item {
	it, ok := f.items[ref]
	if !ok {
		it = &Item{}
		f.items[ref] = it
	}
	return it
}

func (f *Fake) fail(op string) error {
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

func (f *Fake) GetLabels(_ context.Context, ref host.ItemRef) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetLabels"); err != nil {
		return nil, err
	}
	return slices.Clone(f.item(ref).Labels), nil
}

func (f *Fake) GetComments(_ context.Context, ref host.ItemRef) ([]host.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetComments"); err != nil {
		return nil, err
	}
	return slices.Clone(f.item(ref).Comments), nil
}

func (f *Fake) GetParticipants(_ context.Context, ref host.ItemRef) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetParticipants"); err != nil {
		return nil, err
	}
	return slices.Clone(f.item(ref).Participants), nil
}

func (f *Fake) AddLabels(_ context.Context, ref host.ItemRef, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("AddLabels"); err != nil {
		return err
	}
	f.calls = append(f.calls, Call{Op: "AddLabels", Item: ref, Labels: slices.Clone(labels)})
	it := f.item(ref)
	for _, l := range labels {
		if !slices.Contains(it.Labels, l) {
			it.Labels = append(it.Labels, l)
		}
	}
	return nil
}

func (f *Fake) AddComment(_ context.Context, ref host.ItemRef, body string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("AddComment"); err != nil {
		return 0, err
	}
	f.nextID++
	id := f.nextID
	f.calls = append(f.calls, Call{Op: "AddComment", Item: ref, CommentID: id, Body: body})
	it := f.item(ref)
	it.Comments = append(it.Comments, host.Comment{ID: id, Body: body, Author: f.BotLogin})
	return id, nil
}

func (f *Fake) UpdateComment(_ context.Context, ref host.ItemRef, commentID int64, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateComment"); err != nil {
		return err
	}
	it := f.item(ref)
	for i := range it.Comments {
		if it.Comments[i].ID == commentID {
			f.calls = append(f.calls, Call{Op: "UpdateComment", Item: ref, CommentID: commentID, Body: body})
			it.Comments[i].Body = body
			return nil
		}
	}
	return fmt.Errorf("comment %d not found", commentID)
}

func (f *Fake) DeleteComment(_ context.Context, ref host.ItemRef, commentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteComment"); err != nil {
		return err
	}
	it := f.item(ref)
	for i := range it.Comments {
		if it.Comments[i].ID == commentID {
			f.calls = append(f.calls, Call{Op: "DeleteComment", Item: ref, CommentID: commentID})
			it.Comments = slices.Delete(it.Comments, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("comment %d not found", commentID)
}

func (f *Fake) SetTitle(_ context.Context, ref host.ItemRef, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SetTitle"); err != nil {
		return err
	}
	f.calls = append(f.calls, Call{Op: "SetTitle", Item: ref, Title: title})
	f.item(ref).Title = title
	return nil
}

var _ host.Host = (*Fake)(nil)
