// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-15

// Package reconcile keeps at most one bot comment per marker class on an item in sync with
// the current evaluation.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/host"
)

// Marker tokens embedded in bot comments. They are HTML comments, so GitHub does not render them.
const (
	BotMarker       = "<!-- rulebot -->"
	EditorialMarker = "<!-- rulebot:editorial-rules -->"
)

// Fixed comment headers.
const (
	EditorialHeader = "Thanks for your pull request!\n\n" +
		"Your pull request does not follow our editorial rules. Could you have a look?\n\n"
	TriageHeader = "Thanks for reaching out! The following applies to this item:\n\n"
)

// Action is the reconciliation verdict.
type Action int

const (
	None Action = iota
	Create
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "none"
	}
}

// Decision is what to do with the bot comment of one marker class.
type Decision struct {
	Action    Action
	CommentID int64
	Body      string
}

// Find returns the first comment whose body carries marker, or nil.
func Find(comments []host.Comment, marker string) *host.Comment {
	for i := range comments {
		if strings.Contains(comments[i].Body, marker) {
			c := comments[i]
			return &c
		}
	}
	return nil
}

// BuildBody assembles a bot comment: the header, one "- " line per entry in order, then the marker.
func BuildBody(header string, entries []string, marker string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(e)
	}
	sb.WriteString("\n\n")
	sb.WriteString(marker)
	return sb.String()
}

// Decide maps (prior comment, comment required) onto a single action.
//
//	prior absent,  not required -> none
//	prior absent,  required     -> create
//	prior present, not required -> delete
//	prior present, required     -> update, or none when the body is already current
func Decide(prior *host.Comment, body string, required bool) Decision {
	switch {
	case prior == nil && !required:
		return Decision{Action: None}
	case prior == nil:
		return Decision{Action: Create, Body: body}
	case !required:
		return Decision{Action: Delete, CommentID: prior.ID}
	case prior.Body == body:
		return Decision{Action: None, CommentID: prior.ID}
	default:
		return Decision{Action: Update, CommentID: prior.ID, Body: body}
	}
}

// Reconcile locates the prior comment for marker and decides against the given entries.
// The comment is required whenever entries is non-empty.
func Reconcile(comments []host.Comment, marker, header string, entries []string) Decision {
	body := BuildBody(header, entries, marker)
	return Decide(Find(comments, marker), body, len(entries) > 0)
}

// PlanAction converts the decision into an executable action. ok is false for None.
func (d Decision) PlanAction() (a actions.Action, ok bool) {
	switch d.Action {
	case Create:
		return actions.Action{Kind: actions.AddComment, Body: d.Body}, true
	case Update:
		return actions.Action{Kind: actions.UpdateComment, CommentID: d.CommentID, Body: d.Body}, true
	case Delete:
		return actions.Action{Kind: actions.DeleteComment, CommentID: d.CommentID}, true
	default:
		return actions.Action{}, false
	}
}

func (d Decision) String() string {
	if d.CommentID != 0 {
		return fmt.Sprintf("%s comment %d", d.Action, d.CommentID)
	}
	return d.Action.String()
}
