// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

// Package triage evaluates the configured triage rules against an item and reduces the
// result into the labels, mentions and comment lines the bot should act on.
package triage

import (
	"sort"
	"strings"

	"github.com/similigh/rulebot/internal/rules"
)

// Outcome is the result of running every rule against one item.
type Outcome struct {
	// TriggeredRules lists matching rule IDs in configuration order.
	TriggeredRules []string
	// Labels is the deduplicated, sorted union of labels requested by matching rules.
	Labels []string
	// Mentions holds the users to notify and the rules that asked for each.
	Mentions Mentions
	// Comments holds rule comments in configuration order.
	Comments []string
}

// Evaluate runs rules in order against title and body. Every matching rule contributes,
// not only the first. The author is never registered as a mention.
func Evaluate(title, body, author string, rs []rules.Rule) Outcome {
	var out Outcome
	labels := make(map[string]struct{})

	for _, r := range rs {
		if !r.Matches(title, body) {
			continue
		}
		out.TriggeredRules = append(out.TriggeredRules, r.ID)

		for _, l := range r.Labels {
			if l = strings.TrimSpace(l); l != "" {
				labels[l] = struct{}{}
			}
		}
		for _, user := range r.Notify {
			if strings.EqualFold(NormalizeLogin(user), NormalizeLogin(author)) {
				continue
			}
			out.Mentions = out.Mentions.Add(user, r.ID)
		}
		if r.Comment != "" {
			out.Comments = append(out.Comments, r.Comment)
		}
	}

	out.Labels = make([]string, 0, len(labels))
	for l := range labels {
		out.Labels = append(out.Labels, l)
	}
	sort.Strings(out.Labels)

	return out
}

// CommentEntries returns the bullet entries of the triage comment: the rule comments
// followed by a "/cc" line when mentions remain.
func CommentEntries(comments []string, mentions Mentions) []string {
	entries := make([]string, 0, len(comments)+1)
	entries = append(entries, comments...)
	if !mentions.IsEmpty() {
		entries = append(entries, "/cc "+mentions.String())
	}
	return entries
}
