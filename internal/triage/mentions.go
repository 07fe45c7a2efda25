// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package triage

import (
	"slices"
	"sort"
	"strings"
)

// Mentions maps a user login to the rule IDs that asked for the user to be notified.
// Logins are keyed case-insensitively and rendered with the first spelling seen.
// The value is immutable: Add and WithoutParticipants return a new Mentions.
type Mentions struct {
	byUser map[string]mention
}

type mention struct {
	login   string
	ruleIDs []string
}

// NormalizeLogin strips whitespace and a leading '@'.
func NormalizeLogin(login string) string {
	return strings.TrimPrefix(strings.TrimSpace(login), "@")
}

func loginKey(login string) string {
	return strings.ToLower(NormalizeLogin(login))
}

// Add registers that ruleID requests a mention of user.
// Repeating a (user, ruleID) pair is a no-op; different rule IDs accumulate.
func (m Mentions) Add(user, ruleID string) Mentions {
	user = NormalizeLogin(user)
	if user == "" {
		return m
	}
	key := loginKey(user)
	prev, seen := m.byUser[key]
	if slices.Contains(prev.ruleIDs, ruleID) {
		return m
	}
	if !seen {
		prev.login = user
	}

	next := m.clone()
	next.byUser[key] = mention{login: prev.login, ruleIDs: append(slices.Clone(prev.ruleIDs), ruleID)}
	return next
}

// WithoutParticipants drops every user already taking part in the conversation,
// together with the rule IDs attributed to them. Logins compare case-insensitively.
func (m Mentions) WithoutParticipants(participants []string) Mentions {
	if len(participants) == 0 || m.IsEmpty() {
		return m
	}

	skip := make(map[string]bool, len(participants))
	for _, p := range participants {
		skip[loginKey(p)] = true
	}
	next := Mentions{byUser: make(map[string]mention, len(m.byUser))}
	for key, e := range m.byUser {
		if skip[key] {
			continue
		}
		next.byUser[key] = e
	}
	return next
}

// IsEmpty reports whether no user is pending a mention.
func (m Mentions) IsEmpty() bool {
	return len(m.byUser) == 0
}

// Len returns the number of distinct users.
func (m Mentions) Len() int {
	return len(m.byUser)
}

// Users returns the mentioned logins ordered case-insensitively.
func (m Mentions) Users() []string {
	keys := m.keys()
	users := make([]string, 0, len(keys))
	for _, k := range keys {
		users = append(users, m.byUser[k].login)
	}
	return users
}

// RuleIDs returns the rule IDs that requested user, in the order they were first requested.
func (m Mentions) RuleIDs(user string) []string {
	return slices.Clone(m.byUser[loginKey(user)].ruleIDs)
}

// String renders the pending mentions as "@alice (rule-a, rule-b), @bob (rule-c)".
func (m Mentions) String() string {
	keys := m.keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		e := m.byUser[k]
		parts = append(parts, "@"+e.login+" ("+strings.Join(e.ruleIDs, ", ")+")")
	}
	return strings.Join(parts, ", ")
}

// Equal reports whether both values hold the same users with the same attributions.
func (m Mentions) Equal(other Mentions) bool {
	if len(m.byUser) != len(other.byUser) {
		return false
	}
	for k, e := range m.byUser {
		o, ok := other.byUser[k]
		if !ok || o.login != e.login || !slices.Equal(e.ruleIDs, o.ruleIDs) {
			return false
		}
	}
	return true
}

func (m Mentions) keys() []string {
	keys := make([]string, 0, len(m.byUser))
	for k := range m.byUser {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Mentions) clone() Mentions {
	next := Mentions{byUser: make(map[string]mention, len(m.byUser)+1)}
	for k, e := range m.byUser {
		next.byUser[k] = e
	}
	return next
}
