// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package rules

import "strings"

// Matches reports whether the rule applies to the given title and body.
// An empty body is treated like any other text. Matching is pure and deterministic.
func (r Rule) Matches(title, body string) bool {
	switch r.Scope {
	case Title:
		return r.matchText(title)
	case Body:
		return r.matchText(body)
	case Both:
		return r.matchText(title) && r.matchText(body)
	default:
		return r.matchText(title) || r.matchText(body)
	}
}

func (r Rule) matchText(text string) bool {
	if text == "" {
		return false
	}
	if r.Kind == Regex {
		// A Rule built outside Compile has no expression and never matches.
		if r.re == nil {
			return false
		}
		return r.re.MatchString(text)
	}
	if r.CaseSensitive {
		return strings.Contains(text, r.Pattern)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(r.Pattern))
}

// Matches is the free-function form of Rule.Matches.
func Matches(title, body string, rule Rule) bool {
	return rule.Matches(title, body)
}
