// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-04
// Last Modified: 2026-10-13

// Package rules compiles configured triage rules and matches them against item text.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/similigh/rulebot/internal/core/config"
)

// Kind selects how a rule pattern is interpreted.
type Kind int

const (
	Regex Kind = iota
	Literal
)

func (k Kind) String() string {
	if k == Literal {
		return config.MatchKindLiteral
	}
	return config.MatchKindRegex
}

// Scope selects which part of the item a rule looks at.
type Scope int

const (
	Either Scope = iota
	Title
	Body
	Both
)

func (s Scope) String() string {
	switch s {
	case Title:
		return config.ScopeTitle
	case Body:
		return config.ScopeBody
	case Both:
		return config.ScopeBoth
	default:
		return config.ScopeEither
	}
}

// Rule is a validated, immutable triage rule.
type Rule struct {
	ID            string
	Kind          Kind
	Scope         Scope
	CaseSensitive bool
	Pattern       string
	Labels        []string
	Notify        []string
	Comment       string

	re *regexp.Regexp
}

// ConfigError reports a rule that could not be compiled. The rule is skipped.
type ConfigError struct {
	Index  int
	RuleID string
	Err    error
}

func (e *ConfigError) Error() string {
	id := e.RuleID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("triage rule %s: %v", id, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingID      = errors.New("rule id is required")
	ErrDuplicateID    = errors.New("rule id is already used by an earlier rule")
	ErrEmptyPattern   = errors.New("match pattern is empty")
	ErrUnknownKind    = errors.New("unknown match kind")
	ErrUnknownScope   = errors.New("unknown match scope")
	ErrInvalidPattern = errors.New("invalid regular expression")
)

// Compile validates the configured rules once and returns the usable ones in configuration order.
// Every rejected rule yields a *ConfigError; the remaining rules are still returned.
func Compile(cfgRules []config.TriageRule) ([]Rule, []error) {
	compiled := make([]Rule, 0, len(cfgRules))
	var errs []error
	seen := make(map[string]struct{}, len(cfgRules))

	for i, cr := range cfgRules {
		r, err := compileOne(cr)
		if err == nil {
			if _, dup := seen[r.ID]; dup {
				err = ErrDuplicateID
			}
		}
		if err != nil {
			errs = append(errs, &ConfigError{Index: i, RuleID: cr.ID, Err: err})
			continue
		}
		seen[r.ID] = struct{}{}
		compiled = append(compiled, r)
	}

	return compiled, errs
}

func compileOne(cr config.TriageRule) (Rule, error) {
	r := Rule{
		ID:            strings.TrimSpace(cr.ID),
		Pattern:       cr.Match.Pattern,
		CaseSensitive: cr.Match.CaseSensitive,
		Labels:        slices.Clone(cr.Labels),
		Notify:        slices.Clone(cr.Notify),
		Comment:       strings.TrimSpace(cr.Comment),
	}
	if r.ID == "" {
		return Rule{}, ErrMissingID
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return Rule{}, ErrEmptyPattern
	}

	switch strings.ToLower(cr.Match.Kind) {
	case "", config.MatchKindRegex:
		r.Kind = Regex
	case config.MatchKindLiteral:
		r.Kind = Literal
	default:
		return Rule{}, fmt.Errorf("%w %q", ErrUnknownKind, cr.Match.Kind)
	}

	switch strings.ToLower(cr.Match.Scope) {
	case "", config.ScopeEither:
		r.Scope = Either
	case config.ScopeTitle:
		r.Scope = Title
	case config.ScopeBody:
		r.Scope = Body
	case config.ScopeBoth:
		r.Scope = Both
	default:
		return Rule{}, fmt.Errorf("%w %q", ErrUnknownScope, cr.Match.Scope)
	}

	if r.Kind == Regex {
		expr := r.Pattern
		if !r.CaseSensitive {
			expr = "(?is)" + expr
		} else {
			expr = "(?s)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		r.re = re
	}

	return r, nil
}
