// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-15

// Package editorial checks pull request titles and descriptions against a fixed set of
// editorial rules and normalizes titles.
package editorial

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scope tells whether a violation concerns the title or the body.
type Scope string

const (
	ScopeTitle Scope = "title"
	ScopeBody  Scope = "body"
)

// Violation is one broken editorial rule.
type Violation struct {
	Scope   Scope
	Message string
}

// Violation messages.
const (
	MsgTitleEmpty        = "title should not be empty"
	MsgTitleDot          = "title should not end up with dot"
	MsgTitleEllipsis     = "title should not end up with ellipsis (make sure the title is complete)"
	MsgTitleTooShort     = "title should count at least 2 words to describe the change properly"
	MsgTitleUppercase    = "title should preferably start with an uppercase character (if it makes sense!)"
	MsgTitleIssueNumber  = "title should not contain an issue number (use `Fix #1234` in the description instead)"
	MsgTitleConventional = "title should not start with chore/docs/feat/fix/refactor but be a proper sentence"
	MsgBodyEmpty         = "description should not be empty, describe your intent or provide links to the issues this PR is fixing (using `Fixes #NNNNN`) or changelogs"
)

var (
	issueNumberPattern  = regexp.MustCompile(`#[0-9]+`)
	conventionalPattern = regexp.MustCompile(`(?i)^(fix|chore|feat|docs|refactor)[(:]`)

	// Words allowed to open a title in lower case.
	upperCaseExceptions = []string{"gRPC"}
)

// Detect runs every check against title and body. Title violations come first, each list
// in a fixed check order, so identical input always yields identical output.
func Detect(title, body string) []Violation {
	var out []Violation
	for _, msg := range titleViolations(title) {
		out = append(out, Violation{Scope: ScopeTitle, Message: msg})
	}
	for _, msg := range bodyViolations(body) {
		out = append(out, Violation{Scope: ScopeBody, Message: msg})
	}
	return out
}

// TitleMessages returns the messages of title-scoped violations.
func TitleMessages(violations []Violation) []string {
	return messages(violations, ScopeTitle)
}

// BodyMessages returns the messages of body-scoped violations.
func BodyMessages(violations []Violation) []string {
	return messages(violations, ScopeBody)
}

func messages(violations []Violation, scope Scope) []string {
	var out []string
	for _, v := range violations {
		if v.Scope == scope {
			out = append(out, v.Message)
		}
	}
	return out
}

func titleViolations(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return []string{MsgTitleEmpty}
	}

	var errs []string
	switch {
	case strings.HasSuffix(title, "…") || strings.HasSuffix(title, "..."):
		errs = append(errs, MsgTitleEllipsis)
	case strings.HasSuffix(title, "."):
		errs = append(errs, MsgTitleDot)
	}
	if len(strings.Fields(title)) < 2 {
		errs = append(errs, MsgTitleTooShort)
	}
	if !startsProperly(title) {
		errs = append(errs, MsgTitleUppercase)
	}
	if issueNumberPattern.MatchString(title) {
		errs = append(errs, MsgTitleIssueNumber)
	}
	if conventionalPattern.MatchString(title) {
		errs = append(errs, MsgTitleConventional)
	}
	return errs
}

func bodyViolations(body string) []string {
	if strings.TrimSpace(body) == "" {
		return []string{MsgBodyEmpty}
	}
	return nil
}

func startsProperly(title string) bool {
	for _, ex := range upperCaseExceptions {
		if strings.HasPrefix(title, ex) {
			return true
		}
	}
	// Titles carrying a branch marker are judged on the text after it.
	if m := branchMarkerPattern.FindString(title); m != "" && len(m) < len(title) {
		title = title[len(m):]
	}
	r, _ := utf8.DecodeRuneInString(title)
	return unicode.IsUpper(r) || unicode.IsDigit(r) || !unicode.IsLetter(r)
}
