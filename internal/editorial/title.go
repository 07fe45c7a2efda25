// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package editorial

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	// "fix: x", "feat(core)!: x"
	conventionalPrefixPattern = regexp.MustCompile(`(?i)^(fix|feat|chore|docs|refactor)(\([^)]*\))?!?\s*:\s*(.*)$`)

	// "[3.2] ", "(3.2) ", "3.2 - ", "[3.2.1]"
	versionMarkerPattern = regexp.MustCompile(`^[\[(]?[0-9]+\.[0-9]+(\.[0-9]+)?[\])]?([ \-]+|$)`)

	// Any leading "[...]" marker.
	branchMarkerPattern = regexp.MustCompile(`^\[[^\]]+\]\s*`)

	// "3.2", "3.2.1"
	maintenanceBranchPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?$`)
)

// IsMaintenanceBranch reports whether branch is a version branch whose pull request
// titles carry a "[branch] " marker.
func IsMaintenanceBranch(branch string) bool {
	return maintenanceBranchPattern.MatchString(strings.TrimSpace(branch))
}

// IsDefaultBranch reports whether branch is the main development line.
func IsDefaultBranch(branch string) bool {
	switch strings.TrimSpace(branch) {
	case "", "main", "master":
		return true
	}
	return false
}

// NormalizeTitle returns the canonical form of a pull request title for baseBranch.
//
// Whitespace is collapsed, a conventional-commit prefix is rewritten into a sentence
// ("Fix: Something" becomes "Fix something"), a single trailing dot is dropped, and titles
// targeting a maintenance branch get a "[branch] " marker replacing any version marker.
// Other branches keep whatever marker the author wrote.
// Normalizing an already canonical title returns it unchanged.
func NormalizeTitle(title, baseBranch string) string {
	if strings.TrimSpace(title) == "" {
		return title
	}
	baseBranch = strings.TrimSpace(baseBranch)

	t := whitespacePattern.ReplaceAllString(strings.TrimSpace(title), " ")
	t = stripMarkers(t, baseBranch)

	if m := conventionalPrefixPattern.FindStringSubmatch(t); m != nil && strings.TrimSpace(m[3]) != "" {
		rest := strings.TrimSpace(m[3])
		if strings.EqualFold(m[1], "fix") {
			t = "Fix " + lowerFirst(rest)
		} else {
			t = upperFirst(rest)
		}
	}

	if strings.HasSuffix(t, ".") && !strings.HasSuffix(t, "..") {
		t = strings.TrimSpace(strings.TrimSuffix(t, "."))
	}

	if IsMaintenanceBranch(baseBranch) {
		t = "[" + baseBranch + "] " + t
	}
	return t
}

// stripMarkers removes leading version and branch markers.
func stripMarkers(t, baseBranch string) string {
	for {
		before := t
		switch {
		case IsDefaultBranch(baseBranch):
			for _, b := range []string{"[main]", "[master]"} {
				if len(t) > len(b) && strings.EqualFold(t[:len(b)], b) {
					t = strings.TrimSpace(t[len(b):])
				}
			}
		case IsMaintenanceBranch(baseBranch):
			marker := "[" + baseBranch + "]"
			if strings.HasPrefix(t, marker) && len(t) > len(marker) {
				t = strings.TrimSpace(strings.TrimPrefix(t, marker))
			}
			if loc := versionMarkerPattern.FindStringIndex(t); loc != nil && loc[1] < len(t) {
				t = strings.TrimSpace(t[loc[1]:])
			}
		}
		if t == before {
			return t
		}
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// lowerFirst lower-cases the first rune unless the first word looks like an acronym.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
