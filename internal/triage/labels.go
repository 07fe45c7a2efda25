// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package triage

import (
	"sort"
	"strings"

	"github.com/similigh/rulebot/internal/core/config"
)

// LabelPolicy controls how requested labels are reduced before being applied.
type LabelPolicy struct {
	// MaxNewLabels caps the labels added in one run; zero or less means no cap.
	MaxNewLabels int
	NeedsTriage  string
	AreaPrefix   string
	Exemptions   []string
}

// PolicyFromConfig builds a LabelPolicy from the triage configuration.
func PolicyFromConfig(cfg config.TriageConfig) LabelPolicy {
	return LabelPolicy{
		MaxNewLabels: cfg.MaxNewLabels,
		NeedsTriage:  cfg.NeedsTriageLabel,
		AreaPrefix:   cfg.AreaLabelPrefix,
		Exemptions:   cfg.ExemptionLabels,
	}
}

// ReduceLabels returns the labels to add to an item.
//
// Labels already on the item are never requested again. When more than MaxNewLabels remain,
// the lexicographically smallest MaxNewLabels are kept. The needs-triage label is appended
// (outside the cap) when nothing classified the item: no pending mentions, no area label
// requested or present, no exemption label present, and needs-triage not already set.
func ReduceLabels(requested, current []string, mentions Mentions, p LabelPolicy) []string {
	reduced := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, l := range requested {
		if l == "" || labelIn(current, l) {
			continue
		}
		key := strings.ToLower(l)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		reduced = append(reduced, l)
	}

	sort.Strings(reduced)
	if p.MaxNewLabels > 0 && len(reduced) > p.MaxNewLabels {
		reduced = reduced[:p.MaxNewLabels]
	}

	if needsTriage(requested, current, mentions, p) {
		if !labelIn(reduced, p.NeedsTriage) {
			reduced = append(reduced, p.NeedsTriage)
		}
	}

	return reduced
}

func needsTriage(requested, current []string, mentions Mentions, p LabelPolicy) bool {
	if p.NeedsTriage == "" || !mentions.IsEmpty() {
		return false
	}
	if HasAreaLabel(requested, p.AreaPrefix) || HasAreaLabel(current, p.AreaPrefix) {
		return false
	}
	for _, ex := range p.Exemptions {
		if labelIn(current, ex) {
			return false
		}
	}
	return !labelIn(current, p.NeedsTriage)
}

// HasAreaLabel reports whether any label starts with the area prefix.
func HasAreaLabel(labels []string, prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, l := range labels {
		if strings.HasPrefix(strings.ToLower(l), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func labelIn(labels []string, name string) bool {
	for _, l := range labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}
