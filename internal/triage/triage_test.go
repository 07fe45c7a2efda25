// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package triage

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/rules"
)

func compileRules(t *testing.T, cfgRules ...config.TriageRule) []rules.Rule {
	t.Helper()
	compiled, errs := rules.Compile(cfgRules)
	if len(errs) > 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}
	return compiled
}

var defaultPolicy = LabelPolicy{
	MaxNewLabels: 100,
	NeedsTriage:  "needs-triage",
	AreaPrefix:   "area/",
	Exemptions:   []string{"kind/extension-proposal"},
}

func TestMentionsAdd(t *testing.T) {
	var m Mentions
	m = m.Add("alice", "rule-a")
	m = m.Add("alice", "rule-a")
	m = m.Add("@alice", "rule-b")
	m = m.Add("bob", "rule-b")

	if m.Len() != 2 {
		t.Fatalf("expected 2 users, got %d", m.Len())
	}
	if diff := cmp.Diff([]string{"rule-a", "rule-b"}, m.RuleIDs("alice")); diff != "" {
		t.Errorf("alice rule ids mismatch (-want +got):\n%s", diff)
	}
	if got := m.String(); got != "@alice (rule-a, rule-b), @bob (rule-b)" {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestMentionsAddMixedCase(t *testing.T) {
	rs := compileRules(t,
		config.TriageRule{ID: "r1", Match: config.MatchConfig{Pattern: "x"}, Notify: []string{"Alice"}},
		config.TriageRule{ID: "r2", Match: config.MatchConfig{Pattern: "y"}, Notify: []string{"alice"}},
	)

	out := Evaluate("x y", "", "bob", rs)

	if out.Mentions.Len() != 1 {
		t.Fatalf("expected a single user, got %s", out.Mentions)
	}
	if diff := cmp.Diff([]string{"r1", "r2"}, out.Mentions.RuleIDs("ALICE")); diff != "" {
		t.Errorf("rule ids mismatch (-want +got):\n%s", diff)
	}
	if got := out.Mentions.String(); got != "@Alice (r1, r2)" {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestMentionsImmutable(t *testing.T) {
	base := Mentions{}.Add("alice", "rule-a")
	extended := base.Add("alice", "rule-b")
	_ = base.Add("carol", "rule-c")

	if len(base.RuleIDs("alice")) != 1 {
		t.Errorf("expected base to be unchanged, got %v", base.RuleIDs("alice"))
	}
	if len(extended.RuleIDs("alice")) != 2 {
		t.Errorf("expected extended to carry both rules, got %v", extended.RuleIDs("alice"))
	}
	if base.Len() != 1 {
		t.Errorf("expected base to keep a single user, got %d", base.Len())
	}
}

func TestMentionsWithoutParticipants(t *testing.T) {
	m := Mentions{}.Add("alice", "rule-a").Add("alice", "rule-b").Add("bob", "rule-a")

	filtered := m.WithoutParticipants([]string{"Alice", "carol"})
	if diff := cmp.Diff([]string{"bob"}, filtered.Users()); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}
	if len(filtered.RuleIDs("alice")) != 0 {
		t.Error("expected alice attributions to be removed")
	}
	if m.Len() != 2 {
		t.Error("expected the original value to be unchanged")
	}

	onlyAlice := Mentions{}.Add("alice", "rule-a").WithoutParticipants([]string{"alice"})
	if !onlyAlice.IsEmpty() {
		t.Error("expected no mentions left")
	}
	if entries := CommentEntries(nil, onlyAlice); len(entries) != 0 {
		t.Errorf("expected no /cc line, got %v", entries)
	}
}

func TestEvaluateAccumulatesAllMatches(t *testing.T) {
	rs := compileRules(t,
		config.TriageRule{ID: "hibernate", Match: config.MatchConfig{Pattern: "hibernate"}, Labels: []string{"area/hibernate-orm", "area/persistence"}, Notify: []string{"alice"}, Comment: "Hibernate ORM issue"},
		config.TriageRule{ID: "kafka", Match: config.MatchConfig{Pattern: "kafka"}, Labels: []string{"area/kafka"}, Notify: []string{"bob"}},
		config.TriageRule{ID: "panache", Match: config.MatchConfig{Pattern: "panache"}, Labels: []string{"area/persistence"}, Notify: []string{"alice"}, Comment: "Panache involved"},
	)

	out := Evaluate("Hibernate with Panache", "", "reporter", rs)

	if diff := cmp.Diff([]string{"hibernate", "panache"}, out.TriggeredRules); diff != "" {
		t.Errorf("triggered rules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"area/hibernate-orm", "area/persistence"}, out.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Hibernate ORM issue", "Panache involved"}, out.Comments); diff != "" {
		t.Errorf("comments mismatch (-want +got):\n%s", diff)
	}
	if out.Mentions.Len() != 1 || len(out.Mentions.RuleIDs("alice")) != 2 {
		t.Errorf("expected a single alice entry with 2 rules, got %s", out.Mentions)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	rs := compileRules(t,
		config.TriageRule{ID: "a", Match: config.MatchConfig{Pattern: "kafka"}, Labels: []string{"area/kafka", "area/messaging"}, Notify: []string{"zed", "amy"}},
		config.TriageRule{ID: "b", Match: config.MatchConfig{Pattern: "streams"}, Labels: []string{"area/streams"}, Notify: []string{"amy"}, Comment: "streams"},
	)

	first := Evaluate("Kafka streams", "body", "someone", rs)
	second := Evaluate("Kafka streams", "body", "someone", rs)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("expected identical outcomes (-first +second):\n%s", diff)
	}
	if first.Mentions.String() != second.Mentions.String() {
		t.Error("expected identical mention rendering")
	}
}

func TestEvaluateExcludesAuthor(t *testing.T) {
	rs := compileRules(t,
		config.TriageRule{ID: "kafka", Match: config.MatchConfig{Pattern: "kafka"}, Notify: []string{"Alice", "bob"}},
	)

	out := Evaluate("Kafka", "", "alice", rs)

	if diff := cmp.Diff([]string{"bob"}, out.Mentions.Users()); diff != "" {
		t.Errorf("mentions mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	out := Evaluate("", "", "alice", nil)
	if len(out.TriggeredRules) != 0 || len(out.Labels) != 0 || !out.Mentions.IsEmpty() || len(out.Comments) != 0 {
		t.Errorf("expected an empty outcome, got %+v", out)
	}
}

func TestReduceLabels(t *testing.T) {
	withMention := Mentions{}.Add("alice", "r")

	tests := []struct {
		name      string
		requested []string
		current   []string
		mentions  Mentions
		policy    LabelPolicy
		want      []string
	}{
		{
			name:      "zero matches falls back to needs-triage",
			requested: nil,
			policy:    defaultPolicy,
			want:      []string{"needs-triage"},
		},
		{
			name:      "existing labels are subtracted",
			requested: []string{"area/kafka", "kind/bug"},
			current:   []string{"kind/bug"},
			policy:    defaultPolicy,
			want:      []string{"area/kafka"},
		},
		{
			name:      "mentions suppress the fallback",
			requested: []string{"kind/bug"},
			mentions:  withMention,
			policy:    defaultPolicy,
			want:      []string{"kind/bug"},
		},
		{
			name:      "fallback is added next to non-area labels",
			requested: []string{"kind/bug"},
			policy:    defaultPolicy,
			want:      []string{"kind/bug", "needs-triage"},
		},
		{
			name:    "existing area label suppresses the fallback",
			current: []string{"area/core"},
			policy:  defaultPolicy,
			want:    []string{},
		},
		{
			name:    "exemption label suppresses the fallback",
			current: []string{"kind/extension-proposal"},
			policy:  defaultPolicy,
			want:    []string{},
		},
		{
			name:    "needs-triage already present",
			current: []string{"needs-triage"},
			policy:  defaultPolicy,
			want:    []string{},
		},
		{
			name:      "requested area label already present still suppresses the fallback",
			requested: []string{"area/kafka"},
			current:   []string{"area/kafka"},
			policy:    defaultPolicy,
			want:      []string{},
		},
		{
			name:      "duplicates collapse case-insensitively",
			requested: []string{"area/Kafka", "area/kafka"},
			policy:    defaultPolicy,
			want:      []string{"area/Kafka"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceLabels(tt.requested, tt.current, tt.mentions, tt.policy)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReduceLabels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReduceLabelsCardinality(t *testing.T) {
	requested := []string{"area/zeta", "area/alpha", "area/mu", "area/beta", "area/kappa"}
	policy := defaultPolicy
	policy.MaxNewLabels = 3

	got := ReduceLabels(requested, nil, Mentions{}, policy)

	want := []string{"area/alpha", "area/beta", "area/kappa"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("truncation mismatch (-want +got):\n%s", diff)
	}

	// Input order must not influence the result.
	reversed := []string{"area/kappa", "area/beta", "area/mu", "area/alpha", "area/zeta"}
	if diff := cmp.Diff(want, ReduceLabels(reversed, nil, Mentions{}, policy)); diff != "" {
		t.Errorf("truncation depends on input order (-want +got):\n%s", diff)
	}
}

func TestCommentEntries(t *testing.T) {
	m := Mentions{}.Add("bob", "kafka").Add("alice", "kafka").Add("alice", "streams")
	got := CommentEntries([]string{"Kafka issue"}, m)
	want := []string{"Kafka issue", "/cc @alice (kafka, streams), @bob (kafka)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("triage:\n  max_new_labels: 4\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := PolicyFromConfig(cfg.Triage)
	want := LabelPolicy{MaxNewLabels: 4, NeedsTriage: "needs-triage", AreaPrefix: "area/", Exemptions: []string{"kind/extension-proposal"}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("policy mismatch (-want +got):\n%s", diff)
	}
}
