// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package commands

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/similigh/rulebot/internal/core/config"
)

func TestValidateConfig(t *testing.T) {
	color.NoColor = true

	cfg, err := config.Parse([]byte(`
features:
  check_editorial_rules: true
triage:
  rules:
    - id: kafka
      match: {pattern: kafka}
      labels: [area/kafka]
    - id: broken
      match: {pattern: "(unclosed"}
    - id: kafka
      match: {pattern: streams, kind: literal}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var sb strings.Builder
	n := validateConfig(&sb, cfg)
	out := sb.String()

	if n != 2 {
		t.Errorf("expected 2 broken rules, got %d\n%s", n, out)
	}
	for _, want := range []string{
		"check_editorial_rules            on",
		"triage_issues_and_pull_requests  off",
		"✓ kafka (regex, either)",
		"✗ triage rule broken",
		"triage_issues_and_pull_requests is off",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestValidateConfigClean(t *testing.T) {
	color.NoColor = true

	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var sb strings.Builder
	if n := validateConfig(&sb, cfg); n != 0 {
		t.Errorf("expected no broken rules, got %d", n)
	}
	if !strings.Contains(sb.String(), "Triage rules (0):") {
		t.Errorf("unexpected output:\n%s", sb.String())
	}
}
