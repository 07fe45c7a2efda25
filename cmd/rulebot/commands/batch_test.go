// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package commands

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/editorial"
)

const batchConfig = `
features:
  check_editorial_rules: true
  triage_issues_and_pull_requests: true
triage:
  rules:
    - id: kafka
      match: {pattern: kafka}
      labels: [area/kafka]
      notify: [alice]
      comment: Kafka issue
`

func TestLoadItems(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantCount int
	}{
		{
			name: "valid items array",
			content: `[
				{"org": "acme", "repo": "widgets", "number": 1, "title": "Kafka consumer hangs", "author": "bob"},
				{"org": "acme", "repo": "widgets", "number": 2, "kind": "pull_request", "title": "Add support"}
			]`,
			wantCount: 2,
		},
		{name: "empty array", content: `[]`, wantErr: true},
		{name: "invalid JSON", content: `[{invalid json`, wantErr: true},
		{name: "missing required fields", content: `[{"org": "acme", "repo": "widgets"}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := loadItems(writeFile(t, "items.json", tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadItems() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(items) != tt.wantCount {
				t.Errorf("loadItems() returned %d items, want %d", len(items), tt.wantCount)
			}
			for _, it := range items {
				if it.EventType == "" || it.EventAction == "" {
					t.Errorf("expected event defaults on %s", it.Ref())
				}
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	cfg, err := config.Parse([]byte(batchConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	items := []pipeline.Item{
		{Org: "acme", Repo: "widgets", Number: 1, Kind: pipeline.KindIssue, Title: "Kafka consumer hangs", Author: "bob", EventType: "issues", EventAction: "opened"},
		{Org: "acme", Repo: "widgets", Number: 2, Kind: pipeline.KindPullRequest, Title: "fix bug", Author: "carol", BaseBranch: "main", EventType: "pull_request", EventAction: "edited"},
		{Org: "acme", Repo: "widgets", Number: 3, Kind: pipeline.KindIssue, Title: "Kafka again", Labels: []string{"area/kafka"}, Author: "bob", EventType: "issues", EventAction: "opened"},
	}

	results := processBatch(context.Background(), items, cfg, "", 2)
	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if r.Error != nil {
			t.Fatalf("item %d failed: %v", i, r.Error)
		}
		if r.Item.Number != items[i].Number {
			t.Errorf("results out of order: index %d holds #%d", i, r.Item.Number)
		}
		if !r.Result.DryRun {
			t.Errorf("item %d: expected dry-run", i)
		}
	}

	first := results[0].Result
	if len(first.LabelsToAdd) != 1 || first.LabelsToAdd[0] != "area/kafka" {
		t.Errorf("expected area/kafka, got %v", first.LabelsToAdd)
	}
	if first.Mentions != "@alice (kafka)" {
		t.Errorf("unexpected mentions %q", first.Mentions)
	}

	second := results[1].Result
	if len(second.TitleViolations) == 0 || second.TitleViolations[0] != editorial.MsgTitleUppercase {
		t.Errorf("expected the uppercase violation, got %v", second.TitleViolations)
	}
	if len(second.Plan) != 1 || second.Plan[0].Kind != actions.AddComment {
		t.Errorf("expected a single editorial comment, got %v", second.Plan)
	}

	// Labels already on the item are not re-added.
	for _, a := range results[2].Result.Plan {
		if a.Kind == actions.AddLabels {
			t.Errorf("expected no label action, got %s", a)
		}
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, outFile, want string
	}{
		{"", "", "json"},
		{"", "out.CSV", "csv"},
		{"", "out.json", "json"},
		{"json", "out.csv", "json"},
	}
	for _, tt := range tests {
		if got := resolveFormat(tt.format, tt.outFile); got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.format, tt.outFile, got, tt.want)
		}
	}
}

func sampleResults() []BatchResult {
	return []BatchResult{
		{
			Item: pipeline.Item{Org: "acme", Repo: "widgets", Number: 1, Kind: pipeline.KindIssue, Title: "Kafka, again", Author: "bob"},
			Result: &pipeline.Result{
				Preset:         pipeline.PresetIssueOpened,
				TriggeredRules: []string{"kafka"},
				LabelsToAdd:    []string{"area/kafka"},
				Mentions:       "@alice (kafka)",
				Plan: []actions.Action{
					{Kind: actions.AddLabels, Labels: []string{"area/kafka"}},
					{Kind: actions.AddComment, Body: "x"},
				},
				DryRun: true,
			},
		},
		{
			Item:  pipeline.Item{Org: "acme", Repo: "widgets", Number: 2, Kind: pipeline.KindPullRequest, Title: "Add support"},
			Error: context.Canceled,
		},
	}
}

func TestFormatCSV(t *testing.T) {
	data, err := formatCSV(sampleResults())
	if err != nil {
		t.Fatalf("formatCSV() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	for i, r := range records {
		if len(r) != len(csvHeader) {
			t.Errorf("row %d has %d columns, want %d", i, len(r), len(csvHeader))
		}
	}

	row := records[1]
	if row[4] != "Kafka, again" {
		t.Errorf("expected the title to survive quoting, got %q", row[4])
	}
	if row[10] != "area/kafka" || row[11] != "@alice (kafka)" {
		t.Errorf("unexpected triage columns: %v", row)
	}
	if row[15] != "add labels [area/kafka];add comment" {
		t.Errorf("unexpected planned actions %q", row[15])
	}
	if records[2][16] != context.Canceled.Error() {
		t.Errorf("expected the error column, got %q", records[2][16])
	}
}

func TestFormatJSON(t *testing.T) {
	data, err := formatJSON(sampleResults())
	if err != nil {
		t.Fatalf("formatJSON() error = %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.TotalItems != 2 || out.Successful != 1 || out.Failed != 1 {
		t.Errorf("unexpected counters: %+v", out)
	}
	if out.Results[1].Error == "" {
		t.Error("expected the error to be rendered")
	}
	if out.ProcessedAt.IsZero() {
		t.Error("expected processed_at to be set")
	}
}

func TestOutputResultsUnknownFormat(t *testing.T) {
	var sb strings.Builder
	if err := outputResults(&sb, nil, "xml"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}
