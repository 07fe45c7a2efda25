// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/similigh/rulebot/internal/core/pipeline"
	gh "github.com/similigh/rulebot/internal/integrations/github"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadItem_ItemFile(t *testing.T) {
	path := writeFile(t, "item.json", `{
		"org": "acme",
		"repo": "widgets",
		"number": 7,
		"kind": "pull_request",
		"title": "Add support",
		"author": "contributor"
	}`)

	item, err := loadItem(path, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.EventType != "pull_request" || item.EventAction != "opened" {
		t.Errorf("expected pull_request.opened defaults, got %s.%s", item.EventType, item.EventAction)
	}
	if item.Ref().String() != "acme/widgets#7" {
		t.Errorf("unexpected ref %s", item.Ref())
	}
}

func TestLoadItem_EventPayload(t *testing.T) {
	path := writeFile(t, "event.json", `{
		"action": "opened",
		"issue": {
			"number": 3,
			"title": "Kafka consumer hangs",
			"body": "details",
			"user": {"login": "reporter"},
			"labels": [{"name": "kind/bug"}]
		},
		"repository": {"name": "widgets", "owner": {"login": "acme"}},
		"sender": {"login": "reporter"}
	}`)

	item, err := loadItem("", "issues", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Kind != pipeline.KindIssue || item.Number != 3 || item.Author != "reporter" {
		t.Errorf("unexpected item %+v", item)
	}
	if len(item.Labels) != 1 || item.Labels[0] != "kind/bug" {
		t.Errorf("expected labels from payload, got %v", item.Labels)
	}
}

func TestLoadItem_Errors(t *testing.T) {
	ping := writeFile(t, "ping.json", `{"zen": "Keep it logically awesome."}`)
	bad := writeFile(t, "bad.json", `{not json`)

	if _, err := loadItem("", "", ""); err == nil {
		t.Error("expected an error without any input")
	}
	if _, err := loadItem("", "ping", ping); !errors.Is(err, gh.ErrUnsupportedEvent) {
		t.Errorf("expected ErrUnsupportedEvent, got %v", err)
	}
	if _, err := loadItem(bad, "", ""); err == nil {
		t.Error("expected a parse error for the item file")
	}
	if _, err := loadItem("", "issues", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected a read error")
	}
}

func TestDefaultEvent(t *testing.T) {
	tests := []struct {
		name       string
		item       pipeline.Item
		wantType   string
		wantAction string
	}{
		{"empty kind is an issue", pipeline.Item{}, "issues", "opened"},
		{"pull request", pipeline.Item{Kind: pipeline.KindPullRequest}, "pull_request", "opened"},
		{"explicit event kept", pipeline.Item{Kind: pipeline.KindPullRequest, EventType: "pull_request", EventAction: "edited"}, "pull_request", "edited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			defaultEvent(&item)
			if item.EventType != tt.wantType || item.EventAction != tt.wantAction {
				t.Errorf("got %s.%s, want %s.%s", item.EventType, item.EventAction, tt.wantType, tt.wantAction)
			}
		})
	}
}
