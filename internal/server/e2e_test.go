// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/similigh/rulebot/internal/actions"
	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
	gh "github.com/similigh/rulebot/internal/integrations/github"
	"github.com/similigh/rulebot/internal/reconcile"
	"github.com/similigh/rulebot/internal/rules"
	"github.com/similigh/rulebot/internal/steps"
)

// fakeGitHub serves the handful of REST and GraphQL endpoints used for acme/widgets#3.
type fakeGitHub struct {
	mu        sync.Mutex
	labels    []string
	comments  []map[string]any
	mutations int
}

func (f *fakeGitHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/issues/3/labels", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Method == http.MethodPost {
			var added []string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&added))
			f.labels = append(f.labels, added...)
			f.mutations++
		}
		out := make([]map[string]string, 0, len(f.labels))
		for _, l := range f.labels {
			out = append(out, map[string]string{"name": l})
		}
		assert.NoError(t, json.NewEncoder(w).Encode(out))
	})
	mux.HandleFunc("/repos/acme/widgets/issues/3/comments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Method == http.MethodPost {
			var req struct {
				Body string `json:"body"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			c := map[string]any{"id": 900 + len(f.comments), "body": req.Body, "user": map[string]string{"login": "rulebot[bot]"}}
			f.comments = append(f.comments, c)
			f.mutations++
			assert.NoError(t, json.NewEncoder(w).Encode(c))
			return
		}
		assert.NoError(t, json.NewEncoder(w).Encode(f.comments))
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"data":{"repository":{"issueOrPullRequest":{"participants":{"nodes":[{"login":"reporter"}],"pageInfo":{"hasNextPage":false}}}}}}`)
	})
	return mux
}

func TestEndToEndIssueTriage(t *testing.T) {
	cfg, err := config.Parse([]byte(`
features:
  triage_issues_and_pull_requests: true
triage:
  rules:
    - id: kafka
      match: {pattern: kafka}
      labels: [area/kafka]
      notify: [alice]
      comment: Kafka issue
`))
	require.NoError(t, err)
	compiled, errs := rules.Compile(cfg.Triage.Rules)
	require.Empty(t, errs)

	fake := &fakeGitHub{}
	api := httptest.NewServer(fake.handler(t))
	t.Cleanup(api.Close)

	client := gh.NewClient(context.Background(), "", gh.WithBaseURL(api.URL), gh.WithRateLimit(1000))
	d := steps.NewDispatcher(&pipeline.Dependencies{
		Host:    client,
		Actions: actions.New(client, false, nil),
		Rules:   compiled,
	})
	s, err := New(d, cfg, Options{Secret: secret})
	require.NoError(t, err)

	rec := serve(s, webhookRequest("issues", "delivery-1", issueOpened, secret))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, pipeline.PresetIssueOpened, res.Preset)
	assert.Equal(t, []string{"kafka"}, res.TriggeredRules)
	assert.Len(t, res.Executed, 2)

	fake.mu.Lock()
	assert.Equal(t, []string{"area/kafka"}, fake.labels)
	require.Len(t, fake.comments, 1)
	want := reconcile.BuildBody(reconcile.TriageHeader, []string{"Kafka issue", "/cc @alice (kafka)"}, reconcile.BotMarker)
	assert.Equal(t, want, fake.comments[0]["body"])
	fake.mu.Unlock()

	// A redelivered event under a new delivery id finds everything in place.
	rec = serve(s, webhookRequest("issues", "delivery-2", issueOpened, secret))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 2, fake.mutations)
}
