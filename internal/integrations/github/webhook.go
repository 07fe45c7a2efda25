// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package github

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v60/github"

	"github.com/similigh/rulebot/internal/core/pipeline"
)

// ErrUnsupportedEvent is returned for webhook events rulebot does not handle.
var ErrUnsupportedEvent = errors.New("unsupported event")

// ValidateRequest checks the X-Hub-Signature-256 header against secret and returns the raw payload.
// An empty secret skips signature validation.
func ValidateRequest(r *http.Request, secret []byte) ([]byte, error) {
	payload, err := github.ValidatePayload(r, secret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	return payload, nil
}

// ItemFromEvent decodes an issues or pull_request webhook payload into a pipeline item.
func ItemFromEvent(eventType string, payload []byte) (*pipeline.Item, error) {
	if eventType != "issues" && eventType != "pull_request" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventType)
	}
	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s payload: %w", eventType, err)
	}

	switch e := event.(type) {
	case *github.IssuesEvent:
		is := e.GetIssue()
		return &pipeline.Item{
			Org:         e.GetRepo().GetOwner().GetLogin(),
			Repo:        e.GetRepo().GetName(),
			Number:      is.GetNumber(),
			Kind:        pipeline.KindIssue,
			Title:       is.GetTitle(),
			Body:        is.GetBody(),
			Labels:      labelNames(is.Labels),
			Author:      is.GetUser().GetLogin(),
			URL:         is.GetHTMLURL(),
			EventType:   "issues",
			EventAction: e.GetAction(),
			Sender:      e.GetSender().GetLogin(),
		}, nil

	case *github.PullRequestEvent:
		pr := e.GetPullRequest()
		return &pipeline.Item{
			Org:         e.GetRepo().GetOwner().GetLogin(),
			Repo:        e.GetRepo().GetName(),
			Number:      pr.GetNumber(),
			Kind:        pipeline.KindPullRequest,
			Title:       pr.GetTitle(),
			Body:        pr.GetBody(),
			Labels:      labelNames(pr.Labels),
			Author:      pr.GetUser().GetLogin(),
			BaseBranch:  pr.GetBase().GetRef(),
			URL:         pr.GetHTMLURL(),
			EventType:   "pull_request",
			EventAction: e.GetAction(),
			Sender:      e.GetSender().GetLogin(),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventType)
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}
