// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-15

package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"golang.org/x/time/rate"

	"github.com/similigh/rulebot/internal/host"
)

const perPage = 100

// Client wraps the GitHub API client and implements host.Host.
// Calls are never retried; failures surface to the caller.
type Client struct {
	client  *github.Client
	graphql *GraphQLClient
	limiter *rate.Limiter
}

var _ host.Host = (*Client)(nil)

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// GetLabels returns the names of the labels set on an issue or pull request.
func (c *Client) GetLabels(ctx context.Context, ref host.ItemRef) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: perPage}
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		labels, resp, err := c.client.Issues.ListLabelsByIssue(ctx, ref.Org, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		for _, l := range labels {
			names = append(names, l.GetName())
		}
		if resp.NextPage == 0 {
			return names, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetComments returns every comment of an issue or pull request in creation order.
func (c *Client) GetComments(ctx context.Context, ref host.ItemRef) ([]host.Comment, error) {
	var out []host.Comment
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		comments, resp, err := c.client.Issues.ListComments(ctx, ref.Org, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}
		for _, cm := range comments {
			out = append(out, host.Comment{
				ID:     cm.GetID(),
				Body:   cm.GetBody(),
				Author: cm.GetUser().GetLogin(),
			})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetParticipants returns the logins GitHub lists as participants of the item.
func (c *Client) GetParticipants(ctx context.Context, ref host.ItemRef) ([]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.graphql.GetParticipants(ctx, ref.Org, ref.Repo, ref.Number)
}

// AddLabels adds labels to an issue or pull request.
func (c *Client) AddLabels(ctx context.Context, ref host.ItemRef, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, ref.Org, ref.Repo, ref.Number, labels)
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	return nil
}

// AddComment posts a comment and returns its id.
func (c *Client) AddComment(ctx context.Context, ref host.ItemRef, body string) (int64, error) {
	if strings.TrimSpace(body) == "" {
		return 0, fmt.Errorf("comment body cannot be empty")
	}
	if err := c.wait(ctx); err != nil {
		return 0, err
	}

	comment := &github.IssueComment{
		Body: github.String(body),
	}
	created, _, err := c.client.Issues.CreateComment(ctx, ref.Org, ref.Repo, ref.Number, comment)
	if err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}
	return created.GetID(), nil
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, ref host.ItemRef, commentID int64, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	_, _, err := c.client.Issues.EditComment(ctx, ref.Org, ref.Repo, commentID, &github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("failed to update comment %d: %w", commentID, err)
	}
	return nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, ref host.ItemRef, commentID int64) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if _, err := c.client.Issues.DeleteComment(ctx, ref.Org, ref.Repo, commentID); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	return nil
}

// SetTitle renames an issue or pull request.
func (c *Client) SetTitle(ctx context.Context, ref host.ItemRef, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	_, _, err := c.client.Issues.Edit(ctx, ref.Org, ref.Repo, ref.Number, &github.IssueRequest{Title: github.String(title)})
	if err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	return nil
}

// GetFileContent fetches a file from a repository at the given ref. Used to resolve config inheritance.
func (c *Client) GetFileContent(ctx context.Context, org, repo, path, ref string) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	file, _, _, err := c.client.Repositories.GetContents(ctx, org, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s/%s@%s: %w", org, repo, path, ref, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s in %s/%s is not a file", path, org, repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}
