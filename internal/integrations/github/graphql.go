// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-04
// Last Modified: 2026-10-14

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const graphQLEndpoint = "https://api.github.com/graphql"

// GraphQLClient provides access to GitHub's GraphQL API.
type GraphQLClient struct {
	httpClient *http.Client
	token      string
	endpoint   string
}

// NewGraphQLClient creates a new GraphQL client with the given token.
func NewGraphQLClient(httpClient *http.Client, token string) *GraphQLClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GraphQLClient{
		httpClient: httpClient,
		token:      token,
		endpoint:   graphQLEndpoint,
	}
}

// graphQLRequest represents a GraphQL request payload.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLResponse represents a GraphQL response.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// execute sends a GraphQL query/mutation and returns the response data.
func (c *GraphQLClient) execute(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	reqBody := graphQLRequest{
		Query:     query,
		Variables: variables,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Truncate response body to avoid leaking sensitive data in logs
		truncated := string(respBody)
		if len(truncated) > 200 {
			truncated = truncated[:200] + "..."
		}
		return nil, fmt.Errorf("GraphQL request failed with status %d: %s", resp.StatusCode, truncated)
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}

// participantsQuery lists everyone GitHub counts as involved: commenters, reviewers, reactors.
const participantsQuery = `
	query($owner: String!, $repo: String!, $number: Int!, $cursor: String) {
		repository(owner: $owner, name: $repo) {
			issueOrPullRequest(number: $number) {
				... on Issue {
					participants(first: 100, after: $cursor) {
						nodes { login }
						pageInfo { hasNextPage endCursor }
					}
				}
				... on PullRequest {
					participants(first: 100, after: $cursor) {
						nodes { login }
						pageInfo { hasNextPage endCursor }
					}
				}
			}
		}
	}
`

// GetParticipants returns the logins of the participants of an issue or pull request.
func (c *GraphQLClient) GetParticipants(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var logins []string
	var cursor *string
	for {
		variables := map[string]interface{}{
			"owner":  owner,
			"repo":   repo,
			"number": number,
			"cursor": cursor,
		}

		data, err := c.execute(ctx, participantsQuery, variables)
		if err != nil {
			return nil, err
		}

		var result struct {
			Repository struct {
				Item *struct {
					Participants struct {
						Nodes []struct {
							Login string `json:"login"`
						} `json:"nodes"`
						PageInfo struct {
							HasNextPage bool   `json:"hasNextPage"`
							EndCursor   string `json:"endCursor"`
						} `json:"pageInfo"`
					} `json:"participants"`
				} `json:"issueOrPullRequest"`
			} `json:"repository"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse participants: %w", err)
		}
		if result.Repository.Item == nil {
			return nil, fmt.Errorf("issue not found: %s/%s#%d", owner, repo, number)
		}

		p := result.Repository.Item.Participants
		for _, n := range p.Nodes {
			if n.Login != "" {
				logins = append(logins, n.Login)
			}
		}
		if !p.PageInfo.HasNextPage {
			return logins, nil
		}
		next := p.PageInfo.EndCursor
		cursor = &next
	}
}
