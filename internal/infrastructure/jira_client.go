package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"jira-bitbucket-mcp-server/internal/domain"
)

// JiraClient handles JIRA Cloud API interactions (REST v3 and Agile 1.0).
// It provides one method per tool operation; every method performs a single
// HTTP request and decodes the response.
type JiraClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJiraClient creates a new JIRA API client.
// The baseURL is the root URL of the JIRA Cloud site
// (e.g., "https://your-domain.atlassian.net"). The httpClient should be an
// authenticated client from the CredentialStore.
func NewJiraClient(baseURL string, httpClient *http.Client) *JiraClient {
	return &JiraClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL for the JIRA site.
func (c *JiraClient) BaseURL() string {
	return c.baseURL
}

// doJSON executes one HTTP request against the JIRA API. A non-nil body is
// marshaled as the JSON request body; a non-nil out receives the decoded
// JSON response. Non-2xx responses become domain.HTTPError carrying the
// upstream status and body.
func (c *JiraClient) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListProjects retrieves all projects accessible to the authenticated user.
func (c *JiraClient) ListProjects(ctx context.Context) ([]domain.Project, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/project", c.baseURL)

	var projects []domain.Project
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject retrieves a project by its key (e.g., "PROJ").
func (c *JiraClient) GetProject(ctx context.Context, projectKey string) (*domain.Project, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/project/%s", c.baseURL, url.PathEscape(projectKey))

	var project domain.Project
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a new project.
func (c *JiraClient) CreateProject(ctx context.Context, create *domain.ProjectCreate) (*domain.Project, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/project", c.baseURL)

	var project domain.Project
	if err := c.doJSON(ctx, http.MethodPost, endpoint, create, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// SearchIssues performs a JQL search via the cursor-paginated search endpoint.
func (c *JiraClient) SearchIssues(ctx context.Context, search *domain.SearchRequest) (*domain.SearchResults, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/search/jql", c.baseURL)

	var results domain.SearchResults
	if err := c.doJSON(ctx, http.MethodPost, endpoint, search, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// GetIssue retrieves an issue by its key (e.g., "PROJ-123").
func (c *JiraClient) GetIssue(ctx context.Context, issueKey string) (*domain.JiraIssue, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s", c.baseURL, url.PathEscape(issueKey))

	var issue domain.JiraIssue
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates a new issue.
// Returns the created issue reference with its assigned key and ID.
func (c *JiraClient) CreateIssue(ctx context.Context, create *domain.JiraIssueCreate) (*domain.JiraIssue, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue", c.baseURL)

	var issue domain.JiraIssue
	if err := c.doJSON(ctx, http.MethodPost, endpoint, create, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue updates the fields of an existing issue.
func (c *JiraClient) UpdateIssue(ctx context.Context, issueKey string, update *domain.JiraIssueUpdate) error {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s", c.baseURL, url.PathEscape(issueKey))
	return c.doJSON(ctx, http.MethodPut, endpoint, update, nil)
}

// DeleteIssue deletes an issue.
func (c *JiraClient) DeleteIssue(ctx context.Context, issueKey string) error {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s", c.baseURL, url.PathEscape(issueKey))
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// AssignIssue assigns an issue to the user with the given account ID.
func (c *JiraClient) AssignIssue(ctx context.Context, issueKey, accountID string) error {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s/assignee", c.baseURL, url.PathEscape(issueKey))
	return c.doJSON(ctx, http.MethodPut, endpoint, &domain.AssigneeRequest{AccountID: accountID}, nil)
}

// GetTransitions lists the workflow transitions available for an issue.
func (c *JiraClient) GetTransitions(ctx context.Context, issueKey string) (*domain.TransitionsResponse, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.baseURL, url.PathEscape(issueKey))

	var transitions domain.TransitionsResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &transitions); err != nil {
		return nil, err
	}
	return &transitions, nil
}

// TransitionIssue performs a workflow transition on an issue.
func (c *JiraClient) TransitionIssue(ctx context.Context, issueKey string, transition *domain.IssueTransition) error {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.baseURL, url.PathEscape(issueKey))
	return c.doJSON(ctx, http.MethodPost, endpoint, transition, nil)
}

// AddComment adds a comment to an issue. Returns the created comment.
func (c *JiraClient) AddComment(ctx context.Context, issueKey string, comment *domain.CommentCreate) (*domain.Comment, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s/comment", c.baseURL, url.PathEscape(issueKey))

	var created domain.Comment
	if err := c.doJSON(ctx, http.MethodPost, endpoint, comment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteComment deletes a comment from an issue.
func (c *JiraClient) DeleteComment(ctx context.Context, issueKey, commentID string) error {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s/comment/%s",
		c.baseURL, url.PathEscape(issueKey), url.PathEscape(commentID))
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// ListSprints retrieves the sprints of a board.
func (c *JiraClient) ListSprints(ctx context.Context, boardID int) (*domain.AgilePage[domain.Sprint], error) {
	endpoint := fmt.Sprintf("%s/rest/agile/1.0/board/%d/sprint", c.baseURL, boardID)

	var sprints domain.AgilePage[domain.Sprint]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &sprints); err != nil {
		return nil, err
	}
	return &sprints, nil
}

// GetSprint retrieves a sprint by its ID.
func (c *JiraClient) GetSprint(ctx context.Context, sprintID int) (*domain.Sprint, error) {
	endpoint := fmt.Sprintf("%s/rest/agile/1.0/sprint/%d", c.baseURL, sprintID)

	var sprint domain.Sprint
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

// CreateSprint creates a new sprint on a board.
func (c *JiraClient) CreateSprint(ctx context.Context, create *domain.SprintCreate) (*domain.Sprint, error) {
	endpoint := fmt.Sprintf("%s/rest/agile/1.0/sprint", c.baseURL)

	var sprint domain.Sprint
	if err := c.doJSON(ctx, http.MethodPost, endpoint, create, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

// MoveIssuesToSprint moves the given issues into a sprint.
func (c *JiraClient) MoveIssuesToSprint(ctx context.Context, sprintID int, issueKeys []string) error {
	endpoint := fmt.Sprintf("%s/rest/agile/1.0/sprint/%d/issue", c.baseURL, sprintID)
	return c.doJSON(ctx, http.MethodPost, endpoint, &domain.SprintIssueMove{Issues: issueKeys}, nil)
}

// ListBoards retrieves all boards visible to the authenticated user.
func (c *JiraClient) ListBoards(ctx context.Context) (*domain.AgilePage[domain.Board], error) {
	endpoint := fmt.Sprintf("%s/rest/agile/1.0/board", c.baseURL)

	var boards domain.AgilePage[domain.Board]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &boards); err != nil {
		return nil, err
	}
	return &boards, nil
}

// GetBoard retrieves a board by its ID.
func (c *JiraClient) GetBoard(ctx context.Context, boardID int) (*domain.Board, error) {
	endpoint := fmt.Sprintf("%s/rest/agile/1.0/board/%d", c.baseURL, boardID)

	var board domain.Board
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// SearchUsers searches for users matching the query.
func (c *JiraClient) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	params := url.Values{}
	params.Set("query", query)
	endpoint := fmt.Sprintf("%s/rest/api/3/user/search?%s", c.baseURL, params.Encode())

	var users []domain.User
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetCurrentUser retrieves the authenticated user.
func (c *JiraClient) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/myself", c.baseURL)

	var user domain.User
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListFields retrieves all fields, including custom fields.
func (c *JiraClient) ListFields(ctx context.Context) ([]domain.JiraField, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/field", c.baseURL)

	var fields []domain.JiraField
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
