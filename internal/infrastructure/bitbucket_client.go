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

// BitbucketClient handles Bitbucket Cloud 2.0 API interactions.
type BitbucketClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBitbucketClient creates a new Bitbucket API client.
// The baseURL is usually "https://api.bitbucket.org"; the httpClient should
// be an authenticated client from the CredentialStore.
func NewBitbucketClient(baseURL string, httpClient *http.Client) *BitbucketClient {
	return &BitbucketClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL for the Bitbucket API.
func (c *BitbucketClient) BaseURL() string {
	return c.baseURL
}

// doJSON executes one HTTP request against the Bitbucket API. A non-nil body
// is marshaled as the JSON request body; a non-nil out receives the decoded
// JSON response. Non-2xx responses become domain.HTTPError carrying the
// upstream status and body.
func (c *BitbucketClient) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) error {
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

// doRaw executes a GET request and returns the response body as text.
// Used for endpoints that return non-JSON content, such as diffs.
func (c *BitbucketClient) doRaw(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), string(respBody))
	}

	return string(respBody), nil
}

// GetRepository retrieves a repository by workspace and slug.
func (c *BitbucketClient) GetRepository(ctx context.Context, workspace, repoSlug string) (*domain.Repository, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))

	var repo domain.Repository
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListRepositories retrieves the repositories in a workspace.
func (c *BitbucketClient) ListRepositories(ctx context.Context, workspace string) (*domain.Page[domain.Repository], error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s", c.baseURL, url.PathEscape(workspace))

	var repos domain.Page[domain.Repository]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &repos); err != nil {
		return nil, err
	}
	return &repos, nil
}

// CreateRepository creates a new repository in a workspace.
func (c *BitbucketClient) CreateRepository(ctx context.Context, workspace, repoSlug string, create *domain.RepositoryCreate) (*domain.Repository, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))

	var repo domain.Repository
	if err := c.doJSON(ctx, http.MethodPost, endpoint, create, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// SearchCode searches for code across the repositories of a workspace.
func (c *BitbucketClient) SearchCode(ctx context.Context, workspace, query string) (*domain.Page[domain.CodeSearchResult], error) {
	params := url.Values{}
	params.Set("search_query", query)
	endpoint := fmt.Sprintf("%s/2.0/workspaces/%s/search/code?%s",
		c.baseURL, url.PathEscape(workspace), params.Encode())

	var results domain.Page[domain.CodeSearchResult]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// ListPullRequests retrieves the pull requests of a repository.
// If state is non-empty it filters by state (OPEN, MERGED, DECLINED, SUPERSEDED).
func (c *BitbucketClient) ListPullRequests(ctx context.Context, workspace, repoSlug, state string) (*domain.Page[domain.PullRequest], error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))
	if state != "" {
		params := url.Values{}
		params.Set("state", state)
		endpoint += "?" + params.Encode()
	}

	var prs domain.Page[domain.PullRequest]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &prs); err != nil {
		return nil, err
	}
	return &prs, nil
}

// GetPullRequest retrieves a pull request by its ID.
func (c *BitbucketClient) GetPullRequest(ctx context.Context, workspace, repoSlug string, prID int) (*domain.PullRequest, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)

	var pr domain.PullRequest
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// CreatePullRequest creates a new pull request.
func (c *BitbucketClient) CreatePullRequest(ctx context.Context, workspace, repoSlug string, create *domain.PullRequestCreate) (*domain.PullRequest, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))

	var pr domain.PullRequest
	if err := c.doJSON(ctx, http.MethodPost, endpoint, create, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// UpdatePullRequest updates the title or description of a pull request.
func (c *BitbucketClient) UpdatePullRequest(ctx context.Context, workspace, repoSlug string, prID int, update *domain.PullRequestUpdate) (*domain.PullRequest, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)

	var pr domain.PullRequest
	if err := c.doJSON(ctx, http.MethodPut, endpoint, update, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// MergePullRequest merges a pull request.
func (c *BitbucketClient) MergePullRequest(ctx context.Context, workspace, repoSlug string, prID int, merge *domain.MergeRequest) (*domain.PullRequest, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d/merge",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)

	var pr domain.PullRequest
	if err := c.doJSON(ctx, http.MethodPost, endpoint, merge, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// DeclinePullRequest declines a pull request.
func (c *BitbucketClient) DeclinePullRequest(ctx context.Context, workspace, repoSlug string, prID int) (*domain.PullRequest, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d/decline",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)

	var pr domain.PullRequest
	if err := c.doJSON(ctx, http.MethodPost, endpoint, nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// ApprovePullRequest approves a pull request as the authenticated user.
func (c *BitbucketClient) ApprovePullRequest(ctx context.Context, workspace, repoSlug string, prID int) (*domain.Participant, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d/approve",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)

	var participant domain.Participant
	if err := c.doJSON(ctx, http.MethodPost, endpoint, nil, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

// UnapprovePullRequest removes the authenticated user's approval from a
// pull request. The API responds with 204 No Content on success.
func (c *BitbucketClient) UnapprovePullRequest(ctx context.Context, workspace, repoSlug string, prID int) error {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d/approve",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// ListPRComments retrieves the comments of a pull request.
func (c *BitbucketClient) ListPRComments(ctx context.Context, workspace, repoSlug string, prID int) (*domain.Page[domain.PRComment], error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d/comments",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)

	var comments domain.Page[domain.PRComment]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &comments); err != nil {
		return nil, err
	}
	return &comments, nil
}

// AddPRComment adds a comment to a pull request.
func (c *BitbucketClient) AddPRComment(ctx context.Context, workspace, repoSlug string, prID int, comment *domain.PRCommentCreate) (*domain.PRComment, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/pullrequests/%d/comments",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), prID)

	var created domain.PRComment
	if err := c.doJSON(ctx, http.MethodPost, endpoint, comment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListBranches retrieves the branches of a repository.
func (c *BitbucketClient) ListBranches(ctx context.Context, workspace, repoSlug string) (*domain.Page[domain.Branch], error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/refs/branches",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))

	var branches domain.Page[domain.Branch]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &branches); err != nil {
		return nil, err
	}
	return &branches, nil
}

// GetBranch retrieves a branch by name.
func (c *BitbucketClient) GetBranch(ctx context.Context, workspace, repoSlug, branchName string) (*domain.Branch, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/refs/branches/%s",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), url.PathEscape(branchName))

	var branch domain.Branch
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

// CreateBranch creates a new branch pointing at the given target commit.
func (c *BitbucketClient) CreateBranch(ctx context.Context, workspace, repoSlug string, create *domain.BranchCreate) (*domain.Branch, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/refs/branches",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))

	var branch domain.Branch
	if err := c.doJSON(ctx, http.MethodPost, endpoint, create, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

// DeleteBranch deletes a branch. The API responds with 204 No Content.
func (c *BitbucketClient) DeleteBranch(ctx context.Context, workspace, repoSlug, branchName string) error {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/refs/branches/%s",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), url.PathEscape(branchName))
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// ListCommits retrieves the commits of a repository. If branch is non-empty
// only commits reachable from that branch are returned.
func (c *BitbucketClient) ListCommits(ctx context.Context, workspace, repoSlug, branch string) (*domain.Page[domain.Commit], error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/commits",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))
	if branch != "" {
		endpoint += "/" + url.PathEscape(branch)
	}

	var commits domain.Page[domain.Commit]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &commits); err != nil {
		return nil, err
	}
	return &commits, nil
}

// GetCommit retrieves a commit by its hash.
func (c *BitbucketClient) GetCommit(ctx context.Context, workspace, repoSlug, commitHash string) (*domain.Commit, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/commit/%s",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), url.PathEscape(commitHash))

	var commit domain.Commit
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

// GetCommitDiff retrieves the diff of a commit as raw text.
func (c *BitbucketClient) GetCommitDiff(ctx context.Context, workspace, repoSlug, commitHash string) (string, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/diff/%s",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), url.PathEscape(commitHash))
	return c.doRaw(ctx, endpoint)
}

// ListIssues retrieves the tracker issues of a repository. If state is
// non-empty only issues in that state are returned.
func (c *BitbucketClient) ListIssues(ctx context.Context, workspace, repoSlug, state string) (*domain.Page[domain.BitbucketIssue], error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/issues",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))
	if state != "" {
		endpoint += "?q=" + url.QueryEscape(fmt.Sprintf("state=%q", state))
	}

	var issues domain.Page[domain.BitbucketIssue]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &issues); err != nil {
		return nil, err
	}
	return &issues, nil
}

// GetIssue retrieves a tracker issue by its ID.
func (c *BitbucketClient) GetIssue(ctx context.Context, workspace, repoSlug string, issueID int) (*domain.BitbucketIssue, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/issues/%d",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), issueID)

	var issue domain.BitbucketIssue
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates a new tracker issue.
func (c *BitbucketClient) CreateIssue(ctx context.Context, workspace, repoSlug string, create *domain.BitbucketIssueCreate) (*domain.BitbucketIssue, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/issues",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug))

	var issue domain.BitbucketIssue
	if err := c.doJSON(ctx, http.MethodPost, endpoint, create, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue updates a tracker issue.
func (c *BitbucketClient) UpdateIssue(ctx context.Context, workspace, repoSlug string, issueID int, update *domain.BitbucketIssueUpdate) (*domain.BitbucketIssue, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories/%s/%s/issues/%d",
		c.baseURL, url.PathEscape(workspace), url.PathEscape(repoSlug), issueID)

	var issue domain.BitbucketIssue
	if err := c.doJSON(ctx, http.MethodPut, endpoint, update, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListWorkspaces retrieves the workspaces the authenticated user belongs to.
func (c *BitbucketClient) ListWorkspaces(ctx context.Context) (*domain.Page[domain.Workspace], error) {
	endpoint := fmt.Sprintf("%s/2.0/workspaces", c.baseURL)

	var workspaces domain.Page[domain.Workspace]
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &workspaces); err != nil {
		return nil, err
	}
	return &workspaces, nil
}

// GetWorkspace retrieves a workspace by its slug.
func (c *BitbucketClient) GetWorkspace(ctx context.Context, workspace string) (*domain.Workspace, error) {
	endpoint := fmt.Sprintf("%s/2.0/workspaces/%s", c.baseURL, url.PathEscape(workspace))

	var ws domain.Workspace
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}
