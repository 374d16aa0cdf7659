package application

import (
	"context"
	"fmt"

	"jira-bitbucket-mcp-server/internal/domain"
	"jira-bitbucket-mcp-server/internal/infrastructure"
)

// BitbucketHandler implements ToolHandler for Bitbucket Cloud operations.
// It routes MCP tool calls to the appropriate BitbucketClient methods and
// transforms responses using the ResponseMapper.
type BitbucketHandler struct {
	client *infrastructure.BitbucketClient
	mapper domain.ResponseMapper
}

// NewBitbucketHandler creates a new BitbucketHandler instance.
func NewBitbucketHandler(client *infrastructure.BitbucketClient, mapper domain.ResponseMapper) *BitbucketHandler {
	return &BitbucketHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for Bitbucket operations
const (
	ToolBBGetRepository     = "bitbucket_get_repository"
	ToolBBListRepositories  = "bitbucket_list_repositories"
	ToolBBCreateRepository  = "bitbucket_create_repository"
	ToolBBSearchCode        = "bitbucket_search_code"
	ToolBBListPullRequests  = "bitbucket_list_pull_requests"
	ToolBBGetPullRequest    = "bitbucket_get_pull_request"
	ToolBBCreatePullRequest = "bitbucket_create_pull_request"
	ToolBBUpdatePullRequest = "bitbucket_update_pull_request"
	ToolBBMergePullRequest  = "bitbucket_merge_pull_request"
	ToolBBDeclinePR         = "bitbucket_decline_pull_request"
	ToolBBApprovePR         = "bitbucket_approve_pull_request"
	ToolBBUnapprovePR       = "bitbucket_unapprove_pull_request"
	ToolBBListPRComments    = "bitbucket_list_pr_comments"
	ToolBBAddPRComment      = "bitbucket_add_pr_comment"
	ToolBBListBranches      = "bitbucket_list_branches"
	ToolBBGetBranch         = "bitbucket_get_branch"
	ToolBBCreateBranch      = "bitbucket_create_branch"
	ToolBBDeleteBranch      = "bitbucket_delete_branch"
	ToolBBListCommits       = "bitbucket_list_commits"
	ToolBBGetCommit         = "bitbucket_get_commit"
	ToolBBGetCommitDiff     = "bitbucket_get_commit_diff"
	ToolBBListIssues        = "bitbucket_list_issues"
	ToolBBGetIssue          = "bitbucket_get_issue"
	ToolBBCreateIssue       = "bitbucket_create_issue"
	ToolBBUpdateIssue       = "bitbucket_update_issue"
	ToolBBListWorkspaces    = "bitbucket_list_workspaces"
	ToolBBGetWorkspace      = "bitbucket_get_workspace"
)

// ToolName returns the identifier for this handler.
func (h *BitbucketHandler) ToolName() string {
	return "bitbucket"
}

// repoSchema returns the workspace/repoSlug properties shared by most tools.
func repoSchema() map[string]interface{} {
	return map[string]interface{}{
		"workspace": map[string]interface{}{
			"type":        "string",
			"description": "The workspace slug (e.g., myteam)",
		},
		"repoSlug": map[string]interface{}{
			"type":        "string",
			"description": "The repository slug (e.g., my-repo)",
		},
	}
}

// prSchema returns the workspace/repoSlug/pullRequestId properties shared
// by the pull request tools.
func prSchema() map[string]interface{} {
	schema := repoSchema()
	schema["pullRequestId"] = map[string]interface{}{
		"type":        "integer",
		"description": "The pull request ID",
	}
	return schema
}

// ListTools returns available tools for Bitbucket operations.
func (h *BitbucketHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolBBGetRepository,
			Description: "Retrieve a Bitbucket repository by workspace and slug",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: repoSchema(),
				Required:   []string{"workspace", "repoSlug"},
			},
		},
		{
			Name:        ToolBBListRepositories,
			Description: "List the repositories in a Bitbucket workspace",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"workspace": map[string]interface{}{
						"type":        "string",
						"description": "The workspace slug (e.g., myteam)",
					},
				},
				Required: []string{"workspace"},
			},
		},
		{
			Name:        ToolBBCreateRepository,
			Description: "Create a new Bitbucket repository",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"workspace": map[string]interface{}{
						"type":        "string",
						"description": "The workspace slug (e.g., myteam)",
					},
					"repoSlug": map[string]interface{}{
						"type":        "string",
						"description": "The slug for the new repository",
					},
					"isPrivate": map[string]interface{}{
						"type":        "boolean",
						"description": "Whether the repository is private (default true)",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "The repository description (optional)",
					},
					"projectKey": map[string]interface{}{
						"type":        "string",
						"description": "Key of the project to create the repository in (optional)",
					},
				},
				Required: []string{"workspace", "repoSlug"},
			},
		},
		{
			Name:        ToolBBSearchCode,
			Description: "Search for code across the repositories of a workspace",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"workspace": map[string]interface{}{
						"type":        "string",
						"description": "The workspace slug (e.g., myteam)",
					},
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The code search query",
					},
				},
				Required: []string{"workspace", "query"},
			},
		},
		{
			Name:        ToolBBListPullRequests,
			Description: "List the pull requests of a repository",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["state"] = map[string]interface{}{
						"type":        "string",
						"description": "Filter by state (optional)",
						"enum":        []string{"OPEN", "MERGED", "DECLINED", "SUPERSEDED"},
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug"},
			},
		},
		{
			Name:        ToolBBGetPullRequest,
			Description: "Retrieve a pull request by its ID",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: prSchema(),
				Required:   []string{"workspace", "repoSlug", "pullRequestId"},
			},
		},
		{
			Name:        ToolBBCreatePullRequest,
			Description: "Create a new pull request",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["title"] = map[string]interface{}{
						"type":        "string",
						"description": "The pull request title",
					}
					schema["sourceBranch"] = map[string]interface{}{
						"type":        "string",
						"description": "The source branch name",
					}
					schema["destinationBranch"] = map[string]interface{}{
						"type":        "string",
						"description": "The destination branch name",
					}
					schema["description"] = map[string]interface{}{
						"type":        "string",
						"description": "The pull request description (optional)",
					}
					schema["closeSourceBranch"] = map[string]interface{}{
						"type":        "boolean",
						"description": "Close the source branch after merge (optional)",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "title", "sourceBranch", "destinationBranch"},
			},
		},
		{
			Name:        ToolBBUpdatePullRequest,
			Description: "Update the title or description of a pull request",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := prSchema()
					schema["title"] = map[string]interface{}{
						"type":        "string",
						"description": "The new title (optional)",
					}
					schema["description"] = map[string]interface{}{
						"type":        "string",
						"description": "The new description (optional)",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "pullRequestId"},
			},
		},
		{
			Name:        ToolBBMergePullRequest,
			Description: "Merge a pull request",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := prSchema()
					schema["mergeStrategy"] = map[string]interface{}{
						"type":        "string",
						"description": "The merge strategy (optional, defaults to merge_commit)",
						"enum":        []string{"merge_commit", "squash", "fast_forward"},
					}
					schema["message"] = map[string]interface{}{
						"type":        "string",
						"description": "The merge commit message (optional)",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "pullRequestId"},
			},
		},
		{
			Name:        ToolBBDeclinePR,
			Description: "Decline a pull request",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: prSchema(),
				Required:   []string{"workspace", "repoSlug", "pullRequestId"},
			},
		},
		{
			Name:        ToolBBApprovePR,
			Description: "Approve a pull request as the authenticated user",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: prSchema(),
				Required:   []string{"workspace", "repoSlug", "pullRequestId"},
			},
		},
		{
			Name:        ToolBBUnapprovePR,
			Description: "Remove the authenticated user's approval from a pull request",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: prSchema(),
				Required:   []string{"workspace", "repoSlug", "pullRequestId"},
			},
		},
		{
			Name:        ToolBBListPRComments,
			Description: "List the comments of a pull request",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: prSchema(),
				Required:   []string{"workspace", "repoSlug", "pullRequestId"},
			},
		},
		{
			Name:        ToolBBAddPRComment,
			Description: "Add a comment to a pull request",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := prSchema()
					schema["content"] = map[string]interface{}{
						"type":        "string",
						"description": "The comment text",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "pullRequestId", "content"},
			},
		},
		{
			Name:        ToolBBListBranches,
			Description: "List the branches of a repository",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: repoSchema(),
				Required:   []string{"workspace", "repoSlug"},
			},
		},
		{
			Name:        ToolBBGetBranch,
			Description: "Retrieve a branch by name",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["branchName"] = map[string]interface{}{
						"type":        "string",
						"description": "The branch name",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "branchName"},
			},
		},
		{
			Name:        ToolBBCreateBranch,
			Description: "Create a new branch pointing at a target commit",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["branchName"] = map[string]interface{}{
						"type":        "string",
						"description": "The name of the new branch",
					}
					schema["targetHash"] = map[string]interface{}{
						"type":        "string",
						"description": "The commit hash the branch should point at",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "branchName", "targetHash"},
			},
		},
		{
			Name:        ToolBBDeleteBranch,
			Description: "Delete a branch",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["branchName"] = map[string]interface{}{
						"type":        "string",
						"description": "The branch name",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "branchName"},
			},
		},
		{
			Name:        ToolBBListCommits,
			Description: "List the commits of a repository, optionally scoped to a branch",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["branch"] = map[string]interface{}{
						"type":        "string",
						"description": "Only list commits reachable from this branch (optional)",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug"},
			},
		},
		{
			Name:        ToolBBGetCommit,
			Description: "Retrieve a commit by its hash",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["commitHash"] = map[string]interface{}{
						"type":        "string",
						"description": "The commit hash",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "commitHash"},
			},
		},
		{
			Name:        ToolBBGetCommitDiff,
			Description: "Retrieve the diff of a commit as raw text",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["commitHash"] = map[string]interface{}{
						"type":        "string",
						"description": "The commit hash",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "commitHash"},
			},
		},
		{
			Name:        ToolBBListIssues,
			Description: "List the tracker issues of a repository",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					props := repoSchema()
					props["state"] = map[string]interface{}{
						"type":        "string",
						"description": "Filter by issue state (e.g., new, open, resolved, closed)",
					}
					return props
				}(),
				Required: []string{"workspace", "repoSlug"},
			},
		},
		{
			Name:        ToolBBGetIssue,
			Description: "Retrieve a tracker issue by its ID",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["issueId"] = map[string]interface{}{
						"type":        "integer",
						"description": "The issue ID",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "issueId"},
			},
		},
		{
			Name:        ToolBBCreateIssue,
			Description: "Create a new tracker issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["title"] = map[string]interface{}{
						"type":        "string",
						"description": "The issue title",
					}
					schema["kind"] = map[string]interface{}{
						"type":        "string",
						"description": "The issue kind (optional, defaults to bug)",
						"enum":        []string{"bug", "enhancement", "proposal", "task"},
					}
					schema["priority"] = map[string]interface{}{
						"type":        "string",
						"description": "The issue priority (optional, defaults to major)",
						"enum":        []string{"trivial", "minor", "major", "critical", "blocker"},
					}
					schema["content"] = map[string]interface{}{
						"type":        "string",
						"description": "The issue body (optional)",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "title"},
			},
		},
		{
			Name:        ToolBBUpdateIssue,
			Description: "Update a tracker issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: func() map[string]interface{} {
					schema := repoSchema()
					schema["issueId"] = map[string]interface{}{
						"type":        "integer",
						"description": "The issue ID",
					}
					schema["title"] = map[string]interface{}{
						"type":        "string",
						"description": "The new title (optional)",
					}
					schema["state"] = map[string]interface{}{
						"type":        "string",
						"description": "The new state (optional)",
						"enum":        []string{"new", "open", "resolved", "on hold", "invalid", "duplicate", "wontfix", "closed"},
					}
					schema["kind"] = map[string]interface{}{
						"type":        "string",
						"description": "The new kind (optional)",
						"enum":        []string{"bug", "enhancement", "proposal", "task"},
					}
					schema["priority"] = map[string]interface{}{
						"type":        "string",
						"description": "The new priority (optional)",
						"enum":        []string{"trivial", "minor", "major", "critical", "blocker"},
					}
					schema["content"] = map[string]interface{}{
						"type":        "string",
						"description": "The new body (optional)",
					}
					return schema
				}(),
				Required: []string{"workspace", "repoSlug", "issueId"},
			},
		},
		{
			Name:        ToolBBListWorkspaces,
			Description: "List the workspaces the authenticated user belongs to",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
		{
			Name:        ToolBBGetWorkspace,
			Description: "Retrieve a workspace by its slug",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"workspace": map[string]interface{}{
						"type":        "string",
						"description": "The workspace slug (e.g., myteam)",
					},
				},
				Required: []string{"workspace"},
			},
		},
	}
}

// Handle processes an MCP tool call request for Bitbucket operations.
func (h *BitbucketHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolBBGetRepository:
		return h.handleGetRepository(ctx, req.Arguments)
	case ToolBBListRepositories:
		return h.handleListRepositories(ctx, req.Arguments)
	case ToolBBCreateRepository:
		return h.handleCreateRepository(ctx, req.Arguments)
	case ToolBBSearchCode:
		return h.handleSearchCode(ctx, req.Arguments)
	case ToolBBListPullRequests:
		return h.handleListPullRequests(ctx, req.Arguments)
	case ToolBBGetPullRequest:
		return h.handleGetPullRequest(ctx, req.Arguments)
	case ToolBBCreatePullRequest:
		return h.handleCreatePullRequest(ctx, req.Arguments)
	case ToolBBUpdatePullRequest:
		return h.handleUpdatePullRequest(ctx, req.Arguments)
	case ToolBBMergePullRequest:
		return h.handleMergePullRequest(ctx, req.Arguments)
	case ToolBBDeclinePR:
		return h.handleDeclinePullRequest(ctx, req.Arguments)
	case ToolBBApprovePR:
		return h.handleApprovePullRequest(ctx, req.Arguments)
	case ToolBBUnapprovePR:
		return h.handleUnapprovePullRequest(ctx, req.Arguments)
	case ToolBBListPRComments:
		return h.handleListPRComments(ctx, req.Arguments)
	case ToolBBAddPRComment:
		return h.handleAddPRComment(ctx, req.Arguments)
	case ToolBBListBranches:
		return h.handleListBranches(ctx, req.Arguments)
	case ToolBBGetBranch:
		return h.handleGetBranch(ctx, req.Arguments)
	case ToolBBCreateBranch:
		return h.handleCreateBranch(ctx, req.Arguments)
	case ToolBBDeleteBranch:
		return h.handleDeleteBranch(ctx, req.Arguments)
	case ToolBBListCommits:
		return h.handleListCommits(ctx, req.Arguments)
	case ToolBBGetCommit:
		return h.handleGetCommit(ctx, req.Arguments)
	case ToolBBGetCommitDiff:
		return h.handleGetCommitDiff(ctx, req.Arguments)
	case ToolBBListIssues:
		return h.handleListIssues(ctx, req.Arguments)
	case ToolBBGetIssue:
		return h.handleGetIssue(ctx, req.Arguments)
	case ToolBBCreateIssue:
		return h.handleCreateIssue(ctx, req.Arguments)
	case ToolBBUpdateIssue:
		return h.handleUpdateIssue(ctx, req.Arguments)
	case ToolBBListWorkspaces:
		return h.handleListWorkspaces(ctx, req.Arguments)
	case ToolBBGetWorkspace:
		return h.handleGetWorkspace(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown Bitbucket tool: %s", req.Name),
		}
	}
}

// getRepoParams extracts the workspace and repoSlug parameters shared by
// most Bitbucket tools.
func getRepoParams(args map[string]interface{}) (string, string, error) {
	workspace, err := getStringParam(args, "workspace", true)
	if err != nil {
		return "", "", err
	}
	repoSlug, err := getStringParam(args, "repoSlug", true)
	if err != nil {
		return "", "", err
	}
	return workspace, repoSlug, nil
}

// getPRParams extracts workspace, repoSlug and pullRequestId.
func getPRParams(args map[string]interface{}) (string, string, int, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return "", "", 0, err
	}
	prID, err := getIntParam(args, "pullRequestId", true)
	if err != nil {
		return "", "", 0, err
	}
	return workspace, repoSlug, prID, nil
}

// handleGetRepository handles the bitbucket_get_repository tool call.
func (h *BitbucketHandler) handleGetRepository(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}

	repo, err := h.client.GetRepository(ctx, workspace, repoSlug)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(repo)
}

// handleListRepositories handles the bitbucket_list_repositories tool call.
func (h *BitbucketHandler) handleListRepositories(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, err := getStringParam(args, "workspace", true)
	if err != nil {
		return nil, err
	}

	repos, err := h.client.ListRepositories(ctx, workspace)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(repos)
}

// handleCreateRepository handles the bitbucket_create_repository tool call.
func (h *BitbucketHandler) handleCreateRepository(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}

	description, _ := getStringParam(args, "description", false)
	projectKey, _ := getStringParam(args, "projectKey", false)

	// Repositories default to private so a missing flag never exposes code.
	isPrivate := true
	if _, exists := args["isPrivate"]; exists {
		isPrivate, err = getBoolParam(args, "isPrivate", false)
		if err != nil {
			return nil, err
		}
	}

	createReq := &domain.RepositoryCreate{
		SCM:         "git",
		IsPrivate:   isPrivate,
		Description: description,
	}
	if projectKey != "" {
		createReq.Project = &domain.BBProjectRef{Key: projectKey}
	}

	repo, err := h.client.CreateRepository(ctx, workspace, repoSlug, createReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(repo)
}

// handleSearchCode handles the bitbucket_search_code tool call.
func (h *BitbucketHandler) handleSearchCode(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, err := getStringParam(args, "workspace", true)
	if err != nil {
		return nil, err
	}
	query, err := getStringParam(args, "query", true)
	if err != nil {
		return nil, err
	}

	results, err := h.client.SearchCode(ctx, workspace, query)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(results)
}

// handleListPullRequests handles the bitbucket_list_pull_requests tool call.
func (h *BitbucketHandler) handleListPullRequests(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	state, err := getStringParam(args, "state", false)
	if err != nil {
		return nil, err
	}

	prs, err := h.client.ListPullRequests(ctx, workspace, repoSlug, state)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(prs)
}

// handleGetPullRequest handles the bitbucket_get_pull_request tool call.
func (h *BitbucketHandler) handleGetPullRequest(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}

	pr, err := h.client.GetPullRequest(ctx, workspace, repoSlug, prID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(pr)
}

// handleCreatePullRequest handles the bitbucket_create_pull_request tool call.
func (h *BitbucketHandler) handleCreatePullRequest(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return nil, err
	}
	sourceBranch, err := getStringParam(args, "sourceBranch", true)
	if err != nil {
		return nil, err
	}
	destinationBranch, err := getStringParam(args, "destinationBranch", true)
	if err != nil {
		return nil, err
	}

	description, _ := getStringParam(args, "description", false)
	closeSourceBranch, err := getBoolParam(args, "closeSourceBranch", false)
	if err != nil {
		return nil, err
	}

	createReq := &domain.PullRequestCreate{
		Title:       title,
		Description: description,
		Source: domain.PREndpoint{
			Branch: domain.BranchNameRef{Name: sourceBranch},
		},
		Destination: domain.PREndpoint{
			Branch: domain.BranchNameRef{Name: destinationBranch},
		},
		CloseSourceBranch: closeSourceBranch,
	}

	pr, err := h.client.CreatePullRequest(ctx, workspace, repoSlug, createReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(pr)
}

// handleUpdatePullRequest handles the bitbucket_update_pull_request tool call.
func (h *BitbucketHandler) handleUpdatePullRequest(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}

	title, err := getStringParam(args, "title", false)
	if err != nil {
		return nil, err
	}
	description, err := getStringParam(args, "description", false)
	if err != nil {
		return nil, err
	}

	if title == "" && description == "" {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "at least one of title or description must be provided",
		}
	}

	pr, err := h.client.UpdatePullRequest(ctx, workspace, repoSlug, prID, &domain.PullRequestUpdate{
		Title:       title,
		Description: description,
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(pr)
}

// handleMergePullRequest handles the bitbucket_merge_pull_request tool call.
func (h *BitbucketHandler) handleMergePullRequest(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}

	mergeStrategy, err := getStringParam(args, "mergeStrategy", false)
	if err != nil {
		return nil, err
	}
	if mergeStrategy == "" {
		mergeStrategy = "merge_commit"
	}
	message, err := getStringParam(args, "message", false)
	if err != nil {
		return nil, err
	}

	pr, err := h.client.MergePullRequest(ctx, workspace, repoSlug, prID, &domain.MergeRequest{
		Type:    mergeStrategy,
		Message: message,
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(pr)
}

// handleDeclinePullRequest handles the bitbucket_decline_pull_request tool call.
func (h *BitbucketHandler) handleDeclinePullRequest(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}

	pr, err := h.client.DeclinePullRequest(ctx, workspace, repoSlug, prID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(pr)
}

// handleApprovePullRequest handles the bitbucket_approve_pull_request tool call.
func (h *BitbucketHandler) handleApprovePullRequest(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}

	participant, err := h.client.ApprovePullRequest(ctx, workspace, repoSlug, prID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(participant)
}

// handleUnapprovePullRequest handles the bitbucket_unapprove_pull_request tool call.
func (h *BitbucketHandler) handleUnapprovePullRequest(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}

	if err := h.client.UnapprovePullRequest(ctx, workspace, repoSlug, prID); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Approval removed from pull request %d", prID),
	})
}

// handleListPRComments handles the bitbucket_list_pr_comments tool call.
func (h *BitbucketHandler) handleListPRComments(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}

	comments, err := h.client.ListPRComments(ctx, workspace, repoSlug, prID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(comments)
}

// handleAddPRComment handles the bitbucket_add_pr_comment tool call.
func (h *BitbucketHandler) handleAddPRComment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, prID, err := getPRParams(args)
	if err != nil {
		return nil, err
	}
	content, err := getStringParam(args, "content", true)
	if err != nil {
		return nil, err
	}

	comment, err := h.client.AddPRComment(ctx, workspace, repoSlug, prID, &domain.PRCommentCreate{
		Content: domain.Rendered{Raw: content},
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(comment)
}

// handleListBranches handles the bitbucket_list_branches tool call.
func (h *BitbucketHandler) handleListBranches(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}

	branches, err := h.client.ListBranches(ctx, workspace, repoSlug)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(branches)
}

// handleGetBranch handles the bitbucket_get_branch tool call.
func (h *BitbucketHandler) handleGetBranch(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	branchName, err := getStringParam(args, "branchName", true)
	if err != nil {
		return nil, err
	}

	branch, err := h.client.GetBranch(ctx, workspace, repoSlug, branchName)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(branch)
}

// handleCreateBranch handles the bitbucket_create_branch tool call.
func (h *BitbucketHandler) handleCreateBranch(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	branchName, err := getStringParam(args, "branchName", true)
	if err != nil {
		return nil, err
	}
	targetHash, err := getStringParam(args, "targetHash", true)
	if err != nil {
		return nil, err
	}

	branch, err := h.client.CreateBranch(ctx, workspace, repoSlug, &domain.BranchCreate{
		Name:   branchName,
		Target: domain.CommitRef{Hash: targetHash},
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(branch)
}

// handleDeleteBranch handles the bitbucket_delete_branch tool call.
func (h *BitbucketHandler) handleDeleteBranch(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	branchName, err := getStringParam(args, "branchName", true)
	if err != nil {
		return nil, err
	}

	if err := h.client.DeleteBranch(ctx, workspace, repoSlug, branchName); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Branch %s deleted successfully", branchName),
	})
}

// handleListCommits handles the bitbucket_list_commits tool call.
func (h *BitbucketHandler) handleListCommits(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	branch, err := getStringParam(args, "branch", false)
	if err != nil {
		return nil, err
	}

	commits, err := h.client.ListCommits(ctx, workspace, repoSlug, branch)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(commits)
}

// handleGetCommit handles the bitbucket_get_commit tool call.
func (h *BitbucketHandler) handleGetCommit(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	commitHash, err := getStringParam(args, "commitHash", true)
	if err != nil {
		return nil, err
	}

	commit, err := h.client.GetCommit(ctx, workspace, repoSlug, commitHash)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(commit)
}

// handleGetCommitDiff handles the bitbucket_get_commit_diff tool call.
// The diff comes back as raw text, not JSON, so it is returned verbatim
// as the tool response content.
func (h *BitbucketHandler) handleGetCommitDiff(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	commitHash, err := getStringParam(args, "commitHash", true)
	if err != nil {
		return nil, err
	}

	diff, err := h.client.GetCommitDiff(ctx, workspace, repoSlug, commitHash)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return &domain.ToolResponse{
		Content: []domain.ContentBlock{
			{
				Type: "text",
				Text: diff,
			},
		},
	}, nil
}

// handleListIssues handles the bitbucket_list_issues tool call.
func (h *BitbucketHandler) handleListIssues(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	state, err := getStringParam(args, "state", false)
	if err != nil {
		return nil, err
	}

	issues, err := h.client.ListIssues(ctx, workspace, repoSlug, state)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(issues)
}

// handleGetIssue handles the bitbucket_get_issue tool call.
func (h *BitbucketHandler) handleGetIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	issueID, err := getIntParam(args, "issueId", true)
	if err != nil {
		return nil, err
	}

	issue, err := h.client.GetIssue(ctx, workspace, repoSlug, issueID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(issue)
}

// handleCreateIssue handles the bitbucket_create_issue tool call.
func (h *BitbucketHandler) handleCreateIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return nil, err
	}

	kind, _ := getStringParam(args, "kind", false)
	if kind == "" {
		kind = "bug"
	}
	priority, _ := getStringParam(args, "priority", false)
	if priority == "" {
		priority = "major"
	}
	content, _ := getStringParam(args, "content", false)

	createReq := &domain.BitbucketIssueCreate{
		Title:    title,
		Kind:     kind,
		Priority: priority,
	}
	if content != "" {
		createReq.Content = &domain.Rendered{Raw: content}
	}

	issue, err := h.client.CreateIssue(ctx, workspace, repoSlug, createReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(issue)
}

// handleUpdateIssue handles the bitbucket_update_issue tool call.
func (h *BitbucketHandler) handleUpdateIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, repoSlug, err := getRepoParams(args)
	if err != nil {
		return nil, err
	}
	issueID, err := getIntParam(args, "issueId", true)
	if err != nil {
		return nil, err
	}

	title, _ := getStringParam(args, "title", false)
	state, _ := getStringParam(args, "state", false)
	kind, _ := getStringParam(args, "kind", false)
	priority, _ := getStringParam(args, "priority", false)
	content, _ := getStringParam(args, "content", false)

	if title == "" && state == "" && kind == "" && priority == "" && content == "" {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "at least one field to update must be provided",
		}
	}

	updateReq := &domain.BitbucketIssueUpdate{
		Title:    title,
		State:    state,
		Kind:     kind,
		Priority: priority,
	}
	if content != "" {
		updateReq.Content = &domain.Rendered{Raw: content}
	}

	issue, err := h.client.UpdateIssue(ctx, workspace, repoSlug, issueID, updateReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(issue)
}

// handleListWorkspaces handles the bitbucket_list_workspaces tool call.
func (h *BitbucketHandler) handleListWorkspaces(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspaces, err := h.client.ListWorkspaces(ctx)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(workspaces)
}

// handleGetWorkspace handles the bitbucket_get_workspace tool call.
func (h *BitbucketHandler) handleGetWorkspace(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspace, err := getStringParam(args, "workspace", true)
	if err != nil {
		return nil, err
	}

	ws, err := h.client.GetWorkspace(ctx, workspace)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(ws)
}
