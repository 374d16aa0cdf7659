package application

import (
	"context"
	"fmt"

	"jira-bitbucket-mcp-server/internal/domain"
	"jira-bitbucket-mcp-server/internal/infrastructure"
)

// JiraHandler implements ToolHandler for JIRA operations.
// It routes MCP tool calls to the appropriate JiraClient methods and
// transforms responses using the ResponseMapper.
type JiraHandler struct {
	client *infrastructure.JiraClient
	mapper domain.ResponseMapper
}

// NewJiraHandler creates a new JiraHandler instance.
func NewJiraHandler(client *infrastructure.JiraClient, mapper domain.ResponseMapper) *JiraHandler {
	return &JiraHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for JIRA operations
const (
	ToolJiraListProjects     = "jira_list_projects"
	ToolJiraGetProject       = "jira_get_project"
	ToolJiraCreateProject    = "jira_create_project"
	ToolJiraSearchIssues     = "jira_search_issues"
	ToolJiraGetIssue         = "jira_get_issue"
	ToolJiraCreateIssue      = "jira_create_issue"
	ToolJiraUpdateIssue      = "jira_update_issue"
	ToolJiraDeleteIssue      = "jira_delete_issue"
	ToolJiraAssignIssue      = "jira_assign_issue"
	ToolJiraTransitionIssue  = "jira_transition_issue"
	ToolJiraAddComment       = "jira_add_comment"
	ToolJiraDeleteComment    = "jira_delete_comment"
	ToolJiraListSprints      = "jira_list_sprints"
	ToolJiraGetSprint        = "jira_get_sprint"
	ToolJiraCreateSprint     = "jira_create_sprint"
	ToolJiraMoveIssuesSprint = "jira_move_issues_to_sprint"
	ToolJiraListBoards       = "jira_list_boards"
	ToolJiraGetBoard         = "jira_get_board"
	ToolJiraSearchUsers      = "jira_search_users"
	ToolJiraGetCurrentUser   = "jira_get_current_user"
	ToolJiraGetCustomFields  = "jira_get_custom_fields"
)

// ToolName returns the identifier for this handler.
func (h *JiraHandler) ToolName() string {
	return "jira"
}

// ListTools returns available tools for JIRA operations.
func (h *JiraHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolJiraListProjects,
			Description: "List all JIRA projects accessible to the authenticated user",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
		{
			Name:        ToolJiraGetProject,
			Description: "Retrieve a JIRA project by its key (e.g., PROJ)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"projectKey": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., PROJ)",
					},
				},
				Required: []string{"projectKey"},
			},
		},
		{
			Name:        ToolJiraCreateProject,
			Description: "Create a new JIRA project",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., PROJ)",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "The project name",
					},
					"projectTypeKey": map[string]interface{}{
						"type":        "string",
						"description": "The project type (e.g., software, business)",
					},
					"leadAccountId": map[string]interface{}{
						"type":        "string",
						"description": "Account ID of the project lead (optional)",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "The project description (optional)",
					},
				},
				Required: []string{"key", "name", "projectTypeKey"},
			},
		},
		{
			Name:        ToolJiraSearchIssues,
			Description: "Search for JIRA issues using JQL (JIRA Query Language)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"jql": map[string]interface{}{
						"type":        "string",
						"description": "The JQL query string",
					},
					"maxResults": map[string]interface{}{
						"type":        "integer",
						"description": "The maximum number of issues to return (optional)",
					},
					"nextPageToken": map[string]interface{}{
						"type":        "string",
						"description": "Cursor token from a previous page of results (optional)",
					},
					"fields": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Fields to include in the results (optional)",
					},
				},
				Required: []string{"jql"},
			},
		},
		{
			Name:        ToolJiraGetIssue,
			Description: "Retrieve a JIRA issue by its key (e.g., PROJ-123)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., PROJ-123)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolJiraCreateIssue,
			Description: "Create a new JIRA issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"projectKey": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., PROJ)",
					},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "The issue summary/title",
					},
					"issueType": map[string]interface{}{
						"type":        "string",
						"description": "The issue type name (e.g., Bug, Story, Task)",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "The issue description as plain text (optional)",
					},
					"priority": map[string]interface{}{
						"type":        "string",
						"description": "The priority name (e.g., High, Medium, Low) (optional)",
					},
					"assigneeAccountId": map[string]interface{}{
						"type":        "string",
						"description": "Account ID of the assignee (optional)",
					},
					"labels": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Labels to apply to the issue (optional)",
					},
				},
				Required: []string{"projectKey", "summary", "issueType"},
			},
		},
		{
			Name:        ToolJiraUpdateIssue,
			Description: "Update an existing JIRA issue, including agile custom fields",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., PROJ-123)",
					},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "The new summary/title (optional)",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "The new description as plain text (optional)",
					},
					"priority": map[string]interface{}{
						"type":        "string",
						"description": "The new priority name (optional)",
					},
					"labels": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Replacement labels (optional)",
					},
					"acceptanceCriteria": map[string]interface{}{
						"type":        "string",
						"description": "Acceptance criteria custom field (optional)",
					},
					"technicalRequirements": map[string]interface{}{
						"type":        "string",
						"description": "Technical requirements custom field (optional)",
					},
					"storyPoints": map[string]interface{}{
						"type":        "number",
						"description": "Story points estimate custom field (optional)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolJiraDeleteIssue,
			Description: "Delete a JIRA issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., PROJ-123)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolJiraAssignIssue,
			Description: "Assign a JIRA issue to a user by account ID",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., PROJ-123)",
					},
					"accountId": map[string]interface{}{
						"type":        "string",
						"description": "Account ID of the assignee",
					},
				},
				Required: []string{"issueKey", "accountId"},
			},
		},
		{
			Name:        ToolJiraTransitionIssue,
			Description: "Transition a JIRA issue to a new status",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., PROJ-123)",
					},
					"transitionId": map[string]interface{}{
						"type":        "string",
						"description": "The transition ID (optional if transitionName is provided)",
					},
					"transitionName": map[string]interface{}{
						"type":        "string",
						"description": "The transition name (optional if transitionId is provided)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolJiraAddComment,
			Description: "Add a comment to a JIRA issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., PROJ-123)",
					},
					"body": map[string]interface{}{
						"type":        "string",
						"description": "The comment text",
					},
				},
				Required: []string{"issueKey", "body"},
			},
		},
		{
			Name:        ToolJiraDeleteComment,
			Description: "Delete a comment from a JIRA issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., PROJ-123)",
					},
					"commentId": map[string]interface{}{
						"type":        "string",
						"description": "The comment ID",
					},
				},
				Required: []string{"issueKey", "commentId"},
			},
		},
		{
			Name:        ToolJiraListSprints,
			Description: "List the sprints of a JIRA board",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"boardId": map[string]interface{}{
						"type":        "integer",
						"description": "The board ID",
					},
				},
				Required: []string{"boardId"},
			},
		},
		{
			Name:        ToolJiraGetSprint,
			Description: "Retrieve a JIRA sprint by its ID",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"sprintId": map[string]interface{}{
						"type":        "integer",
						"description": "The sprint ID",
					},
				},
				Required: []string{"sprintId"},
			},
		},
		{
			Name:        ToolJiraCreateSprint,
			Description: "Create a new sprint on a JIRA board",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"boardId": map[string]interface{}{
						"type":        "integer",
						"description": "The board the sprint belongs to",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "The sprint name",
					},
					"startDate": map[string]interface{}{
						"type":        "string",
						"description": "The sprint start date in ISO 8601 format (optional)",
					},
					"endDate": map[string]interface{}{
						"type":        "string",
						"description": "The sprint end date in ISO 8601 format (optional)",
					},
					"goal": map[string]interface{}{
						"type":        "string",
						"description": "The sprint goal (optional)",
					},
				},
				Required: []string{"boardId", "name"},
			},
		},
		{
			Name:        ToolJiraMoveIssuesSprint,
			Description: "Move issues into a JIRA sprint",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"sprintId": map[string]interface{}{
						"type":        "integer",
						"description": "The target sprint ID",
					},
					"issueKeys": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "The issue keys to move (e.g., [\"PROJ-1\", \"PROJ-2\"])",
					},
				},
				Required: []string{"sprintId", "issueKeys"},
			},
		},
		{
			Name:        ToolJiraListBoards,
			Description: "List all JIRA boards visible to the authenticated user",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
		{
			Name:        ToolJiraGetBoard,
			Description: "Retrieve a JIRA board by its ID",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"boardId": map[string]interface{}{
						"type":        "integer",
						"description": "The board ID",
					},
				},
				Required: []string{"boardId"},
			},
		},
		{
			Name:        ToolJiraSearchUsers,
			Description: "Search for JIRA users by display name or email",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search query",
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolJiraGetCurrentUser,
			Description: "Retrieve the authenticated JIRA user",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
		{
			Name:        ToolJiraGetCustomFields,
			Description: "List all JIRA fields with a summary of custom fields",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
	}
}

// Handle processes an MCP tool call request for JIRA operations.
func (h *JiraHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolJiraListProjects:
		return h.handleListProjects(ctx, req.Arguments)
	case ToolJiraGetProject:
		return h.handleGetProject(ctx, req.Arguments)
	case ToolJiraCreateProject:
		return h.handleCreateProject(ctx, req.Arguments)
	case ToolJiraSearchIssues:
		return h.handleSearchIssues(ctx, req.Arguments)
	case ToolJiraGetIssue:
		return h.handleGetIssue(ctx, req.Arguments)
	case ToolJiraCreateIssue:
		return h.handleCreateIssue(ctx, req.Arguments)
	case ToolJiraUpdateIssue:
		return h.handleUpdateIssue(ctx, req.Arguments)
	case ToolJiraDeleteIssue:
		return h.handleDeleteIssue(ctx, req.Arguments)
	case ToolJiraAssignIssue:
		return h.handleAssignIssue(ctx, req.Arguments)
	case ToolJiraTransitionIssue:
		return h.handleTransitionIssue(ctx, req.Arguments)
	case ToolJiraAddComment:
		return h.handleAddComment(ctx, req.Arguments)
	case ToolJiraDeleteComment:
		return h.handleDeleteComment(ctx, req.Arguments)
	case ToolJiraListSprints:
		return h.handleListSprints(ctx, req.Arguments)
	case ToolJiraGetSprint:
		return h.handleGetSprint(ctx, req.Arguments)
	case ToolJiraCreateSprint:
		return h.handleCreateSprint(ctx, req.Arguments)
	case ToolJiraMoveIssuesSprint:
		return h.handleMoveIssuesToSprint(ctx, req.Arguments)
	case ToolJiraListBoards:
		return h.handleListBoards(ctx, req.Arguments)
	case ToolJiraGetBoard:
		return h.handleGetBoard(ctx, req.Arguments)
	case ToolJiraSearchUsers:
		return h.handleSearchUsers(ctx, req.Arguments)
	case ToolJiraGetCurrentUser:
		return h.handleGetCurrentUser(ctx, req.Arguments)
	case ToolJiraGetCustomFields:
		return h.handleGetCustomFields(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown JIRA tool: %s", req.Name),
		}
	}
}

// handleListProjects handles the jira_list_projects tool call.
func (h *JiraHandler) handleListProjects(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projects, err := h.client.ListProjects(ctx)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(projects)
}

// handleGetProject handles the jira_get_project tool call.
func (h *JiraHandler) handleGetProject(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "projectKey", true)
	if err != nil {
		return nil, err
	}

	project, err := h.client.GetProject(ctx, projectKey)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(project)
}

// handleCreateProject handles the jira_create_project tool call.
func (h *JiraHandler) handleCreateProject(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	key, err := getStringParam(args, "key", true)
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(args, "name", true)
	if err != nil {
		return nil, err
	}
	projectTypeKey, err := getStringParam(args, "projectTypeKey", true)
	if err != nil {
		return nil, err
	}

	leadAccountID, _ := getStringParam(args, "leadAccountId", false)
	description, _ := getStringParam(args, "description", false)

	createReq := &domain.ProjectCreate{
		Key:            key,
		Name:           name,
		ProjectTypeKey: projectTypeKey,
		LeadAccountID:  leadAccountID,
		Description:    description,
	}

	project, err := h.client.CreateProject(ctx, createReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(project)
}

// handleSearchIssues handles the jira_search_issues tool call.
func (h *JiraHandler) handleSearchIssues(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	jql, err := getStringParam(args, "jql", true)
	if err != nil {
		return nil, err
	}

	maxResults, err := getIntParam(args, "maxResults", false)
	if err != nil {
		return nil, err
	}
	nextPageToken, err := getStringParam(args, "nextPageToken", false)
	if err != nil {
		return nil, err
	}
	fields, err := getStringSliceParam(args, "fields", false)
	if err != nil {
		return nil, err
	}

	searchReq := &domain.SearchRequest{
		JQL:           jql,
		MaxResults:    maxResults,
		NextPageToken: nextPageToken,
		Fields:        fields,
	}

	results, err := h.client.SearchIssues(ctx, searchReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(results)
}

// handleGetIssue handles the jira_get_issue tool call.
// The issue's ADF description is flattened into description_text so hosts
// get readable text without walking the document tree.
func (h *JiraHandler) handleGetIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	issue, err := h.client.GetIssue(ctx, issueKey)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	if issue.Fields.Description != nil {
		issue.Fields.DescriptionText = issue.Fields.Description.PlainText()
	}

	return h.mapper.MapToToolResponse(issue)
}

// handleCreateIssue handles the jira_create_issue tool call.
func (h *JiraHandler) handleCreateIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "projectKey", true)
	if err != nil {
		return nil, err
	}
	summary, err := getStringParam(args, "summary", true)
	if err != nil {
		return nil, err
	}
	issueType, err := getStringParam(args, "issueType", true)
	if err != nil {
		return nil, err
	}

	description, _ := getStringParam(args, "description", false)
	priority, _ := getStringParam(args, "priority", false)
	assigneeAccountID, _ := getStringParam(args, "assigneeAccountId", false)
	labels, err := getStringSliceParam(args, "labels", false)
	if err != nil {
		return nil, err
	}

	createReq := &domain.JiraIssueCreate{
		Fields: domain.JiraFieldsCreate{
			Summary: summary,
			IssueType: domain.IssueTypeRef{
				Name: issueType,
			},
			Project: domain.ProjectRef{
				Key: projectKey,
			},
			Labels: labels,
		},
	}

	if description != "" {
		createReq.Fields.Description = domain.NewADFDocument(description)
	}
	if priority != "" {
		createReq.Fields.Priority = &domain.PriorityRef{Name: priority}
	}
	if assigneeAccountID != "" {
		createReq.Fields.Assignee = &domain.UserRef{ID: assigneeAccountID}
	}

	issue, err := h.client.CreateIssue(ctx, createReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(issue)
}

// handleUpdateIssue handles the jira_update_issue tool call.
// Only the fields present in the arguments are sent upstream.
func (h *JiraHandler) handleUpdateIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if summary, err := getStringParam(args, "summary", false); err != nil {
		return nil, err
	} else if summary != "" {
		fields["summary"] = summary
	}

	if description, err := getStringParam(args, "description", false); err != nil {
		return nil, err
	} else if description != "" {
		fields["description"] = domain.NewADFDocument(description)
	}

	if priority, err := getStringParam(args, "priority", false); err != nil {
		return nil, err
	} else if priority != "" {
		fields["priority"] = domain.PriorityRef{Name: priority}
	}

	if labels, err := getStringSliceParam(args, "labels", false); err != nil {
		return nil, err
	} else if labels != nil {
		fields["labels"] = labels
	}

	if criteria, err := getStringParam(args, "acceptanceCriteria", false); err != nil {
		return nil, err
	} else if criteria != "" {
		fields[domain.CustomFieldAcceptanceCriteria] = criteria
	}

	if requirements, err := getStringParam(args, "technicalRequirements", false); err != nil {
		return nil, err
	} else if requirements != "" {
		fields[domain.CustomFieldTechnicalRequirements] = requirements
	}

	if _, exists := args["storyPoints"]; exists {
		points, err := getFloatParam(args, "storyPoints", false)
		if err != nil {
			return nil, err
		}
		fields[domain.CustomFieldStoryPoints] = points
	}

	if len(fields) == 0 {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "at least one field to update must be provided",
		}
	}

	if err := h.client.UpdateIssue(ctx, issueKey, &domain.JiraIssueUpdate{Fields: fields}); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s updated successfully", issueKey),
	})
}

// handleDeleteIssue handles the jira_delete_issue tool call.
func (h *JiraHandler) handleDeleteIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	if err := h.client.DeleteIssue(ctx, issueKey); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s deleted successfully", issueKey),
	})
}

// handleAssignIssue handles the jira_assign_issue tool call.
func (h *JiraHandler) handleAssignIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}
	accountID, err := getStringParam(args, "accountId", true)
	if err != nil {
		return nil, err
	}

	if err := h.client.AssignIssue(ctx, issueKey, accountID); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s assigned successfully", issueKey),
	})
}

// handleTransitionIssue handles the jira_transition_issue tool call.
// A transition may be named by ID or by its display name; names are
// resolved against the issue's available transitions.
func (h *JiraHandler) handleTransitionIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	transitionID, err := getStringParam(args, "transitionId", false)
	if err != nil {
		return nil, err
	}
	transitionName, err := getStringParam(args, "transitionName", false)
	if err != nil {
		return nil, err
	}

	if transitionID == "" && transitionName == "" {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "either transitionId or transitionName must be provided",
		}
	}

	if transitionID == "" {
		transitions, err := h.client.GetTransitions(ctx, issueKey)
		if err != nil {
			return nil, h.mapper.MapError(err)
		}

		for _, t := range transitions.Transitions {
			if t.Name == transitionName {
				transitionID = t.ID
				break
			}
		}

		if transitionID == "" {
			return nil, &domain.Error{
				Code:    domain.InvalidParams,
				Message: fmt.Sprintf("no transition named %q available for issue %s", transitionName, issueKey),
			}
		}
	}

	transitionReq := &domain.IssueTransition{
		Transition: domain.TransitionRef{ID: transitionID},
	}

	if err := h.client.TransitionIssue(ctx, issueKey, transitionReq); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s transitioned successfully", issueKey),
	})
}

// handleAddComment handles the jira_add_comment tool call.
func (h *JiraHandler) handleAddComment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}
	body, err := getStringParam(args, "body", true)
	if err != nil {
		return nil, err
	}

	comment, err := h.client.AddComment(ctx, issueKey, &domain.CommentCreate{
		Body: domain.NewADFDocument(body),
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(comment)
}

// handleDeleteComment handles the jira_delete_comment tool call.
func (h *JiraHandler) handleDeleteComment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}
	commentID, err := getStringParam(args, "commentId", true)
	if err != nil {
		return nil, err
	}

	if err := h.client.DeleteComment(ctx, issueKey, commentID); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Comment %s deleted from issue %s", commentID, issueKey),
	})
}

// handleListSprints handles the jira_list_sprints tool call.
func (h *JiraHandler) handleListSprints(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getIntParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}

	sprints, err := h.client.ListSprints(ctx, boardID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(sprints)
}

// handleGetSprint handles the jira_get_sprint tool call.
func (h *JiraHandler) handleGetSprint(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	sprintID, err := getIntParam(args, "sprintId", true)
	if err != nil {
		return nil, err
	}

	sprint, err := h.client.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(sprint)
}

// handleCreateSprint handles the jira_create_sprint tool call.
func (h *JiraHandler) handleCreateSprint(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getIntParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(args, "name", true)
	if err != nil {
		return nil, err
	}

	startDate, _ := getStringParam(args, "startDate", false)
	endDate, _ := getStringParam(args, "endDate", false)
	goal, _ := getStringParam(args, "goal", false)

	createReq := &domain.SprintCreate{
		Name:          name,
		OriginBoardID: boardID,
		StartDate:     startDate,
		EndDate:       endDate,
		Goal:          goal,
	}

	sprint, err := h.client.CreateSprint(ctx, createReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(sprint)
}

// handleMoveIssuesToSprint handles the jira_move_issues_to_sprint tool call.
func (h *JiraHandler) handleMoveIssuesToSprint(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	sprintID, err := getIntParam(args, "sprintId", true)
	if err != nil {
		return nil, err
	}
	issueKeys, err := getStringSliceParam(args, "issueKeys", true)
	if err != nil {
		return nil, err
	}
	if len(issueKeys) == 0 {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "issueKeys must contain at least one issue key",
		}
	}

	if err := h.client.MoveIssuesToSprint(ctx, sprintID, issueKeys); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%d issue(s) moved to sprint %d", len(issueKeys), sprintID),
	})
}

// handleListBoards handles the jira_list_boards tool call.
func (h *JiraHandler) handleListBoards(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boards, err := h.client.ListBoards(ctx)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(boards)
}

// handleGetBoard handles the jira_get_board tool call.
func (h *JiraHandler) handleGetBoard(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getIntParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}

	board, err := h.client.GetBoard(ctx, boardID)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(board)
}

// handleSearchUsers handles the jira_search_users tool call.
func (h *JiraHandler) handleSearchUsers(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	query, err := getStringParam(args, "query", true)
	if err != nil {
		return nil, err
	}

	users, err := h.client.SearchUsers(ctx, query)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(users)
}

// handleGetCurrentUser handles the jira_get_current_user tool call.
func (h *JiraHandler) handleGetCurrentUser(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	user, err := h.client.GetCurrentUser(ctx)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(user)
}

// handleGetCustomFields handles the jira_get_custom_fields tool call.
func (h *JiraHandler) handleGetCustomFields(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	fields, err := h.client.ListFields(ctx)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.NewFieldsReport(fields))
}
