package domain

import (
	"encoding/json"
	"fmt"
)

// FlexibleID is a type that can unmarshal both string and numeric IDs from JSON.
type FlexibleID string

// UnmarshalJSON implements custom unmarshaling to handle both string and numeric IDs.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleID(n.String())
		return nil
	}

	return fmt.Errorf("id must be a string or number")
}

// String returns the string representation of the ID.
func (f FlexibleID) String() string {
	return string(f)
}

// JiraIssue represents a JIRA Cloud issue.
// This is the main entity returned by issue API operations.
type JiraIssue struct {
	ID     FlexibleID `json:"id"`
	Key    string     `json:"key"`
	Self   string     `json:"self,omitempty"`
	Fields JiraFields `json:"fields"`
}

// JiraFields contains the field data for a JIRA issue. The description is
// an ADF document; DescriptionText carries its extracted plain text so
// hosts do not have to walk the document tree.
type JiraFields struct {
	Summary         string       `json:"summary"`
	Description     *ADFDocument `json:"description,omitempty"`
	DescriptionText string       `json:"description_text,omitempty"`
	IssueType       IssueType    `json:"issuetype"`
	Project         Project      `json:"project"`
	Status          Status       `json:"status"`
	Priority        *Priority    `json:"priority,omitempty"`
	Labels          []string     `json:"labels,omitempty"`
	Assignee        *User        `json:"assignee,omitempty"`
	Reporter        *User        `json:"reporter,omitempty"`
	Created         string       `json:"created,omitempty"`
	Updated         string       `json:"updated,omitempty"`
}

// IssueType represents a JIRA issue type (e.g., Bug, Story, Task).
type IssueType struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Project represents a JIRA project.
type Project struct {
	ID             FlexibleID `json:"id"`
	Key            string     `json:"key"`
	Name           string     `json:"name"`
	ProjectTypeKey string     `json:"projectTypeKey,omitempty"`
	Description    string     `json:"description,omitempty"`
	Lead           *User      `json:"lead,omitempty"`
}

// Status represents a JIRA issue status (e.g., Open, In Progress, Done).
type Status struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Priority represents a JIRA issue priority (e.g., High, Medium, Low).
type Priority struct {
	ID   FlexibleID `json:"id,omitempty"`
	Name string     `json:"name"`
}

// User represents a JIRA Cloud user. Cloud identifies users by account ID.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Active       bool   `json:"active,omitempty"`
}

// ProjectCreate represents the request body for creating a new project.
type ProjectCreate struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	ProjectTypeKey string `json:"projectTypeKey"`
	LeadAccountID  string `json:"leadAccountId,omitempty"`
	Description    string `json:"description,omitempty"`
}

// SearchRequest represents the request body for the JQL search endpoint.
// The /rest/api/3/search/jql endpoint uses cursor-based pagination.
type SearchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults,omitempty"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
	Fields        []string `json:"fields,omitempty"`
}

// SearchResults represents the results of a JQL search.
type SearchResults struct {
	Issues        []JiraIssue `json:"issues"`
	IsLast        bool        `json:"isLast,omitempty"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// JiraIssueCreate represents the request body for creating a new issue.
type JiraIssueCreate struct {
	Fields JiraFieldsCreate `json:"fields"`
}

// JiraFieldsCreate contains the fields accepted when creating an issue.
type JiraFieldsCreate struct {
	Project     ProjectRef   `json:"project"`
	Summary     string       `json:"summary"`
	IssueType   IssueTypeRef `json:"issuetype"`
	Description *ADFDocument `json:"description,omitempty"`
	Priority    *PriorityRef `json:"priority,omitempty"`
	Assignee    *UserRef     `json:"assignee,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
}

// IssueTypeRef is a reference to an issue type (used in create/update operations).
type IssueTypeRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ProjectRef is a reference to a project (used in create/update operations).
type ProjectRef struct {
	ID  string `json:"id,omitempty"`
	Key string `json:"key,omitempty"`
}

// PriorityRef is a reference to a priority by name.
type PriorityRef struct {
	Name string `json:"name"`
}

// UserRef is a reference to a user by account ID (used in issue fields).
type UserRef struct {
	ID string `json:"id"`
}

// Custom field IDs for the agile fields the update tool can set.
// These match the field configuration of the target JIRA site; the
// jira_get_custom_fields tool reports the actual IDs.
const (
	CustomFieldAcceptanceCriteria    = "customfield_10103"
	CustomFieldTechnicalRequirements = "customfield_10104"
	CustomFieldStoryPoints           = "customfield_10105"
	CustomFieldSprintLabels          = "customfield_10106"
)

// JiraIssueUpdate represents the request body for updating an issue.
// Fields is a free-form map so custom fields can be set by ID.
type JiraIssueUpdate struct {
	Fields map[string]interface{} `json:"fields"`
}

// AssigneeRequest is the request body for the issue assignee endpoint.
type AssigneeRequest struct {
	AccountID string `json:"accountId"`
}

// TransitionsResponse lists the workflow transitions available for an issue.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// Transition represents an available workflow transition.
type Transition struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	To   *Status `json:"to,omitempty"`
}

// IssueTransition represents a workflow transition request.
type IssueTransition struct {
	Transition TransitionRef `json:"transition"`
}

// TransitionRef is a reference to a workflow transition by ID.
type TransitionRef struct {
	ID string `json:"id"`
}

// CommentCreate represents the request body for adding a comment.
type CommentCreate struct {
	Body *ADFDocument `json:"body"`
}

// Comment represents a comment on a JIRA issue.
type Comment struct {
	ID      FlexibleID   `json:"id"`
	Body    *ADFDocument `json:"body,omitempty"`
	Author  *User        `json:"author,omitempty"`
	Created string       `json:"created,omitempty"`
	Updated string       `json:"updated,omitempty"`
}

// Sprint represents a JIRA agile sprint.
type Sprint struct {
	ID            int    `json:"id"`
	State         string `json:"state,omitempty"` // future, active, closed
	Name          string `json:"name"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	Goal          string `json:"goal,omitempty"`
	OriginBoardID int    `json:"originBoardId,omitempty"`
}

// SprintCreate represents the request body for creating a sprint.
type SprintCreate struct {
	Name          string `json:"name"`
	OriginBoardID int    `json:"originBoardId"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	Goal          string `json:"goal,omitempty"`
}

// SprintIssueMove is the request body for moving issues into a sprint.
type SprintIssueMove struct {
	Issues []string `json:"issues"`
}

// Board represents a JIRA agile board.
type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"` // scrum, kanban
}

// AgilePage is the pagination envelope used by the JIRA agile API.
type AgilePage[T any] struct {
	MaxResults int  `json:"maxResults,omitempty"`
	StartAt    int  `json:"startAt,omitempty"`
	Total      int  `json:"total,omitempty"`
	IsLast     bool `json:"isLast,omitempty"`
	Values     []T  `json:"values"`
}

// PaginationSummary implements Paginator.
func (p AgilePage[T]) PaginationSummary() string {
	count := len(p.Values)
	if p.Total > 0 {
		return fmt.Sprintf("Pagination: showing %d-%d of %d total results",
			p.StartAt+1, p.StartAt+count, p.Total)
	}
	if p.IsLast {
		return fmt.Sprintf("Pagination: %d values returned (last page)", count)
	}
	return fmt.Sprintf("Pagination: %d values returned; more available", count)
}

// JiraField describes a JIRA field, including custom fields.
type JiraField struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Custom      bool            `json:"custom"`
	Description string          `json:"description,omitempty"`
	Schema      JiraFieldSchema `json:"schema,omitempty"`
}

// JiraFieldSchema describes the value type of a field.
type JiraFieldSchema struct {
	Type   string `json:"type,omitempty"`
	Custom string `json:"custom,omitempty"`
}

// CustomFieldSummary is the flattened view of a custom field reported by
// the jira_get_custom_fields tool.
type CustomFieldSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Custom      bool   `json:"custom"`
}

// FieldsReport is the reshaped output of the jira_get_custom_fields tool.
// All upstream fields are preserved alongside the custom-field summary.
type FieldsReport struct {
	TotalFields       int                  `json:"total_fields"`
	CustomFieldsCount int                  `json:"custom_fields_count"`
	CustomFields      []CustomFieldSummary `json:"custom_fields"`
	AllFields         []JiraField          `json:"all_fields"`
}

// NewFieldsReport builds the custom-field report from the raw field list.
func NewFieldsReport(fields []JiraField) *FieldsReport {
	customFields := make([]CustomFieldSummary, 0)
	for _, field := range fields {
		if !field.Custom {
			continue
		}
		fieldType := field.Schema.Type
		if fieldType == "" {
			fieldType = "unknown"
		}
		customFields = append(customFields, CustomFieldSummary{
			ID:          field.ID,
			Name:        field.Name,
			Description: field.Description,
			Type:        fieldType,
			Custom:      true,
		})
	}

	return &FieldsReport{
		TotalFields:       len(fields),
		CustomFieldsCount: len(customFields),
		CustomFields:      customFields,
		AllFields:         fields,
	}
}
