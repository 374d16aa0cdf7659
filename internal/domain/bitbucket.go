package domain

import "fmt"

// Page is the pagination envelope used by the Bitbucket Cloud 2.0 API.
type Page[T any] struct {
	Values  []T    `json:"values"`
	Page    int    `json:"page,omitempty"`
	PageLen int    `json:"pagelen,omitempty"`
	Size    int    `json:"size,omitempty"`
	Next    string `json:"next,omitempty"`
}

// PaginationSummary implements Paginator.
func (p Page[T]) PaginationSummary() string {
	info := fmt.Sprintf("Pagination: %d values returned", len(p.Values))
	if p.Size > 0 {
		info += fmt.Sprintf(" of %d total", p.Size)
	}
	if p.Page > 0 {
		info += fmt.Sprintf(" (page %d, pagelen %d)", p.Page, p.PageLen)
	}
	if p.Next != "" {
		info += "; more available"
	}
	return info
}

// Paginator is implemented by paginated API responses so the response
// mapper can report pagination state without knowing the value type.
type Paginator interface {
	PaginationSummary() string
}

// Repository represents a Bitbucket Cloud repository.
type Repository struct {
	UUID        string         `json:"uuid,omitempty"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	FullName    string         `json:"full_name,omitempty"`
	Description string         `json:"description,omitempty"`
	IsPrivate   bool           `json:"is_private"`
	SCM         string         `json:"scm,omitempty"`
	Project     *BBProjectRef  `json:"project,omitempty"`
	MainBranch  *BranchNameRef `json:"mainbranch,omitempty"`
	Workspace   *WorkspaceRef  `json:"workspace,omitempty"`
	CreatedOn   string         `json:"created_on,omitempty"`
	UpdatedOn   string         `json:"updated_on,omitempty"`
}

// BBProjectRef references a Bitbucket project by key.
type BBProjectRef struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// BranchNameRef references a branch by name.
type BranchNameRef struct {
	Name string `json:"name"`
}

// WorkspaceRef references a workspace.
type WorkspaceRef struct {
	Slug string `json:"slug"`
	Name string `json:"name,omitempty"`
}

// RepositoryCreate represents the request body for creating a repository.
type RepositoryCreate struct {
	SCM         string        `json:"scm"`
	IsPrivate   bool          `json:"is_private"`
	Description string        `json:"description,omitempty"`
	Project     *BBProjectRef `json:"project,omitempty"`
}

// Account represents a Bitbucket Cloud user account.
type Account struct {
	UUID        string `json:"uuid,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
}

// PullRequest represents a Bitbucket Cloud pull request.
type PullRequest struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	State             string     `json:"state"` // OPEN, MERGED, DECLINED, SUPERSEDED
	Source            PREndpoint `json:"source"`
	Destination       PREndpoint `json:"destination"`
	Author            *Account   `json:"author,omitempty"`
	CloseSourceBranch bool       `json:"close_source_branch,omitempty"`
	MergeCommit       *CommitRef `json:"merge_commit,omitempty"`
	CreatedOn         string     `json:"created_on,omitempty"`
	UpdatedOn         string     `json:"updated_on,omitempty"`
}

// PREndpoint is one side of a pull request (source or destination).
type PREndpoint struct {
	Branch     BranchNameRef `json:"branch"`
	Commit     *CommitRef    `json:"commit,omitempty"`
	Repository *RepoRef      `json:"repository,omitempty"`
}

// RepoRef references a repository by full name.
type RepoRef struct {
	FullName string `json:"full_name,omitempty"`
	Name     string `json:"name,omitempty"`
	UUID     string `json:"uuid,omitempty"`
}

// CommitRef references a commit by hash.
type CommitRef struct {
	Hash string `json:"hash"`
}

// PullRequestCreate represents the request body for creating a pull request.
type PullRequestCreate struct {
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Source            PREndpoint `json:"source"`
	Destination       PREndpoint `json:"destination"`
	CloseSourceBranch bool       `json:"close_source_branch"`
}

// PullRequestUpdate represents the request body for updating a pull request.
type PullRequestUpdate struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// MergeRequest represents the request body for merging a pull request.
type MergeRequest struct {
	Type    string `json:"type"` // merge_commit, squash, fast_forward
	Message string `json:"message,omitempty"`
}

// Participant represents a pull request participant (reviewer/approver).
type Participant struct {
	User     *Account `json:"user,omitempty"`
	Role     string   `json:"role,omitempty"`
	Approved bool     `json:"approved"`
	State    string   `json:"state,omitempty"`
}

// Rendered is Bitbucket's raw/markup/html content wrapper.
type Rendered struct {
	Raw    string `json:"raw"`
	Markup string `json:"markup,omitempty"`
	HTML   string `json:"html,omitempty"`
}

// PRComment represents a comment on a pull request.
type PRComment struct {
	ID        int      `json:"id"`
	Content   Rendered `json:"content"`
	User      *Account `json:"user,omitempty"`
	CreatedOn string   `json:"created_on,omitempty"`
	UpdatedOn string   `json:"updated_on,omitempty"`
	Deleted   bool     `json:"deleted,omitempty"`
}

// PRCommentCreate represents the request body for adding a PR comment.
type PRCommentCreate struct {
	Content Rendered `json:"content"`
}

// Branch represents a Bitbucket Cloud branch.
type Branch struct {
	Name   string  `json:"name"`
	Type   string  `json:"type,omitempty"` // branch
	Target *Commit `json:"target,omitempty"`
}

// BranchCreate represents the request body for creating a branch.
type BranchCreate struct {
	Name   string    `json:"name"`
	Target CommitRef `json:"target"`
}

// Commit represents a Bitbucket Cloud commit.
type Commit struct {
	Hash    string        `json:"hash"`
	Date    string        `json:"date,omitempty"`
	Message string        `json:"message,omitempty"`
	Author  *CommitAuthor `json:"author,omitempty"`
	Parents []CommitRef   `json:"parents,omitempty"`
}

// CommitAuthor holds the raw author string and the resolved account.
type CommitAuthor struct {
	Raw  string   `json:"raw,omitempty"`
	User *Account `json:"user,omitempty"`
}

// BitbucketIssue represents an issue in a Bitbucket Cloud issue tracker.
type BitbucketIssue struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	State     string    `json:"state,omitempty"` // new, open, resolved, on hold, invalid, duplicate, wontfix, closed
	Kind      string    `json:"kind,omitempty"`  // bug, enhancement, proposal, task
	Priority  string    `json:"priority,omitempty"`
	Content   *Rendered `json:"content,omitempty"`
	Reporter  *Account  `json:"reporter,omitempty"`
	Assignee  *Account  `json:"assignee,omitempty"`
	CreatedOn string    `json:"created_on,omitempty"`
	UpdatedOn string    `json:"updated_on,omitempty"`
}

// BitbucketIssueCreate represents the request body for creating an issue.
type BitbucketIssueCreate struct {
	Title    string    `json:"title"`
	Kind     string    `json:"kind"`
	Priority string    `json:"priority"`
	Content  *Rendered `json:"content,omitempty"`
}

// BitbucketIssueUpdate represents the request body for updating an issue.
type BitbucketIssueUpdate struct {
	Title    string    `json:"title,omitempty"`
	State    string    `json:"state,omitempty"`
	Kind     string    `json:"kind,omitempty"`
	Priority string    `json:"priority,omitempty"`
	Content  *Rendered `json:"content,omitempty"`
}

// Workspace represents a Bitbucket Cloud workspace.
type Workspace struct {
	UUID      string `json:"uuid,omitempty"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private,omitempty"`
	CreatedOn string `json:"created_on,omitempty"`
}

// CodeSearchResult is a single match from repository code search.
type CodeSearchResult struct {
	Type              string         `json:"type,omitempty"`
	ContentMatchCount int            `json:"content_match_count,omitempty"`
	File              CodeSearchFile `json:"file"`
}

// CodeSearchFile identifies the matched file.
type CodeSearchFile struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
}
