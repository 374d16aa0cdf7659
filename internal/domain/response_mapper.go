package domain

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
// It renders API responses as indented JSON content blocks and appends a
// pagination summary for paginated responses.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResponse converts a deserialized API response to MCP format.
// The mapping is deterministic: the same input always produces the same
// content blocks.
func (m *DefaultResponseMapper) MapToToolResponse(apiResponse interface{}) (*ToolResponse, error) {
	if apiResponse == nil {
		return &ToolResponse{
			Content: []ContentBlock{
				{
					Type: "text",
					Text: "{}",
				},
			},
		}, nil
	}

	jsonBytes, err := json.MarshalIndent(apiResponse, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal API response: %w", err)
	}

	contentBlock := ContentBlock{
		Type: "text",
		Text: string(jsonBytes),
	}

	if paginationInfo := extractPaginationInfo(apiResponse); paginationInfo != "" {
		return &ToolResponse{
			Content: []ContentBlock{
				contentBlock,
				{
					Type: "text",
					Text: paginationInfo,
				},
			},
		}, nil
	}

	return &ToolResponse{
		Content: []ContentBlock{contentBlock},
	}, nil
}

// extractPaginationInfo extracts pagination metadata from responses that
// support it. Returns a formatted summary, or empty string if the response
// is not paginated.
func extractPaginationInfo(apiResponse interface{}) string {
	switch resp := apiResponse.(type) {
	case *SearchResults:
		return searchPagination(resp)
	case SearchResults:
		return searchPagination(&resp)
	case Paginator:
		return "\n" + resp.PaginationSummary()
	}

	return ""
}

// searchPagination summarizes JQL search pagination. The search endpoint
// uses cursor-based pagination, so only the cursor state is reported.
func searchPagination(results *SearchResults) string {
	if results.IsLast || results.NextPageToken == "" {
		return fmt.Sprintf("\nPagination: %d issues returned (last page)", len(results.Issues))
	}
	return fmt.Sprintf("\nPagination: %d issues returned; more available (nextPageToken: %s)",
		len(results.Issues), results.NextPageToken)
}

// MapError converts an API error to MCP error format.
func (m *DefaultResponseMapper) MapError(err error) *Error {
	if err == nil {
		return nil
	}

	// HTTP errors carry the upstream status and body.
	if httpErr, ok := err.(HTTPError); ok {
		return mapHTTPError(httpErr)
	}

	// Already a domain Error - pass through unchanged.
	if domainErr, ok := err.(*Error); ok {
		return domainErr
	}

	return &Error{
		Code:    InternalError,
		Message: err.Error(),
	}
}

// HTTPError represents an HTTP error with status code and message.
// Infrastructure clients return this for every non-2xx upstream response
// so the status and body always surface to the caller.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Message, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(statusCode int, message string, body string) HTTPError {
	return HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

// mapHTTPError maps HTTP status codes to JSON-RPC error codes.
func mapHTTPError(httpErr HTTPError) *Error {
	var code int
	var message string

	switch httpErr.StatusCode {
	case http.StatusUnauthorized:
		code = AuthenticationError
		message = "Authentication failed"
	case http.StatusForbidden:
		code = AuthenticationError
		message = "Access forbidden - insufficient permissions"
	case http.StatusNotFound:
		code = APIError
		message = "Resource not found"
	case http.StatusBadRequest:
		code = InvalidParams
		message = "Bad request - invalid parameters"
	case http.StatusConflict:
		code = APIError
		message = "Conflict - resource already exists or version mismatch"
	case http.StatusTooManyRequests:
		code = RateLimitError
		message = "Rate limit exceeded"
	case http.StatusInternalServerError:
		code = APIError
		message = "Internal server error"
	case http.StatusServiceUnavailable:
		code = NetworkError
		message = "Service unavailable"
	case http.StatusGatewayTimeout:
		code = NetworkError
		message = "Gateway timeout"
	default:
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			code = APIError
			message = fmt.Sprintf("Client error: %s", httpErr.Message)
		} else if httpErr.StatusCode >= 500 {
			code = APIError
			message = fmt.Sprintf("Server error: %s", httpErr.Message)
		} else {
			code = InternalError
			message = httpErr.Message
		}
	}

	errorData := map[string]interface{}{
		"statusCode": httpErr.StatusCode,
		"message":    httpErr.Message,
	}
	if httpErr.Body != "" {
		errorData["body"] = httpErr.Body
	}

	return &Error{
		Code:    code,
		Message: message,
		Data:    errorData,
	}
}
