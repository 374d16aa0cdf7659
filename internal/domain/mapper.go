package domain

// ResponseMapper converts remote API responses to MCP tool responses.
type ResponseMapper interface {
	// MapToToolResponse converts a deserialized API response to MCP format.
	// Returns an error if the response cannot be serialized.
	MapToToolResponse(apiResponse interface{}) (*ToolResponse, error)

	// MapError converts an API error to MCP error format.
	// HTTP status codes from the remote services are mapped to
	// JSON-RPC error codes; the upstream status and body are preserved
	// in the error data.
	MapError(err error) *Error
}
