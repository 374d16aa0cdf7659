package domain

import "strings"

// ADFDocument is an Atlassian Document Format document. JIRA Cloud uses
// ADF for rich text fields (descriptions, comments, custom text fields).
type ADFDocument struct {
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Content []ADFNode `json:"content,omitempty"`
}

// ADFNode is a node in an ADF document tree.
type ADFNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []ADFNode `json:"content,omitempty"`
}

// NewADFDocument wraps plain text in a minimal single-paragraph document.
func NewADFDocument(text string) *ADFDocument {
	return &ADFDocument{
		Type:    "doc",
		Version: 1,
		Content: []ADFNode{
			{
				Type: "paragraph",
				Content: []ADFNode{
					{Type: "text", Text: text},
				},
			},
		},
	}
}

// PlainText extracts the text content of the document, joining text nodes
// with single spaces. Formatting and structure are discarded.
func (d *ADFDocument) PlainText() string {
	if d == nil {
		return ""
	}

	var parts []string
	var walk func(nodes []ADFNode)
	walk = func(nodes []ADFNode) {
		for _, node := range nodes {
			if node.Type == "text" && node.Text != "" {
				parts = append(parts, node.Text)
			}
			if len(node.Content) > 0 {
				walk(node.Content)
			}
		}
	}
	walk(d.Content)

	return strings.Join(parts, " ")
}
