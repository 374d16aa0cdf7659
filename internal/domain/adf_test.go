package domain

import (
	"encoding/json"
	"testing"
)

func TestNewADFDocument(t *testing.T) {
	doc := NewADFDocument("hello world")

	if doc.Type != "doc" {
		t.Errorf("Expected type 'doc', got '%s'", doc.Type)
	}

	if doc.Version != 1 {
		t.Errorf("Expected version 1, got %d", doc.Version)
	}

	if len(doc.Content) != 1 {
		t.Fatalf("Expected 1 content node, got %d", len(doc.Content))
	}

	paragraph := doc.Content[0]
	if paragraph.Type != "paragraph" {
		t.Errorf("Expected paragraph node, got '%s'", paragraph.Type)
	}

	if len(paragraph.Content) != 1 || paragraph.Content[0].Text != "hello world" {
		t.Errorf("Unexpected paragraph content: %+v", paragraph.Content)
	}
}

func TestADFDocument_SerializesToWireFormat(t *testing.T) {
	doc := NewADFDocument("body text")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if parsed["type"] != "doc" {
		t.Errorf("Expected type 'doc', got '%v'", parsed["type"])
	}

	if parsed["version"] != float64(1) {
		t.Errorf("Expected version 1, got '%v'", parsed["version"])
	}
}

func TestADFDocument_PlainText(t *testing.T) {
	doc := NewADFDocument("hello world")

	if got := doc.PlainText(); got != "hello world" {
		t.Errorf("Expected 'hello world', got '%s'", got)
	}
}

func TestADFDocument_PlainTextMultipleNodes(t *testing.T) {
	doc := &ADFDocument{
		Type:    "doc",
		Version: 1,
		Content: []ADFNode{
			{
				Type: "paragraph",
				Content: []ADFNode{
					{Type: "text", Text: "first"},
					{Type: "text", Text: "second"},
				},
			},
			{
				Type: "paragraph",
				Content: []ADFNode{
					{Type: "text", Text: "third"},
				},
			},
		},
	}

	if got := doc.PlainText(); got != "first second third" {
		t.Errorf("Unexpected plain text: %q", got)
	}
}

func TestADFDocument_PlainTextNil(t *testing.T) {
	var doc *ADFDocument

	if got := doc.PlainText(); got != "" {
		t.Errorf("Expected empty string for nil document, got %q", got)
	}
}

func TestADFDocument_RoundTrip(t *testing.T) {
	// A description fetched from the API should survive decode + extract.
	raw := `{
		"type": "doc",
		"version": 1,
		"content": [
			{"type": "paragraph", "content": [{"type": "text", "text": "fetched text"}]}
		]
	}`

	var doc ADFDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got := doc.PlainText(); got != "fetched text" {
		t.Errorf("Expected 'fetched text', got %q", got)
	}
}
