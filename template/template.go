// Package template manages reusable system-instruction templates: a
// built-in catalog plus user templates persisted as JSON files in the
// config directory.
package template

import (
	"fmt"
	"strings"
	"time"
)

// Template is a named, reusable system instruction.
type Template struct {
	// Name uniquely identifies the template.
	Name string `json:"name"`
	// Description is a human-readable summary.
	Description string `json:"description"`
	// Content is the system instruction text. It may contain
	// {{variable}} placeholders filled in by Render.
	Content string `json:"content"`
	// Category groups templates for listing.
	Category string `json:"category"`
	// Tags support searching and filtering.
	Tags []string `json:"tags,omitempty"`
	// Builtin marks catalog templates, which cannot be modified or deleted.
	Builtin   bool      `json:"builtin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a user template.
func New(name, description, content, category string, tags ...string) Template {
	now := time.Now().UTC()
	return Template{
		Name:        name,
		Description: description,
		Content:     content,
		Category:    category,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MatchesSearch reports whether the template matches a search query
// against name, description, category, or tags. Matching is
// case-insensitive substring.
func (t Template) MatchesSearch(query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Name), query) ||
		strings.Contains(strings.ToLower(t.Description), query) ||
		strings.Contains(strings.ToLower(t.Category), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Render substitutes {{name}} placeholders in the template content.
// Unknown placeholders are left intact; an error is returned if any
// provided variable has no placeholder in the content.
func (t Template) Render(vars map[string]string) (string, error) {
	out := t.Content
	for name, value := range vars {
		placeholder := "{{" + name + "}}"
		if !strings.Contains(out, placeholder) {
			return "", fmt.Errorf("template %q has no variable %q", t.Name, name)
		}
		out = strings.ReplaceAll(out, placeholder, value)
	}
	return out, nil
}
