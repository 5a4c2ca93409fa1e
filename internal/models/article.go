// Package models provides the data model definitions for the blog service.
package models

import (
	"strings"
	"time"
)

// Status is the publication state of an article.
type Status string

const (
	StatusPublished Status = "published"
	// Reserved for future use; nothing in the service produces them yet.
	StatusDraft    Status = "draft"
	StatusArchived Status = "archived"
)

// DefaultStyle is the writing style used when a generation request omits one.
const DefaultStyle = "informative"

// TagSeparator is the character tags are joined with in storage.
const TagSeparator = ","

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPublished, StatusDraft, StatusArchived:
		return true
	}
	return false
}

// Article is a persisted blog article.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Status      Status    `json:"status"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ArticleInput holds the caller-supplied fields of a new article.
type ArticleInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Status      Status   `json:"status"`
}

// Normalize fills defaults: a blank status becomes published.
func (in *ArticleInput) Normalize() {
	if strings.TrimSpace(string(in.Status)) == "" {
		in.Status = StatusPublished
	}
}

// Validate checks the constraints the store relies on. It returns a
// human-readable reason, or "" when the input is acceptable.
func (in *ArticleInput) Validate() string {
	if strings.TrimSpace(in.Title) == "" {
		return "title is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		return "content is required"
	}
	if !in.Status.Valid() {
		return "unknown status: " + string(in.Status)
	}
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			return "tags must not be empty"
		}
		if strings.Contains(tag, TagSeparator) {
			return "tags must not contain commas: " + tag
		}
	}
	return ""
}

// EncodeTags joins tags into the storage representation.
func EncodeTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// DecodeTags splits the storage representation back into a sequence.
// An empty string decodes to an empty, non-nil slice.
func DecodeTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, TagSeparator)
}

// GenerationRequest parameterizes one article generation.
type GenerationRequest struct {
	Topic string `json:"topic"`
	Style string `json:"style"`
}

// WithDefaults returns a copy with a blank style replaced by DefaultStyle.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if strings.TrimSpace(r.Style) == "" {
		r.Style = DefaultStyle
	}
	return r
}

// GenerationSource records which path produced a GeneratedArticle.
type GenerationSource string

const (
	SourceAI       GenerationSource = "ai"
	SourceFallback GenerationSource = "fallback"
)

// GeneratedArticle is the transient output of the content generator.
type GeneratedArticle struct {
	Title       string
	Description string
	Content     string
	Tags        []string
	Source      GenerationSource
}

// ToInput maps a generated article onto create fields, forcing published.
func (g GeneratedArticle) ToInput() ArticleInput {
	return ArticleInput{
		Title:       g.Title,
		Description: g.Description,
		Content:     g.Content,
		Tags:        g.Tags,
		Status:      StatusPublished,
	}
}
