package services

import (
	"time"

	"github.com/kimhsiao/blogai/internal/models"
)

// TopicResult is the outcome of one generate-and-save attempt.
type TopicResult struct {
	Topic   string          `json:"topic"`
	Article *models.Article `json:"article,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// OK reports whether the article was saved.
func (r TopicResult) OK() bool {
	return r.Error == ""
}

// BatchReport summarizes a sequence of generation attempts.
type BatchReport struct {
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Results  []TopicResult `json:"results"`
}

// Succeeded counts saved articles.
func (r BatchReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed counts attempts that did not save an article.
func (r BatchReport) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// SeedReport is a BatchReport plus whether seeding ran at all.
type SeedReport struct {
	Seeded bool `json:"seeded"`
	BatchReport
}
