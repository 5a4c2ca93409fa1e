package services

import "time"

// Event types published by ArticleService.
const (
	EventArticleCreated = "article.created"
	EventArticleDeleted = "article.deleted"
)

// Event is a change notification for live clients.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventSink receives events. Publish must not block on slow consumers.
type EventSink interface {
	Publish(event Event)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}
