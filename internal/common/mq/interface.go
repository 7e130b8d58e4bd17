package mq

import (
	"context"
	"time"
)

// Producer publishes messages to a topic.
type Producer interface {
	Publish(ctx context.Context, topic string, message *Message) error
	// Ping reports whether a broker is reachable.
	Ping(ctx context.Context) error
	// Close flushes pending writes.
	Close() error
}

// Message is one record. Key routes the record to a partition and is also
// sent as the x-message-id header.
type Message struct {
	Key       string
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
}

// NewMessage creates a message stamped with the current time.
func NewMessage(key string, body []byte) *Message {
	return &Message{Key: key, Body: body, Headers: map[string]string{}, Timestamp: time.Now()}
}

// WithHeader sets a header and returns m for chaining.
func (m *Message) WithHeader(key, value string) *Message {
	if m.Headers == nil {
		m.Headers = map[string]string{}
	}
	m.Headers[key] = value
	return m
}

// Header returns the header value, or "" when unset.
func (m *Message) Header(key string) string {
	return m.Headers[key]
}
