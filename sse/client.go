package sse

import (
	"sync"
)

// Client represents a connected SSE client. Events are queued without bound
// because stream callbacks must never block.
type Client struct {
	id       string            // Unique client ID
	metadata map[string]string // Optional metadata

	mu     sync.Mutex
	queue  []Event
	notify chan struct{}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata adds a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		if c.metadata == nil {
			c.metadata = make(map[string]string)
		}
		c.metadata[key] = value
	}
}

// NewClient creates a new SSE client with optional metadata.
func NewClient(id string, opts ...ClientOption) *Client {
	c := &Client{
		id:     id,
		notify: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string {
	return c.id
}

// Metadata returns all client metadata.
func (c *Client) Metadata() map[string]string {
	return c.metadata
}

// Push queues an event and wakes the writer.
func (c *Client) Push(ev Event) {
	c.mu.Lock()
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Ready is signalled when events are waiting.
func (c *Client) Ready() <-chan struct{} {
	return c.notify
}

// Drain removes and returns all queued events.
func (c *Client) Drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.queue
	c.queue = nil
	return events
}
