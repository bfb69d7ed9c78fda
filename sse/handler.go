package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/stream"
)

// Option configures ServeStream.
type Option func(*options)

type options struct {
	runtime    *stream.Runtime
	keepAlive  time.Duration
	name       string
	clientOpts []ClientOption
}

// WithRuntime subscribes on rt instead of the default runtime.
func WithRuntime(rt *stream.Runtime) Option {
	return func(o *options) { o.runtime = rt }
}

// WithKeepAlive sets the keep-alive comment interval. Defaults to 30s.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.keepAlive = d }
}

// WithName names the subscription.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClientOptions configures the per-request Client.
func WithClientOptions(opts ...ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// ServeStream subscribes to s for the lifetime of the request and writes
// its signals as SSE events. It returns after the terminal event has been
// written or the client has gone away.
func ServeStream[T any](w http.ResponseWriter, r *http.Request, s *stream.Stream[T], opts ...Option) {
	o := options{keepAlive: 30 * time.Second, name: s.Name()}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.Get("sse")

	// Check SSE support (requires http.Flusher interface)
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported", logger.Fields(logger.FieldStream, o.name))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections are long-lived and must not be cut by the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", logger.ErrorFields("set_write_deadline", err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient(uuid.NewString(), o.clientOpts...)
	log = log.WithFields(logger.Fields("client_id", client.ID(), logger.FieldStream, o.name))

	connected, _ := json.Marshal(ConnectedEvent{
		ClientID: client.ID(),
		Stream:   o.name,
		Metadata: client.Metadata(),
	})
	writeEvent(w, Event{Type: EventTypeConnected, Data: connected})
	flusher.Flush()
	log.Debug("client connected", logger.Fields("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	encoded := stream.Tap(s, func(_ context.Context, v T) error {
		data, err := json.Marshal(v)
		if err != nil {
			return errors.New(errors.ErrCodeInternal, "encoding stream value").WithCause(err)
		}
		client.Push(Event{Type: EventTypeNext, Data: data})
		return nil
	})

	subOpts := []stream.SubscribeOption{stream.WithName(o.name)}
	if o.runtime != nil {
		subOpts = append(subOpts, stream.WithRuntime(o.runtime))
	}
	sub := encoded.Subscribe(ctx, nil,
		func(err error) {
			body, _ := json.Marshal(errors.Wrap(err).ToResponse())
			client.Push(Event{Type: EventTypeError, Data: body})
		},
		func() {
			client.Push(Event{Type: EventTypeComplete, Data: json.RawMessage("{}")})
		},
		subOpts...,
	)
	defer sub.Cancel()

	// Keep-alive interval should be less than proxy timeouts (typically 60s).
	keepAlive := time.NewTicker(o.keepAlive)
	defer keepAlive.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			// Client disconnected (browser closed, network issue, etc.)
			log.Debug("client disconnected", logger.Fields("reason", ctx.Err().Error(), "events", sent))
			return

		case <-client.Ready():
			for _, ev := range client.Drain() {
				writeEvent(w, ev)
				sent++
				if ev.Terminal() {
					flusher.Flush()
					log.Debug("stream finished", logger.Fields("event", ev.Type, "events", sent))
					return
				}
			}
			flusher.Flush()

		case <-keepAlive.C:
			// SSE comments start with ':' and keep proxies from closing idle connections.
			_, _ = fmt.Fprintf(w, ": %s %d\n\n", EventTypeKeepAlive, time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) {
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", ev.Data)
}
