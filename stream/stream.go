package stream

// Observer receives the signals of one subscription.
type Observer[T any] interface {
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Funcs adapts three callbacks to an Observer. Nil callbacks are skipped.
type Funcs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

func (f Funcs[T]) OnNext(v T) {
	if f.Next != nil {
		f.Next(v)
	}
}

func (f Funcs[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

func (f Funcs[T]) OnComplete() {
	if f.Complete != nil {
		f.Complete()
	}
}

// Stream is a lazy, push-based pipeline stage. Building a Stream has no side
// effects; work starts when a consumer subscribes.
type Stream[T any] struct {
	name      string
	subscribe func(sc *scope, o Observer[T])
}

func newStream[T any](subscribe func(sc *scope, o Observer[T])) *Stream[T] {
	return &Stream[T]{subscribe: subscribe}
}

// Named returns a copy of s whose subscriptions are named name in logs,
// metrics, and traces unless WithName overrides it.
func (s *Stream[T]) Named(name string) *Stream[T] {
	return &Stream[T]{name: name, subscribe: s.subscribe}
}

// Name returns the stream name, or "stream" if none was set.
func (s *Stream[T]) Name() string {
	if s.name == "" {
		return "stream"
	}
	return s.name
}
