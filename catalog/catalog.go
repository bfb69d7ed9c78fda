package catalog

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/stream"
)

// Example is one named pipeline.
type Example struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	build func(*Service) *stream.Stream[any]
}

// Catalog is an ordered registry of examples bound to a Service.
type Catalog struct {
	svc      *Service
	examples []Example
	index    map[string]int
}

// New creates a Catalog with every built-in example.
func New(svc *Service) *Catalog {
	c := &Catalog{svc: svc, index: make(map[string]int)}
	for _, ex := range builtins() {
		c.index[ex.Name] = len(c.examples)
		c.examples = append(c.examples, ex)
	}
	return c
}

// Examples returns all examples in registration order.
func (c *Catalog) Examples() []Example {
	return append([]Example(nil), c.examples...)
}

// Names returns the example names in registration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.examples))
	for i, ex := range c.examples {
		names[i] = ex.Name
	}
	return names
}

// Get looks up an example by name.
func (c *Catalog) Get(name string) (Example, bool) {
	i, ok := c.index[name]
	if !ok {
		return Example{}, false
	}
	return c.examples[i], true
}

// Stream builds a fresh pipeline for the named example. Unknown names
// return a NOT_FOUND error.
func (c *Catalog) Stream(name string) (*stream.Stream[any], error) {
	ex, ok := c.Get(name)
	if !ok {
		return nil, errors.NotFound("example", name)
	}
	return ex.build(c.svc).Named(ex.Name), nil
}

func erase[T any](s *stream.Stream[T]) *stream.Stream[any] {
	return stream.Cast[any](s)
}

// namePart returns the i-th space separated part of a full name.
func namePart(i int) func(context.Context, string) (string, error) {
	return func(_ context.Context, full string) (string, error) {
		parts := strings.Split(full, " ")
		if i >= len(parts) {
			return "", errors.InvalidArgument("name", fmt.Sprintf("%q has no part %d", full, i))
		}
		return parts[i], nil
	}
}

func sortedNameParts(svc *Service, i int) *stream.Stream[string] {
	return stream.Sort(stream.Map(svc.CrewStream(), namePart(i)), cmp.Compare[string])
}

func builtins() []Example {
	return []Example{
		{
			Name:        "just",
			Description: "a fixed list of criminals",
			build: func(*Service) *stream.Stream[any] {
				return erase(stream.Just(criminals...))
			},
		},
		{
			Name:        "iterable",
			Description: "the crew roster from a slice",
			build: func(svc *Service) *stream.Stream[any] {
				return erase(svc.CrewStream())
			},
		},
		{
			Name:        "transformations",
			Description: "crew first names, sorted",
			build: func(svc *Service) *stream.Stream[any] {
				return erase(sortedNameParts(svc, 0))
			},
		},
		{
			Name:        "zip",
			Description: "sorted last names zipped with sorted first names",
			build: func(svc *Service) *stream.Stream[any] {
				return erase(stream.Zip(sortedNameParts(svc, 1), sortedNameParts(svc, 0),
					func(last, first string) (string, error) { return last + " " + first, nil }))
			},
		},
		{
			Name:        "delay",
			Description: "the crew roster, one member per element delay",
			build: func(svc *Service) *stream.Stream[any] {
				return erase(svc.DelayedCrewStream())
			},
		},
		{
			Name:        "take",
			Description: "the first three crew members",
			build: func(svc *Service) *stream.Stream[any] {
				return erase(stream.Take(svc.CrewStream(), 3))
			},
		},
		{
			Name:        "concat",
			Description: "two single values concatenated",
			build: func(*Service) *stream.Stream[any] {
				return erase(stream.Concat(stream.Just("Malcolm"), stream.Just("Reynolds")))
			},
		},
		{
			Name:        "concat-with-delay",
			Description: "the second value is subscribed 500ms late",
			build: func(*Service) *stream.Stream[any] {
				return erase(stream.Concat(
					stream.Just("Malcolm"),
					stream.DelaySubscription(stream.Just("Reynolds"), 500*time.Millisecond),
				))
			},
		},
		{
			Name:        "first-emitting",
			Description: "late criminals race five delayed crew members",
			build: func(svc *Service) *stream.Stream[any] {
				return erase(stream.FirstEmitting(
					stream.DelaySubscription(stream.Just(criminals...), 500*time.Millisecond),
					stream.Take(svc.DelayedCrewStream(), 5),
				))
			},
		},
		{
			Name:        "error-resume",
			Description: "a failing cast falls back to the first five numbers",
			build: func(svc *Service) *stream.Stream[any] {
				names := make([]any, len(criminals))
				for i, c := range criminals {
					names[i] = c
				}
				return erase(stream.OnErrorResume(
					stream.Cast[int](stream.Just(names...)),
					stream.Take(svc.NumberStream(), 5),
				))
			},
		},
	}
}
