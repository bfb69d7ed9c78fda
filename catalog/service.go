package catalog

import (
	"time"

	"github.com/kbukum/rxkit/stream"
)

// DefaultElementDelay is the spacing of DelayedCrewStream.
const DefaultElementDelay = 300 * time.Millisecond

var crew = []string{
	"Malcolm Reynolds", "Zoe Washburne", "Hoban Washburne", "Kaylee Frye",
	"Jayne Cobb", "Inara Serra", "River Tam", "Simon Tam", "Derrial Book",
}

var criminals = []string{"Badger", "Adelei Niska", "Saffron"}

// Crew returns a copy of the crew roster.
func Crew() []string { return append([]string(nil), crew...) }

// Criminals returns a copy of the criminals list.
func Criminals() []string { return append([]string(nil), criminals...) }

// Service serves the demo data as streams.
type Service struct {
	delay time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithElementDelay overrides the spacing of DelayedCrewStream.
func WithElementDelay(d time.Duration) ServiceOption {
	return func(s *Service) { s.delay = d }
}

// NewService creates a Service.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{delay: DefaultElementDelay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CrewStream emits the crew roster synchronously.
func (s *Service) CrewStream() *stream.Stream[string] {
	return stream.FromSlice(crew).Named("crew")
}

// DelayedCrewStream emits the crew roster one member per element delay.
func (s *Service) DelayedCrewStream() *stream.Stream[string] {
	return stream.FromSliceWithDelay(crew, s.delay).Named("crew-delayed")
}

// NumberStream emits 1 through 10.
func (s *Service) NumberStream() *stream.Stream[int] {
	return stream.Range(1, 10).Named("numbers")
}
