package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/jwalitptl/clinic-api/pkg/logger"
)

// ErrOpen is returned without calling fn while the breaker is open
var ErrOpen = gobreaker.ErrOpenState

type Settings struct {
	Name string
	// TripAfter consecutive failures open the breaker
	TripAfter uint32
	Interval  time.Duration
	Timeout   time.Duration
}

// CircuitBreaker guards calls to one flaky dependency
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(settings Settings, log *logger.Logger) *CircuitBreaker {
	if settings.TripAfter == 0 {
		settings.TripAfter = 5
	}
	if settings.Interval <= 0 {
		settings.Interval = 10 * time.Second
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &CircuitBreaker{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        settings.Name,
			MaxRequests: 1,
			Interval:    settings.Interval,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.TripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (c *CircuitBreaker) Execute(fn func() error) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// State is one of "closed", "half-open" or "open"
func (c *CircuitBreaker) State() string {
	return c.cb.State().String()
}
