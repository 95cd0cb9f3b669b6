package circuitbreaker

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", TripAfter: 2, Timeout: 20 * time.Millisecond}, nil)
	boom := stderrors.New("boom")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, "closed", cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, "open", cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	assert.Eventually(t, func() bool {
		return cb.Execute(func() error { return nil }) == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "closed", cb.State())
}
