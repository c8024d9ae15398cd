package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberTakenError(t *testing.T) {
	t.Parallel()

	t.Run("matches the sentinel", func(t *testing.T) {
		t.Parallel()

		err := &NumberTakenError{Numbers: []int{7, 13}}
		assert.ErrorIs(t, err, ErrNumberTaken)
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("failed to create tickets: %w", &NumberTakenError{Numbers: []int{42}})
		assert.ErrorIs(t, wrapped, ErrNumberTaken)

		var taken *NumberTakenError
		assert.True(t, errors.As(wrapped, &taken))
		assert.Equal(t, []int{42}, taken.Numbers)
	})

	t.Run("message lists numbers in order", func(t *testing.T) {
		t.Parallel()

		err := &NumberTakenError{Numbers: []int{99, 3, 41}}
		assert.Equal(t, "ticket numbers already taken: 3, 41, 99", err.Error())
	})

	t.Run("empty numbers fall back to the sentinel message", func(t *testing.T) {
		t.Parallel()

		err := &NumberTakenError{}
		assert.Equal(t, ErrNumberTaken.Error(), err.Error())
	})
}

func TestPaymentNotCreditedWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: %w", ErrPaymentNotCredited, ErrNoActiveRound)

	assert.ErrorIs(t, err, ErrPaymentNotCredited)
	assert.ErrorIs(t, err, ErrNoActiveRound)
}
