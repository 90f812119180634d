package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Checkers(t *testing.T) {
	cause := errors.New("i/o timeout")
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "store unavailable", err: StoreUnavailable("params:a", cause), check: IsStoreUnavailable},
		{name: "malformed coefficients", err: MalformedCoefficients("params:a", cause), check: IsMalformedCoefficients},
		{name: "invalid feature", err: InvalidFeatureValue("price", "x"), check: IsInvalidFeatureValue},
		{name: "missing coefficient", err: MissingCoefficient("range"), check: IsMissingCoefficient},
		{name: "empty list", err: ErrEmptyCandidateList, check: IsEmptyCandidateList},
		{name: "malformed input", err: MalformedCandidateInput(cause), check: IsMalformedCandidateInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)), "wrapped errors are recognized")
			assert.True(t, IsDomainError(tt.err))
			assert.False(t, IsStoreNotFound(tt.err))
		})
	}
	assert.False(t, IsStoreUnavailable(nil))
	assert.False(t, IsDomainError(cause))
}

func TestDomainError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreUnavailable("params:bob", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `store: lookup "params:bob" failed: connection refused`, err.Error())
	assert.Equal(t, `model: missing coefficient "seat_count"`, MissingCoefficient("seat_count").Error())
}

func TestErrStoreNotFound(t *testing.T) {
	assert.True(t, IsStoreNotFound(ErrStoreNotFound))
	assert.True(t, IsStoreNotFound(fmt.Errorf("get: %w", ErrStoreNotFound)))
	assert.True(t, IsNotFound(ErrStoreNotFound))
	assert.ErrorIs(t, &DomainError{Module: ModuleStore, Code: ErrorCodeNotFound, Message: "other text"}, ErrStoreNotFound)
	assert.False(t, IsStoreNotFound(errors.New("store: key not found")))
}
