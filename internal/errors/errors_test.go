package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/telemy/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	errFactory := errors.New()

	assert.Equal(t, "Invalid interval value", errFactory.New(errors.ErrInvalidInterval).Error())
	assert.Equal(t, "custom", errFactory.WithMessage(errors.ErrInternal, "custom").Error())
	assert.Equal(t, "Invalid log level: loud", errFactory.WithData(errors.ErrInvalidLogLevel, "loud").Error())
	assert.Equal(t, "unknown_code", errFactory.New(errors.ErrorCode("unknown_code")).Error())
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := errors.New().Wrap(errors.ErrOperationFailed, cause)

	assert.Equal(t, "Operation failed: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, errors.ErrOperationFailed, err.Code())
}

func TestHasCode(t *testing.T) {
	errFactory := errors.New()
	inner := errFactory.New(errors.ErrTimeout)
	outer := errFactory.Wrap(errors.ErrOperationFailed, fmt.Errorf("context: %w", inner))

	assert.True(t, errors.HasCode(outer, errors.ErrOperationFailed))
	assert.True(t, errors.HasCode(outer, errors.ErrTimeout))
	assert.False(t, errors.HasCode(outer, errors.ErrInternal))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrInternal))
	assert.False(t, errors.HasCode(nil, errors.ErrInternal))
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("starting: %w", errors.New().New(errors.ErrAlreadyRunning))

	assert.Equal(t, errors.ErrAlreadyRunning, errors.CodeOf(err))
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(fmt.Errorf("plain")))
}

func TestRegisterMessages(t *testing.T) {
	code := errors.ErrorCode("test_registered")
	errors.RegisterMessages(map[errors.ErrorCode]string{code: "Registered message"})

	assert.Equal(t, "Registered message", errors.New().New(code).Error())
}

func TestWithDataCopies(t *testing.T) {
	base := errors.New().New(errors.ErrInvalidInterval)
	withData := base.WithData("0s")

	assert.Equal(t, "Invalid interval value", base.Error())
	assert.Equal(t, "Invalid interval value: 0s", withData.Error())
	assert.Equal(t, errors.ErrInvalidInterval, withData.Code())
}
