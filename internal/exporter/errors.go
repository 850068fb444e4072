package exporter

import "codeberg.org/mutker/telemy/internal/errors"

const (
	ErrInvalidPushURL = errors.ErrorCode("exporter_invalid_push_url")
	ErrPushFailed     = errors.ErrorCode("exporter_push_failed")
)
