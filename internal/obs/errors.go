package obs

import "codeberg.org/mutker/telemy/internal/errors"

const (
	// Connection Errors
	ErrUnreachable = errors.ErrorCode("obs_unreachable")
	ErrAuthFailed  = errors.ErrorCode("obs_auth_failed")
	ErrHandshake   = errors.ErrorCode("obs_handshake_failed")

	// Request Errors
	ErrRequestFailed = errors.ErrorCode("obs_request_failed")
	ErrProtocol      = errors.ErrorCode("obs_protocol_error")
	ErrClosed        = errors.ErrorCode("obs_session_closed")
)

// IsAuthFailure reports whether err means the server rejected our credentials.
func IsAuthFailure(err error) bool {
	return errors.HasCode(err, ErrAuthFailed)
}
