package errors

// Codes shared across packages. Package-specific codes live in each
// package's errors.go.
const (
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// configuration
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// process lifecycle
	ErrAlreadyRunning ErrorCode = "already_running"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrMainLoop       ErrorCode = "main_loop_failed"
	ErrServeFailed    ErrorCode = "serve_failed"

	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read configuration",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidLogLevel: "Invalid log level",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrShutdownFailed:  "Shutdown failed",
	ErrMainLoop:        "Sampling stopped unexpectedly",
	ErrServeFailed:     "Failed to serve",
	ErrOperationFailed: "Operation failed",
	ErrTimeout:         "Operation timed out",
}

// RegisterMessages adds human readable messages for package-specific codes.
// It is meant to be called from package init functions.
func RegisterMessages(msgs map[ErrorCode]string) {
	for code, msg := range msgs {
		errorMessages[code] = msg
	}
}

// GetErrorMessage returns the message for a given error code, or the code
// itself when none is registered.
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
