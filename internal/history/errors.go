package history

import "codeberg.org/mutker/telemy/internal/errors"

const (
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrInvalidCapacity = errors.ErrorCode("history_invalid_capacity")

	ErrSchemaInitFailed       = errors.ErrorCode("history_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("history_schema_validation_failed")
	ErrTransactionFailed      = errors.ErrorCode("history_transaction_failed")

	ErrStorageInit   = errors.ErrorCode("history_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("history_storage_access_failed")
	ErrStorageClose  = errors.ErrShutdownFailed

	ErrOperationTimeout = errors.ErrTimeout
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrInvalidCapacity:        "History capacity out of range",
		ErrSchemaInitFailed:       "Failed to create history schema",
		ErrSchemaValidationFailed: "Failed to read history schema version",
		ErrTransactionFailed:      "Failed to record history sample",
		ErrStorageInit:            "Failed to open history store",
		ErrStorageAccess:          "Failed to read history",
	})
}
