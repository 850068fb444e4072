package history

import (
	"context"
	"database/sql"
	"fmt"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
)

// SchemaVersion is stored in sqlite's user_version pragma.
const SchemaVersion = 1

const (
	createSamplesSQL = `
	CREATE TABLE samples (
	    id            INTEGER PRIMARY KEY AUTOINCREMENT,
	    timestamp     INTEGER NOT NULL,
	    health        REAL NOT NULL CHECK (health BETWEEN 0 AND 1),
	    connected     INTEGER NOT NULL CHECK (connected IN (0, 1)),
	    streaming     INTEGER NOT NULL CHECK (streaming IN (0, 1)),
	    cpu_percent   REAL NOT NULL,
	    mem_percent   REAL NOT NULL,
	    gpu_percent   REAL,
	    gpu_temp_c    REAL,
	    upload_mbps   REAL NOT NULL CHECK (upload_mbps >= 0),
	    download_mbps REAL NOT NULL CHECK (download_mbps >= 0),
	    latency_ms    REAL NOT NULL CHECK (latency_ms >= 0),
	    outputs       INTEGER NOT NULL
	)`

	insertSampleSQL = `
	INSERT INTO samples (
	    timestamp, health, connected, streaming,
	    cpu_percent, mem_percent, gpu_percent, gpu_temp_c,
	    upload_mbps, download_mbps, latency_ms, outputs
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// keeps the newest rows; ids only grow
	pruneSamplesSQL = `
	DELETE FROM samples
	WHERE id NOT IN (SELECT id FROM samples ORDER BY id DESC LIMIT ?)`

	recentSamplesSQL = `
	SELECT timestamp, health, connected, streaming,
	       cpu_percent, mem_percent, gpu_percent, gpu_temp_c,
	       upload_mbps, download_mbps, latency_ms, outputs
	FROM (SELECT * FROM samples ORDER BY id DESC LIMIT ?)
	ORDER BY id ASC`
)

// migrate brings db to SchemaVersion. The window is rebuilt from scratch
// rather than migrated, so any other version drops the samples.
func migrate(ctx context.Context, db *sql.DB, log logger.Logger) error {
	version, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if version == SchemaVersion {
		return nil
	}

	err = withTx(ctx, db, log, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS samples"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, createSamplesSQL); err != nil {
			return err
		}
		// pragmas do not take bind parameters
		_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion))
		return err
	})
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	log.Debug().
		Int("from", version).
		Int("to", SchemaVersion).
		Msg("History schema created")

	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, errors.New().Wrap(ErrSchemaValidationFailed, err)
	}

	return version, nil
}

// withTx runs fn in a transaction, committing when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, log logger.Logger, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error().Err(err).Msg("Failed to roll back transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	return nil
}
