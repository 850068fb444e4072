package history

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"codeberg.org/mutker/telemy/internal/telemetry"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	cfg    Config
}

func NewRepository(ctx context.Context, cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := migrate(ctx, db, log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	log.Info().
		Int("schema_version", SchemaVersion).
		Int("capacity", cfg.Capacity).
		Msg("History repository initialized")

	return &repository{
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// Record inserts snap and prunes everything beyond the capacity in one
// transaction.
func (r *repository) Record(ctx context.Context, snap telemetry.Snapshot) error {
	row := []any{
		snap.Timestamp,
		snap.Health,
		boolToInt(snap.Connection.State == telemetry.Connected),
		boolToInt(snap.Connection.StreamingActive),
		snap.System.CPUPercent,
		snap.System.MemPercent,
		nullable(snap.System.GPUPercent),
		nullable(snap.System.GPUTempC),
		snap.Network.UploadMbps,
		snap.Network.DownloadMbps,
		snap.Network.LatencyMs,
		len(snap.Outputs),
	}

	err := withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertSampleSQL, row...); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, pruneSamplesSQL, r.cfg.Capacity)
		return err
	})
	if err != nil {
		return errors.New().Wrap(ErrTransactionFailed, err)
	}

	return nil
}

// Recent returns up to limit points, oldest first. A non-positive limit
// means the whole window.
func (r *repository) Recent(ctx context.Context, limit int) ([]Point, error) {
	errFactory := errors.New()

	if limit <= 0 || limit > r.cfg.Capacity {
		limit = r.cfg.Capacity
	}

	rows, err := r.db.QueryContext(ctx, recentSamplesSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	points := make([]Point, 0, limit)
	for rows.Next() {
		var (
			p                    Point
			connected, streaming int64
			gpuPercent, gpuTemp  sql.NullFloat64
		)
		if err := rows.Scan(
			&p.Timestamp, &p.Health, &connected, &streaming,
			&p.CPUPercent, &p.MemPercent, &gpuPercent, &gpuTemp,
			&p.UploadMbps, &p.DownloadMbps, &p.LatencyMs, &p.Outputs,
		); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}

		p.Connected = connected == 1
		p.Streaming = streaming == 1
		if gpuPercent.Valid {
			p.GPUPercent = &gpuPercent.Float64
		}
		if gpuTemp.Valid {
			p.GPUTempC = &gpuTemp.Float64
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return points, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM samples").Scan(&n); err != nil {
		return 0, errors.New().Wrap(ErrStorageAccess, err)
	}
	return n, nil
}

func (r *repository) Close() error {
	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	r.logger.Debug().Msg("History repository closed")

	return nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
