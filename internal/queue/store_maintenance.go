package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls items stranded in a processing status back to the
// last durable checkpoint. A stranded item means a previous run died mid-stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	var total int64
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for _, transition := range processingRollbackTransitions() {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE ledger_items
             SET status = ?, error_message = NULL, progress_stage = NULL,
                 progress_message = NULL, updated_at = ?
             WHERE status = ?`,
			transition.to,
			timestamp,
			transition.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// RetryFailed returns failed items to pending so the next run picks them up.
// When id is zero every failed item is retried.
func (s *Store) RetryFailed(ctx context.Context, id int64) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	query := `UPDATE ledger_items
              SET status = ?, error_message = NULL, progress_stage = NULL,
                  progress_message = NULL, updated_at = ?
              WHERE status = ?`
	args := []any{StatusPending, timestamp, StatusFailed}
	if id > 0 {
		query += ` AND id = ?`
		args = append(args, id)
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	return res.RowsAffected()
}

// Summary reports aggregate counts for CLI status output.
func (s *Store) Summary(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM ledger_items GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("summarize ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			statusStr string
			count     int
		)
		if err := rows.Scan(&statusStr, &count); err != nil {
			return summary, err
		}
		summary.Total += count
		switch status := Status(statusStr); {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusCompleted:
			summary.Completed += count
		case IsProcessingStatus(status):
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}
