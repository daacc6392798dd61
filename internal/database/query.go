package database

import (
	"database/sql"
	"time"
)

const recordColumns = `
	SELECT id, timestamp, action, pattern, source, destination,
	       dry_run, recursive, success,
	       files_scanned, files_matched, files_affected,
	       bytes_processed, duration_ms,
	       message, error_message
	FROM operations
`

// GetRecentOperations returns the N most recent operations
func (d *HistoryDB) GetRecentOperations(limit int) ([]OperationRecord, error) {
	query := recordColumns + `
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	return d.queryOperations(query, limit)
}

// GetOperationsByAction returns operations filtered by action type
func (d *HistoryDB) GetOperationsByAction(action string) ([]OperationRecord, error) {
	query := recordColumns + `
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return d.queryOperations(query, action)
}

// GetOperationsBySource returns operations matching a source path pattern
func (d *HistoryDB) GetOperationsBySource(pathPattern string) ([]OperationRecord, error) {
	query := recordColumns + `
	WHERE source LIKE ?
	ORDER BY timestamp DESC
	`

	return d.queryOperations(query, pathPattern)
}

// GetFailedOperations returns the N most recent failed operations
func (d *HistoryDB) GetFailedOperations(limit int) ([]OperationRecord, error) {
	query := recordColumns + `
	WHERE success = 0
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return d.queryOperations(query, limit)
}

// GetOperationsByDateRange returns operations within a time range
func (d *HistoryDB) GetOperationsByDateRange(start, end time.Time) ([]OperationRecord, error) {
	query := recordColumns + `
	WHERE timestamp BETWEEN ? AND ?
	ORDER BY timestamp DESC
	`

	return d.queryOperations(query, start, end)
}

// GetOperationCountByAction returns count of operations grouped by action
func (d *HistoryDB) GetOperationCountByAction() (map[string]int, error) {
	query := `
	SELECT action, COUNT(*)
	FROM operations
	GROUP BY action
	`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// OperationStats holds aggregated statistics
type OperationStats struct {
	TotalOperations     int
	TotalSucceeded      int
	TotalFailed         int
	TotalDryRuns        int
	TotalFilesAffected  int64
	TotalBytesProcessed int64
	ByAction            map[string]int
	StartDate           time.Time
	EndDate             time.Time
}

// GetOperationStats returns comprehensive statistics for a time period
func (d *HistoryDB) GetOperationStats(days int) (*OperationStats, error) {
	since := time.Now().AddDate(0, 0, -days)
	now := time.Now()

	stats := &OperationStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN success = 1 THEN 1 END),
			COUNT(CASE WHEN success = 0 THEN 1 END),
			COUNT(CASE WHEN dry_run = 1 THEN 1 END),
			COALESCE(SUM(CASE WHEN dry_run = 0 THEN files_affected ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN dry_run = 0 THEN bytes_processed ELSE 0 END), 0)
		FROM operations
		WHERE timestamp >= ?
	`, since).Scan(
		&stats.TotalOperations,
		&stats.TotalSucceeded,
		&stats.TotalFailed,
		&stats.TotalDryRuns,
		&stats.TotalFilesAffected,
		&stats.TotalBytesProcessed,
	)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = d.GetOperationCountByAction()
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// GetTopSourcesByOperationCount returns source paths with most operations
func (d *HistoryDB) GetTopSourcesByOperationCount(limit int) (map[string]int, error) {
	query := `
	SELECT source, COUNT(*) as count
	FROM operations
	GROUP BY source
	ORDER BY count DESC
	LIMIT ?
	`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		counts[source] = count
	}

	return counts, rows.Err()
}

// DeleteOldRecords removes records older than specified days
func (d *HistoryDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`
		DELETE FROM operations WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryOperations is a helper function to execute queries and scan results
func (d *HistoryDB) queryOperations(query string, args ...interface{}) ([]OperationRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OperationRecord
	for rows.Next() {
		var r OperationRecord
		var message, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Pattern, &r.Source, &r.Destination,
			&r.DryRun, &r.Recursive, &r.Success,
			&r.FilesScanned, &r.FilesMatched, &r.FilesAffected,
			&r.BytesProcessed, &r.DurationMS,
			&message, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		if message.Valid {
			r.Message = message.String
		}
		if errMsg.Valid {
			r.ErrorMessage = errMsg.String
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

// GetRecentOperationsPaginated returns paginated recent operations with total count
func (d *HistoryDB) GetRecentOperationsPaginated(limit, offset int) ([]OperationRecord, int, error) {
	var totalCount int
	err := d.db.QueryRow("SELECT COUNT(*) FROM operations").Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	query := recordColumns + `
	ORDER BY timestamp DESC
	LIMIT ? OFFSET ?
	`

	records, err := d.queryOperations(query, limit, offset)
	return records, totalCount, err
}

// GetOperationsByActionPaginated returns paginated operations by action
func (d *HistoryDB) GetOperationsByActionPaginated(action string, limit, offset int) ([]OperationRecord, int, error) {
	var totalCount int
	err := d.db.QueryRow("SELECT COUNT(*) FROM operations WHERE action = ?", action).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	query := recordColumns + `
	WHERE action = ?
	ORDER BY timestamp DESC
	LIMIT ? OFFSET ?
	`

	records, err := d.queryOperations(query, action, limit, offset)
	return records, totalCount, err
}
