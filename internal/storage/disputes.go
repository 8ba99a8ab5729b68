package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/creditrag/internal/model"
)

// SaveDisputeRecord appends a dispute record and sets its ID.
func (s *SQLiteStorage) SaveDisputeRecord(ctx context.Context, record *model.DisputeRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDisputeRecord(record); err != nil {
		return err
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO dispute_records (
			account_status, payment_days, creditor_remark, dispute_type,
			dispute_letter_generated, dispute_letter, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.AccountStatus,
		nullInt(record.PaymentDays),
		nullString(record.CreditorRemark),
		string(record.DisputeType),
		record.DisputeLetterGenerated,
		record.DisputeLetter,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save dispute record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read dispute record id: %w", err)
	}
	record.ID = id
	return nil
}

// ListDisputeRecords returns the most recent records first. A non-positive
// limit returns everything.
func (s *SQLiteStorage) ListDisputeRecords(ctx context.Context, limit int) ([]model.DisputeRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, account_status, payment_days, creditor_remark, dispute_type,
			dispute_letter_generated, COALESCE(dispute_letter, ''), created_at
		FROM dispute_records
		ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispute records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.DisputeRecord
	for rows.Next() {
		var (
			rec      model.DisputeRecord
			days     sql.NullInt64
			remark   sql.NullString
			category string
		)
		if err := rows.Scan(&rec.ID, &rec.AccountStatus, &days, &remark, &category,
			&rec.DisputeLetterGenerated, &rec.DisputeLetter, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dispute record: %w", err)
		}
		rec.DisputeType = model.Category(category)
		if days.Valid {
			d := int(days.Int64)
			rec.PaymentDays = &d
		}
		if remark.Valid {
			r := remark.String
			rec.CreditorRemark = &r
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
