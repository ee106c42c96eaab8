package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
)

// SaveReport stores r, assigning an ID and creation time when they are
// unset.
func (s *SQLiteStorage) SaveReport(ctx context.Context, r *model.StoredReport) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStoredReport(r); err != nil {
		return err
	}

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	snapshotJSON, err := json.Marshal(r.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	reportJSON, err := json.Marshal(r.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, kind, question, provider, health_score, net_balance, snapshot_json, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, string(r.Kind), r.Question, string(r.Provider), r.HealthScore,
		r.NetBalance.String(), string(snapshotJSON), string(reportJSON), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// GetReport returns the report with the given ID.
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*model.StoredReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, question, provider, health_score, net_balance, snapshot_json, report_json, created_at
		FROM reports
		WHERE id = ?
	`, id)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r, nil
}

// ListReports returns up to limit reports, newest first.
func (s *SQLiteStorage) ListReports(ctx context.Context, limit int) ([]model.StoredReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, question, provider, health_score, net_balance, snapshot_json, report_json, created_at
		FROM reports
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []model.StoredReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

// DeleteReport removes the report with the given ID.
func (s *SQLiteStorage) DeleteReport(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("report %s: %w", id, common.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*model.StoredReport, error) {
	var (
		r            model.StoredReport
		kind         string
		provider     string
		netBalance   string
		snapshotJSON string
		reportJSON   string
	)

	if err := row.Scan(&r.ID, &kind, &r.Question, &provider, &r.HealthScore,
		&netBalance, &snapshotJSON, &reportJSON, &r.CreatedAt); err != nil {
		return nil, err
	}

	r.Kind = model.ReportKind(kind)
	r.Provider = model.ProviderName(provider)

	balance, err := decimal.NewFromString(netBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid net balance %q: %w", netBalance, err)
	}
	r.NetBalance = balance

	if err := json.Unmarshal([]byte(snapshotJSON), &r.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &r.Report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	return &r, nil
}
