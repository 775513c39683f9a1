package reportrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
)

// PostgresRepository implements report.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save inserts a report row.
func (r *PostgresRepository) Save(ctx context.Context, rep report.Report) error {
	var answers []byte
	if rep.Answers != nil {
		data, err := json.Marshal(rep.Answers)
		if err != nil {
			return err
		}
		answers = data
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO analysis_reports (id, user_id, kind, period, risk_level, status, answers, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rep.ID, rep.UserID, string(rep.Kind), rep.Period, rep.RiskLevel, string(rep.Status), answers, []byte(rep.Payload), rep.CreatedAt)
	return err
}

// ListByUser returns the newest reports for a user.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, kind analytics.Kind, limit int) ([]report.Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, kind, period, risk_level, status, answers, payload, created_at
		FROM analysis_reports
		WHERE user_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (report.Report, error) {
	var (
		rep     report.Report
		kind    string
		status  string
		answers []byte
		payload []byte
	)
	if err := row.Scan(&rep.ID, &rep.UserID, &kind, &rep.Period, &rep.RiskLevel, &status, &answers, &payload, &rep.CreatedAt); err != nil {
		return report.Report{}, err
	}
	rep.Kind = analytics.Kind(kind)
	rep.Status = analytics.Status(status)
	rep.Payload = json.RawMessage(payload)
	if len(answers) > 0 {
		var a analytics.Answers
		if err := json.Unmarshal(answers, &a); err != nil {
			return report.Report{}, err
		}
		rep.Answers = &a
	}
	return rep, nil
}

var _ report.Repository = (*PostgresRepository)(nil)
