package chat

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, log *RequestLog) error {
	query := `INSERT INTO ai_request_logs (session_key, input_tokens, output_tokens, request_cost) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		log.SessionKey, log.InputTokens, log.OutputTokens, log.RequestCost,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *PostgresRepo) Totals(ctx context.Context) (*UsageTotals, error) {
	var t UsageTotals
	query := `SELECT COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(request_cost), 0) FROM ai_request_logs`
	err := r.db.QueryRowContext(ctx, query).Scan(&t.Requests, &t.InputTokens, &t.OutputTokens, &t.TotalCost)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepo) ListRecent(ctx context.Context, limit int) ([]RequestLog, error) {
	query := `SELECT id, session_key, input_tokens, output_tokens, request_cost, created_at FROM ai_request_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []RequestLog
	for rows.Next() {
		var l RequestLog
		if err := rows.Scan(&l.ID, &l.SessionKey, &l.InputTokens, &l.OutputTokens, &l.RequestCost, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
