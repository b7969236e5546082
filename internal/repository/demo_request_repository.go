package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-portal/internal/domain"
)

// DemoRequestRepository persists demo requests. Records are never updated.
type DemoRequestRepository interface {
	Create(ctx context.Context, req *domain.DemoRequest) error
	// List returns every request, newest first.
	List(ctx context.Context) ([]domain.DemoRequest, error)
}

type demoRequestRepository struct {
	pool *pgxpool.Pool
}

// NewDemoRequestRepository instantiates repository.
func NewDemoRequestRepository(pool *pgxpool.Pool) DemoRequestRepository {
	return &demoRequestRepository{pool: pool}
}

func (r *demoRequestRepository) Create(ctx context.Context, req *domain.DemoRequest) error {
	const query = `
        INSERT INTO demo_requests (id, name, email, company, phone, company_size, primary_interest,
            current_challenges, preferred_time, status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.Name,
		req.Email,
		req.Company,
		req.Phone,
		req.CompanySize,
		req.PrimaryInterest,
		req.CurrentChallenges,
		req.PreferredTime,
		req.Status,
		req.CreatedAt,
	)
	return translatePgError(err)
}

func (r *demoRequestRepository) List(ctx context.Context) ([]domain.DemoRequest, error) {
	const query = `
        SELECT id, name, email, company, phone, company_size, primary_interest,
               current_challenges, preferred_time, status, created_at
        FROM demo_requests ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDemoRequests(rows)
}

func scanDemoRequests(rows pgx.Rows) ([]domain.DemoRequest, error) {
	result := []domain.DemoRequest{}
	for rows.Next() {
		var req domain.DemoRequest
		if err := rows.Scan(
			&req.ID,
			&req.Name,
			&req.Email,
			&req.Company,
			&req.Phone,
			&req.CompanySize,
			&req.PrimaryInterest,
			&req.CurrentChallenges,
			&req.PreferredTime,
			&req.Status,
			&req.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
