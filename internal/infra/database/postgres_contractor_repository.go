package database

import (
	"context"
	"database/sql"
	"fmt"

	"contractor_engagement_bot/internal/domain/contractor"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var ErrContractorNotFound = fmt.Errorf("contractor not found")

type PostgresContractorRepository struct {
	db *sql.DB
}

func NewPostgresContractorRepository(db *sql.DB) *PostgresContractorRepository {
	return &PostgresContractorRepository{db: db}
}

const contractorColumns = `id, chat_id, first_name, last_name, is_admin, created_at, updated_at`

func scanContractor(row *sql.Row) (*contractor.Profile, error) {
	p := &contractor.Profile{}
	err := row.Scan(&p.ID, &p.ChatID, &p.FirstName, &p.LastName, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrContractorNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresContractorRepository) GetByID(ctx context.Context, id int64) (*contractor.Profile, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE id = $1`
	p, err := scanContractor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == ErrContractorNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("error getting contractor by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresContractorRepository) GetByChatID(ctx context.Context, chatID int64) (*contractor.Profile, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE chat_id = $1`
	p, err := scanContractor(r.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if err == ErrContractorNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("error getting contractor by chat ID: %w", err)
	}
	return p, nil
}

func (r *PostgresContractorRepository) ListWithChatID(ctx context.Context) ([]*contractor.Profile, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE chat_id IS NOT NULL ORDER BY first_name, last_name`
	return r.list(ctx, query)
}

func (r *PostgresContractorRepository) ListAll(ctx context.Context) ([]*contractor.Profile, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors ORDER BY id`
	return r.list(ctx, query)
}

func (r *PostgresContractorRepository) list(ctx context.Context, query string) ([]*contractor.Profile, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing contractors: %w", err)
	}
	defer rows.Close()

	profiles := make([]*contractor.Profile, 0)
	for rows.Next() {
		p := &contractor.Profile{}
		if err := rows.Scan(&p.ID, &p.ChatID, &p.FirstName, &p.LastName, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning contractor: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contractors: %w", err)
	}
	return profiles, nil
}
