package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"account-gateway/pkg/platform/sentinel"
)

// PostgresStore persists profile records in PostgreSQL. This store is pure
// I/O; reclaim/compensation decisions belong in the registration service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema creates the profiles table. Exposed so integration tests and dev
// bootstrapping share one definition.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	identity_id TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	firstname TEXT NOT NULL DEFAULT '',
	surname TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	school TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	business_name TEXT NOT NULL DEFAULT '',
	business_category TEXT NOT NULL DEFAULT '',
	profile_pic TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	order_number INTEGER NOT NULL DEFAULT 0,
	total_orders INTEGER NOT NULL DEFAULT 0,
	debt BIGINT NOT NULL DEFAULT 0,
	balance BIGINT NOT NULL DEFAULT 0,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS profiles_identity_id_idx ON profiles (identity_id);
`

func (s *PostgresStore) Add(ctx context.Context, rec *Record) (*Record, error) {
	query := `
		INSERT INTO profiles (
			id, identity_id, email, role,
			firstname, surname, phone, school, address,
			business_name, business_category, profile_pic, status,
			order_number, total_orders, debt, balance, email_verified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING joined_at
	`
	stored := *rec
	stored.ID = uuid.NewString()
	err := s.db.QueryRowContext(ctx, query,
		stored.ID,
		stored.IdentityID,
		stored.Email,
		string(stored.Role),
		stored.Firstname,
		stored.Surname,
		stored.Phone,
		stored.School,
		stored.Address,
		stored.BusinessName,
		stored.BusinessCategory,
		stored.ProfilePic,
		stored.Status,
		stored.OrderNumber,
		stored.TotalOrders,
		stored.Debt,
		stored.Balance,
		stored.EmailVerified,
	).Scan(&stored.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("add profile: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) FindByIdentity(ctx context.Context, identityID string) ([]*Record, error) {
	query := `
		SELECT id, identity_id, email, role,
		       firstname, surname, phone, school, address,
		       business_name, business_category, profile_pic, status,
		       order_number, total_orders, debt, balance, email_verified, joined_at
		FROM profiles
		WHERE identity_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, identityID)
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var role string
		err := rows.Scan(
			&rec.ID, &rec.IdentityID, &rec.Email, &role,
			&rec.Firstname, &rec.Surname, &rec.Phone, &rec.School, &rec.Address,
			&rec.BusinessName, &rec.BusinessCategory, &rec.ProfilePic, &rec.Status,
			&rec.OrderNumber, &rec.TotalOrders, &rec.Debt, &rec.Balance, &rec.EmailVerified, &rec.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		rec.Role = Role(role)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
