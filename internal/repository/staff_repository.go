package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// StaffRepo reads and writes staff accounts.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo returns a StaffRepo bound to db.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

const staffColumns = `id, hotel_id, email, password_hash, role, is_active, created_at, updated_at`

func scanStaff(row interface{ Scan(...any) error }) (*model.Staff, error) {
	var s model.Staff
	if err := row.Scan(&s.ID, &s.HotelID, &s.Email, &s.PasswordHash, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts an account and sets its ID.  A taken email returns
// ErrDuplicate.
func (r *StaffRepo) Create(ctx context.Context, s *model.Staff) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	const q = `INSERT INTO staff (hotel_id, email, password_hash, role, is_active) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.HotelID, s.Email, s.PasswordHash, s.Role, s.IsActive)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByEmail fetches an account by normalised email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanStaff(r.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE email = ? LIMIT 1`, email))
}

// GetByID fetches an account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.Staff, error) {
	return scanStaff(r.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = ? LIMIT 1`, id))
}
