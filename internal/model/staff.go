package model

import "time"

// Staff is a front-desk account.  Every staff member belongs to exactly
// one hotel and acts only inside it.
//
// Fields:
//  ID           – primary key identifier.
//  HotelID      – hotel the account works for.
//  Email        – unique login, stored lower-case.
//  PasswordHash – bcrypt hash of the password.
//  Role         – STAFF or MANAGER.
//  IsActive     – disabled accounts cannot log in or refresh.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Staff struct {
	ID           uint64    // staff.id
	HotelID      uint64    // staff.hotel_id
	Email        string    // staff.email
	PasswordHash string    // staff.password_hash
	Role         string    // staff.role
	IsActive     bool      // staff.is_active
	CreatedAt    time.Time // staff.created_at
	UpdatedAt    time.Time // staff.updated_at
}

// RefreshToken is a long-lived login session.  Only the SHA-256 of the
// token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	StaffID   uint64     // refresh_tokens.staff_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
