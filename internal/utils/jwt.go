package utils // package utils provides helpers for token creation and secret hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// StaffClaims identifies the staff member behind a request and the hotel
// they act for.  Every allocation call is scoped to HotelID.
type StaffClaims struct {
	StaffID uint64
	HotelID uint64
	Role    string
}

// NewAccessToken builds and signs an HS256 JWT for a staff member.  The
// token carries sub (staff id), role, hotel_id, exp and iat.
func NewAccessToken(secret string, c StaffClaims, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(c.StaffID, 10),
		"role":     c.Role,
		"hotel_id": c.HotelID,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// RefreshToken is an opaque session token.  Raw goes to the client once;
// only HashRefreshRaw(Raw) is stored.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// NewRefreshToken returns a random 32-byte token valid for ttl.
func NewRefreshToken(ttl time.Duration) (RefreshToken, error) {
	raw, err := RandomHex(32)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: raw, Exp: time.Now().UTC().Add(ttl)}, nil
}

// HashRefreshRaw is the lookup key of a refresh token.  Refresh tokens are
// high-entropy, so a fast hash is enough.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
