package auth

import "time"

// Config drives token validation. Tokens are issued by the account service
// that owns user records; this module only verifies them.
type Config struct {
	Secret string
}

// Claims are extracted from the JWT token.
type Claims struct {
	UserID    int64
	Email     string
	TokenType string
	ExpiresAt time.Time
}
