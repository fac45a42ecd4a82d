package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT claims issued at login.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}
