package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents JWT claims issued by the auth provider
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
