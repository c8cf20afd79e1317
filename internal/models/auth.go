package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a trainer.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and trainer info.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	Trainer     TrainerInfo `json:"trainer"`
	IssuedAt    time.Time   `json:"issued_at"`
}

// TrainerInfo describes the authenticated trainer in responses.
type TrainerInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	TrainerID string `json:"trainer_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	jwt.RegisteredClaims
}
