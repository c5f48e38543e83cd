package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles. There are exactly two: the
// coach (who knows the shared password) and everyone else. The role rides
// inside the token so every engine call receives an explicit capability
// instead of consulting ambient session state.
type UserRole string

const (
	RoleCoach  UserRole = "COACH"
	RoleViewer UserRole = "VIEWER"
)

// JWTClaims carries the actor identity through middleware into services.
type JWTClaims struct {
	Role UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IsCoach reports whether the claims grant privileged operations.
func (c *JWTClaims) IsCoach() bool {
	return c != nil && c.Role == RoleCoach
}

// LoginRequest is the shared-password exchange payload.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued coach token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Role        UserRole  `json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
