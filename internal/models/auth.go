package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole distinguishes the three identities the API serves. The super admin
// is an environment-configured identity with no staffs row; it is represented
// as a role claim so authorization stays capability-based.
type UserRole string

const (
	RoleApplicant  UserRole = "applicant"
	RoleStaff      UserRole = "staff"
	RoleSuperAdmin UserRole = "super_admin"
)

// SuperAdminID is the pseudo identifier carried by super-admin tokens.
const SuperAdminID int64 = 0

// LoginRequest holds credentials for authenticating an applicant or staff.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued tokens and identity info.
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         UserInfo `json:"user"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserInfo describes the authenticated identity in responses.
type UserInfo struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access and refresh tokens.
type JWTClaims struct {
	UserID    int64    `json:"user_id"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}
