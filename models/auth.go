package models

import "time"

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// DashboardSession describes an issued dashboard token.
type DashboardSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
