package model

import "github.com/golang-jwt/jwt/v5"

// ConsultantClaims are the JWT claims for an authenticated consultant.
type ConsultantClaims struct {
	ConsultantID string `json:"consultantId"`
	jwt.RegisteredClaims
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the consultant token back to the client.
type LoginResponse struct {
	Token        string `json:"token"`
	ConsultantID string `json:"consultantId"`
}
