package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are JWT claims for a logged-in user
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Profile holds the editable user profile fields
type Profile struct {
	Name      string `json:"name"`
	Company   string `json:"company"`
	Position  string `json:"position"`
	Phone     string `json:"phone"`
	Industry  string `json:"industry"`
	Employees string `json:"employees"`
}

// User is a registered account. Passwords are stored as entered.
type User struct {
	Email               string    `json:"email"`
	Password            string    `json:"password"`
	ConsentPersonalData bool      `json:"consentPersonalData"`
	ConsentMarketing    bool      `json:"consentMarketing"`
	RegisteredAt        time.Time `json:"registeredAt"`
	LastLoginAt         time.Time `json:"lastLoginAt"`
	Profile             Profile   `json:"profile"`
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Email               string  `json:"email"`
	Password            string  `json:"password"`
	ConsentPersonalData bool    `json:"consentPersonalData"`
	ConsentMarketing    bool    `json:"consentMarketing"`
	Profile             Profile `json:"profile"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login or registration
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}
