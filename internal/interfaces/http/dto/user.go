package dto

import (
	"time"

	"github.com/sonirghv/Gemini-backend/internal/domain"
)

type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name,omitempty"`
	IsActive   bool       `json:"is_active"`
	IsAdmin    bool       `json:"is_admin"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

func NewUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID.String(),
		Email:      user.Email,
		Username:   user.Username,
		FullName:   user.FullName,
		IsActive:   user.IsActive,
		IsAdmin:    user.IsAdmin,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
		LastLogin:  user.LastLogin,
	}
}

type LoginResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
}
