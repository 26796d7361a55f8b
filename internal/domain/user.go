package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULID represents a Universally Unique Lexicographically Sortable Identifier
// @Description A string representation of ULID
// @type string
// @format ulid
type ULID = ulid.ULID

// User represents a user in the system
type User struct {
	ID         ulid.ULID  `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	Password   string     `json:"-"` // Password is not serialized to JSON
	FullName   string     `json:"full_name,omitempty"`
	IsActive   bool       `json:"is_active"`
	IsAdmin    bool       `json:"is_admin"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// NewUser creates a new user instance with default flags
func NewUser(email, username, hashedPassword, fullName string) *User {
	now := time.Now()
	return &User{
		ID:        ulid.Make(),
		Email:     email,
		Username:  username,
		Password:  hashedPassword,
		FullName:  fullName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Roles returns the role set used for token claims
func (u *User) Roles() []string {
	roles := []string{"user"}
	if u.IsAdmin {
		roles = append(roles, "admin")
	}
	return roles
}

// AdminStats aggregates the numbers shown on the admin dashboard
type AdminStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalChats       int64 `json:"total_chats"`
	TotalMessages    int64 `json:"total_messages"`
	ActiveUsersToday int64 `json:"active_users_today"`
	NewUsersThisWeek int64 `json:"new_users_this_week"`
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user in the database
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername checks if a user exists with the given username
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Update updates a user
	Update(ctx context.Context, user *User) error

	// UpdatePassword updates a user's password
	UpdatePassword(ctx context.Context, userID ulid.ULID, hashedPassword string) error

	// UpdateLastLogin stamps the user's last login time
	UpdateLastLogin(ctx context.Context, userID ulid.ULID, at time.Time) error

	// MarkVerified marks the user's email address as verified
	MarkVerified(ctx context.Context, email string) error

	// List lists users with pagination
	List(ctx context.Context, limit, offset int) ([]*User, error)

	// Count returns the total number of users
	Count(ctx context.Context) (int64, error)

	// CountActiveSince counts users whose last login is on or after the given time
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)

	// CountCreatedSince counts users created on or after the given time
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
