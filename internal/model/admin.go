package model

import "time"

// Role is the privilege level of an admin account.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AdminUser is an admin account as persisted in storage. It carries the
// password salt and hash, so it must never be serialized to clients; use
// Public for anything that leaves the process.
type AdminUser struct {
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	PasswordSalt string     `json:"password_salt"`
	PasswordHash string     `json:"password_hash"`
}

// IsSuperAdmin reports whether the account may manage other admins.
func (u AdminUser) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// Public returns the account stripped of its secret fields.
func (u AdminUser) Public() PublicUser {
	return PublicUser{
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// PublicUser is an admin account without salt or hash.
type PublicUser struct {
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// IsSuperAdmin reports whether the user may manage other admins.
func (u PublicUser) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// AdminSession is the single logged-in session kept in storage.
type AdminSession struct {
	User      PublicUser `json:"user"`
	Token     string     `json:"session_token"`
	CreatedAt time.Time  `json:"created_at"`
}

// ExpiresAt returns the instant the session stops being valid for the given
// session window.
func (s AdminSession) ExpiresAt(window time.Duration) time.Time {
	return s.CreatedAt.Add(window)
}
