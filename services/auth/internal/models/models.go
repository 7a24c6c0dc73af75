package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

// SelfRegisterRoles are the roles an anonymous caller may register as.
// Admin accounts are provisioned out of band.
var SelfRegisterRoles = []string{RoleEmployee, RoleCustomer}

type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null"     json:"name"`
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName string     `gorm:"not null"             json:"firstName"`
	LastName  string     `gorm:"not null"             json:"lastName"`
	RoleID    uint       `gorm:"not null;index"       json:"-"`
	Role      Role       `json:"-"`
	DOB       *time.Time `json:"dob,omitempty"`
	Gender    *string    `json:"gender,omitempty"`
	IsActive  bool       `gorm:"default:true"         json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Credential holds everything a user can log in with. Exactly one row
// per user; email is globally unique, username and phone are unique
// when set.
type Credential struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Email        string     `gorm:"uniqueIndex;not null"     json:"email"`
	Username     *string    `gorm:"uniqueIndex"              json:"username,omitempty"`
	PhoneNumber  *string    `gorm:"uniqueIndex"              json:"phoneNumber,omitempty"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	OTPCode      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	IsVerified   bool       `gorm:"default:false"            json:"isVerified"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// RefreshToken stores an issued refresh token (sha256 hex of the JWT).
// Usable only while revoked=false and expires_at is in the future.
// Multiple live rows per user support multi-device sessions.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Token     string    `gorm:"uniqueIndex;not null"     json:"-"`
	ExpiresAt time.Time `gorm:"not null"                 json:"expiresAt"`
	Revoked   bool      `gorm:"default:false"            json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlacklistedToken records an access token revoked by logout. The row
// mirrors the token's own expiry so housekeeping can drop it once the
// token would have died anyway.
type BlacklistedToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"     json:"-"`
	ExpiresAt time.Time `gorm:"not null"                 json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
