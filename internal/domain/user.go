package domain

import "time"

// User is the principal every workout hangs off.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254;not null;default:''" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose this via JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken records a refresh token that was blacklisted on logout.
// Rows are useless once ExpiresAt has passed; stores may prune them.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64" bson:"_id" json:"jti"`
	UserID    uint      `gorm:"not null;index" bson:"userId" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" bson:"expiresAt" json:"expires_at"`
	RevokedAt time.Time `gorm:"not null" bson:"revokedAt" json:"revoked_at"`
}
