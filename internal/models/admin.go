package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin is a principal allowed to manage slots, bookings and settings.
type Admin struct {
	ID           string    `db:"id" json:"id" bson:"_id"`
	Username     string    `db:"username" json:"username" bson:"username"`
	PasswordHash string    `db:"password_hash" json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt" bson:"createdAt"`
}

// AdminInfo is the public view of an admin.
type AdminInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AdminClaims is the JWT payload of an admin access token. The registered ID (jti)
// is the revocation key.
type AdminClaims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
