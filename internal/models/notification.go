package models

import "time"

// DeviceToken is a push-notification registration. The token itself is the
// primary key; re-registering overwrites the owner.
type DeviceToken struct {
	Token     string    `db:"token" json:"token"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      UserRole  `db:"role" json:"role"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NotificationMessage is the payload handed to the push dispatcher. Delivery
// is best-effort; failures never roll back the action that triggered them.
type NotificationMessage struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}
