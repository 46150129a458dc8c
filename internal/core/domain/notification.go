package domain

import "time"

// NotificationTypeOffer tags notifications produced by offer decisions.
const NotificationTypeOffer = "offer"

// Notification is a message shown in a user's bell panel.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Navigable reports whether the notification link points somewhere.
func (n Notification) Navigable() bool {
	switch n.Link {
	case "", "#", "undefined":
		return false
	}
	return true
}
