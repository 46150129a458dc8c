package ports

import (
	"time"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// Session is the signed-in viewer for one request. It is built once by the
// dashboard service and passed explicitly to everything that needs it.
type Session struct {
	User domain.User
	// Now is the request time used for the clock widget and timestamps.
	Now time.Time
}

// Role returns the viewer's role.
func (s Session) Role() domain.Role { return s.User.Role }

// UserID returns the viewer's profile id.
func (s Session) UserID() string { return s.User.ID }
