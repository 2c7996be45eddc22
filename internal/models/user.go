package models

import "time"

// Actor is the authenticated identity attached to API requests. The portal
// stores its token in a 30-day cookie; the server side keeps the token in
// the session store and resolves it to an Actor per request.
type Actor struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CanModerate reports whether the actor may approve, reject, cancel or
// delete bookings.
func (a Actor) CanModerate() bool {
	return ApproverRoles[a.Role]
}

// Session binds a bearer token to an actor.
type Session struct {
	Token     string    `json:"token"`
	Actor     Actor     `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}
