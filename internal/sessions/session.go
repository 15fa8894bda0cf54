// Package sessions holds server-side per-client authentication state. The
// client only ever sees a signed token wrapping an opaque session ID; the
// identity and role live in the server-side store, so a client cannot alter
// its own role without invalidating the signature.
package sessions

import "github.com/classgate/classgate/internal/models"

// Session is the authenticated state bound to one client. Identity and Role
// are always set together; an empty Session means anonymous.
type Session struct {
	Identity string      `json:"identity"`
	Role     models.Role `json:"role"`
}
