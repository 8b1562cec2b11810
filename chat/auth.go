package chat

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the sender is not the configured administrator.
var ErrUnauthorized = errors.New("unauthorized")

// Authorizer admits exactly one identity. An empty admin identity disables
// the check and admits everyone.
type Authorizer struct {
	admin string
}

func NewAuthorizer(admin string) Authorizer { return Authorizer{admin: admin} }

// Enabled reports whether an administrator identity is configured.
func (a Authorizer) Enabled() bool { return a.admin != "" }

// Allow returns nil when id may run gated commands.
func (a Authorizer) Allow(id string) error {
	if !a.Enabled() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(id), []byte(a.admin)) == 1 {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnauthorized, id)
}

// requiresAdmin reports whether the named command is gated.
func requiresAdmin(command string) bool {
	return command != "start" && command != "help"
}
