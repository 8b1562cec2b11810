package server

import (
	"github.com/onnwee/slot-tender/slots"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	store *slots.Store
}

// NewHandlers creates a new Handlers instance reading through store.
func NewHandlers(store *slots.Store) *Handlers {
	return &Handlers{store: store}
}
