package handler

import (
	"sportscube-api/internal/store"
	"sportscube-api/pkg/jwtutil"
)

// Handler bundles the dependencies the endpoint handlers need. It is
// constructed once in main and registered on the echo instance.
type Handler struct {
	store *store.Store
	jwt   *jwtutil.JWTUtil
}

// New creates a Handler over the given store and token utility.
func New(s *store.Store, j *jwtutil.JWTUtil) *Handler {
	return &Handler{store: s, jwt: j}
}
