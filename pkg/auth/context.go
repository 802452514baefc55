package auth

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type contextKey string

const (
	// ContextKeyRequester is the context key for the authenticated requester address
	ContextKeyRequester contextKey = "requester"
	// ContextKeySessionID is the context key for the session bound to the bearer token
	ContextKeySessionID contextKey = "session_id"
)

// WithRequester adds the requester address to the context
func WithRequester(ctx context.Context, addr common.Address) context.Context {
	return context.WithValue(ctx, ContextKeyRequester, addr)
}

// RequesterFromContext retrieves the requester address from the context
func RequesterFromContext(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(ContextKeyRequester).(common.Address)
	return addr, ok
}

// WithSessionID adds the session id to the context
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, id)
}

// SessionIDFromContext retrieves the session id from the context
func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeySessionID).(uuid.UUID)
	return id, ok
}
