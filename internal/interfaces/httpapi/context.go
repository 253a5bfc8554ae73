package httpapi

import (
	"context"

	"github.com/riskibarqy/tournament-engine/internal/domain/actor"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p actor.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (actor.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(actor.Principal)
	return p, ok
}
