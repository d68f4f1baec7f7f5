package api

import (
	"context"

	"github.com/chiaview/site-backend/services"
)

type keyType string

const adminKey keyType = "admin"

// ctxWithAdmin adds the authenticated admin to the context
func ctxWithAdmin(ctx context.Context, admin *services.Admin) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// ctxGetAdmin returns the admin stored by requireAdmin, or nil.
func ctxGetAdmin(ctx context.Context) *services.Admin {
	admin, _ := ctx.Value(adminKey).(*services.Admin)
	return admin
}
