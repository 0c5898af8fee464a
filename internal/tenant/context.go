// Package tenant carries the caller's identity and bound shop through a
// request context.
package tenant

import (
	"context"

	"pharmatrack/m/domain"
)

type ctxKey string

const (
	ctxIdentity ctxKey = "identity"
	ctxShopID   ctxKey = "shopID"
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID int64
	ShopID int64
	Role   domain.Role
}

func (i Identity) IsSuperAdmin() bool {
	return i.Role == domain.RoleSuperAdmin
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok
}

// WithShop binds shopID as the tenant for the rest of the request.
func WithShop(ctx context.Context, shopID int64) context.Context {
	return context.WithValue(ctx, ctxShopID, shopID)
}

func ShopID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxShopID).(int64)
	return id, ok && id > 0
}

// RequireShop returns the bound shop or a ValidationError when the request
// runs without one (a superadmin that did not pick a shop).
func RequireShop(ctx context.Context) (int64, error) {
	id, ok := ShopID(ctx)
	if !ok {
		return 0, &domain.ValidationError{Message: "shop context required"}
	}
	return id, nil
}

// UserID returns the caller's user id, or nil when unauthenticated.
func UserID(ctx context.Context) *int64 {
	id, ok := IdentityFrom(ctx)
	if !ok || id.UserID == 0 {
		return nil
	}
	uid := id.UserID
	return &uid
}

const ctxClientIP ctxKey = "clientIP"

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxClientIP, ip)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ctxClientIP).(string)
	return ip
}
