package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/rs/zerolog"
)

// PermissionResolver resolves the permission slugs of a user.
//
//go:generate mockgen -source permissions.go -destination permissions_mock.go -package middleware
type PermissionResolver interface {
	ListUserPermissionSlugs(ctx context.Context, userID int64) ([]string, error)
}

// RequirePermission allows the request through when the authenticated
// user holds at least one of the given permission slugs. It must run
// after AuthMiddleware; the wrapped handlers receive no permission data.
func RequirePermission(resolver PermissionResolver, slugs ...string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		payload := gctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload)

		granted, err := resolver.ListUserPermissionSlugs(gctx.Request.Context(), payload.UserID)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		for _, want := range slugs {
			for _, have := range granted {
				if want == have {
					gctx.Next()
					return
				}
			}
		}

		l.Warn().Int64("user_id", payload.UserID).Strs("required", slugs).Msg("access denied")
		gctx.AbortWithStatusJSON(http.StatusForbidden, web.Error(domain.ErrAccessDenied))
	}
}
