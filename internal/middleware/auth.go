// Package middleware provides gin middleware shared by all delivery layers.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/stretchr/testify/require"
)

const (
	// AuthHeaderKey is the header carrying the bearer token.
	AuthHeaderKey = "authorization"
	// AuthTypeBearer is the only supported authorization type.
	AuthTypeBearer = "bearer"
	// AuthPayloadKey is the gin context key holding the verified token payload.
	AuthPayloadKey = "authorization_payload"
)

// AddAuthorization sets a valid authorization header on the request.
// Used by delivery tests across packages.
func AddAuthorization(
	t *testing.T,
	request *http.Request,
	tokenMaker tokenpkg.Maker,
	authType string,
	userID int64,
	duration time.Duration,
) {
	t.Helper()

	token, _, err := tokenMaker.CreateToken(userID, duration)
	require.NoError(t, err)

	request.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))
}

// AuthMiddleware verifies the bearer token and stores its payload in the
// gin context under AuthPayloadKey.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			err := errors.New("authorization header is not provided")
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			err := errors.New("invalid authorization header format")
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		authType := strings.ToLower(fields[0])
		if authType != AuthTypeBearer {
			err := fmt.Errorf("unsupported authorization type %s", authType)
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		accessToken := fields[1]

		payload, err := tokenMaker.VerifyToken(accessToken)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}
