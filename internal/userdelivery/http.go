// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, name, email, password string) (domain.UserWithoutPassword, error)
	CheckPassword(ctx context.Context, email, password string) (domain.UserWithoutPassword, error)
	Get(ctx context.Context, id int64) (domain.UserWithoutPassword, error)
}

// SessionMaker facilitates session creation.
type SessionMaker interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service      Service
	sessionMaker SessionMaker
}

// NewHandler returns user handler.
func NewHandler(us Service, sm SessionMaker) *Handler {
	return &Handler{
		service:      us,
		sessionMaker: sm,
	}
}

type userData struct {
	User domain.UserWithoutPassword `json:"user,omitempty"`
}

type createRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.ValidationError(ve))
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	createdUser, err := h.service.Create(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrEmailAlreadyExists:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrRoleNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	arg := domain.CreateSessionParams{
		UserID:    createdUser.ID,
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		Data:                  userData{User: createdUser},
	}

	gctx.JSON(http.StatusOK, res)
}

// Me handles http request to get the authenticated user's profile.
func (h *Handler) Me(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	user, err := h.service.Get(ctx, authPayload.UserID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: userData{User: user}})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login handles http request to authenticate a user.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.ValidationError(ve))
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	user, err := h.service.CheckPassword(ctx, req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrWrongPassword:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	arg := domain.CreateSessionParams{
		UserID:    user.ID,
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		Data:                  userData{User: user},
	}

	gctx.JSON(http.StatusOK, res)
}
