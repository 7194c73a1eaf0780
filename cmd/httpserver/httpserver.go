// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/fundrepo"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/rolerepo"
	"github.com/go-petr/pet-ledger/internal/sessiondelivery"
	"github.com/go-petr/pet-ledger/internal/sessionrepo"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/internal/userdelivery"
	"github.com/go-petr/pet-ledger/internal/userrepo"
	"github.com/go-petr/pet-ledger/internal/userservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	roleRepo := rolerepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	fundRepo := fundrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo, roleRepo)
	accountService := accountservice.New(accountRepo, fundRepo, userRepo)
	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)

	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.GET("/users/me", userHandler.Me)

	authRoutes.POST("/accounts",
		middleware.RequirePermission(roleRepo, "accounts_create", "accounts_all"),
		accountHandler.Create)
	authRoutes.GET("/accounts/:id",
		middleware.RequirePermission(roleRepo, "accounts_read", "accounts_all"),
		accountHandler.Get)
	authRoutes.GET("/accounts",
		middleware.RequirePermission(roleRepo, "accounts_index", "accounts_all"),
		accountHandler.List)
	authRoutes.POST("/accounts/balance",
		middleware.RequirePermission(roleRepo, "accounts_read", "accounts_all"),
		accountHandler.Balance)

	authRoutes.POST("/incoming-funds",
		middleware.RequirePermission(roleRepo, "incoming_funds_create", "incoming_funds_all"),
		accountHandler.AddFund)
	authRoutes.GET("/incoming-funds/:id",
		middleware.RequirePermission(roleRepo, "incoming_funds_read", "incoming_funds_all"),
		accountHandler.GetFund)
	authRoutes.POST("/settlements/:fund_id",
		middleware.RequirePermission(roleRepo, "incoming_funds_update", "incoming_funds_all"),
		accountHandler.Settle)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
