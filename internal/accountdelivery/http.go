// Package accountdelivery manages delivery layer of accounts, incoming
// funds and settlements.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, ownerID int64) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	List(ctx context.Context, ownerID int64, pageSize, pageID int32) ([]domain.Account, error)
	Balance(ctx context.Context, accountID int64, asOf *time.Time) (string, error)
	AddFund(ctx context.Context, accountID int64, amount string, settlementDate time.Time) (domain.FundTxResult, error)
	GetFund(ctx context.Context, id int64) (domain.IncomingFund, error)
	Settle(ctx context.Context, fundID int64) (domain.SettlementTxResult, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to create an account for the
// authenticated user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	createdAccount, err := h.service.Create(ctx, authPayload.UserID)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound, domain.ErrOwnerNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case errorspkg.ErrConflict:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{createdAccount}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get an account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		handleBindError(gctx, err)
		return
	}

	acc, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)
	if acc.OwnerID != authPayload.UserID {
		l.Warn().Int64("account_id", acc.ID).Send()
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrAccountOwnerMismatch))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list the authenticated user's accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		handleBindError(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	accounts, err := h.service.List(ctx, authPayload.UserID, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}

type balanceRequest struct {
	AccountID int64  `json:"account_id" binding:"required,min=1"`
	AsOf      string `json:"datetime" binding:"omitempty"`
}

type balanceData struct {
	AccountID int64  `json:"account_id"`
	Balance   string `json:"balance"`
}

type balanceResponse struct {
	Data balanceData `json:"data,omitempty"`
}

// Balance handles http request to get the current or projected balance.
// Without a datetime the stored balance is returned verbatim; with one,
// every fund settling at or before it is added.
func (h *Handler) Balance(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req balanceRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		handleBindError(gctx, err)
		return
	}

	var asOf *time.Time

	if req.AsOf != "" {
		t, err := time.Parse(time.RFC3339, req.AsOf)
		if err != nil {
			l.Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		asOf = &t
	}

	balance, err := h.service.Balance(ctx, req.AccountID, asOf)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, balanceResponse{
		Data: balanceData{AccountID: req.AccountID, Balance: balance},
	})
}

type addFundRequest struct {
	AccountID      int64  `json:"account_id" binding:"required,min=1"`
	Amount         string `json:"amount" binding:"required"`
	SettlementDate string `json:"settlement_date" binding:"required"`
}

type fundData struct {
	Fund    domain.IncomingFund `json:"fund"`
	Account domain.Account      `json:"account"`
}

type fundResponse struct {
	Data fundData `json:"data,omitempty"`
}

// AddFund handles http request to record an incoming fund.
func (h *Handler) AddFund(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req addFundRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		handleBindError(gctx, err)
		return
	}

	settlementDate, err := time.Parse(time.RFC3339, req.SettlementDate)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	result, err := h.service.AddFund(ctx, req.AccountID, req.Amount, settlementDate)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInvalidAmount:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case errorspkg.ErrConflict:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, fundResponse{
		Data: fundData{Fund: result.Fund, Account: result.Account},
	})
}

type getFundRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type getFundData struct {
	Fund domain.IncomingFund `json:"fund"`
}

type getFundResponse struct {
	Data getFundData `json:"data,omitempty"`
}

// GetFund handles http request to get a pending incoming fund.
func (h *Handler) GetFund(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getFundRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		handleBindError(gctx, err)
		return
	}

	fund, err := h.service.GetFund(ctx, req.ID)
	if err != nil {
		if err == domain.ErrFundNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	acc, err := h.service.Get(ctx, fund.AccountID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)
	if acc.OwnerID != authPayload.UserID {
		l.Warn().Int64("fund_id", fund.ID).Send()
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrAccountOwnerMismatch))

		return
	}

	gctx.JSON(http.StatusOK, getFundResponse{Data: getFundData{fund}})
}

type settleRequest struct {
	FundID int64 `uri:"fund_id" binding:"required,min=1"`
}

type settleData struct {
	Message string         `json:"message"`
	Account domain.Account `json:"account"`
}

type settleResponse struct {
	Data settleData `json:"data,omitempty"`
}

// Settle handles http request to settle a pending fund.
func (h *Handler) Settle(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req settleRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		handleBindError(gctx, err)
		return
	}

	result, err := h.service.Settle(ctx, req.FundID)
	if err != nil {
		switch err {
		case domain.ErrFundNotFound, domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case errorspkg.ErrConflict:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, settleResponse{
		Data: settleData{Message: "settlement processed", Account: result.Account},
	})
}

func handleBindError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())
	l.Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.ValidationError(ve))
		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}
