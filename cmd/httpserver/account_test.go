//go:build integration

package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/go-petr/pet-ledger/internal/integrationtest/helpers"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// doJSON sends an authorized JSON request to the server and decodes the
// response into res. The data pointer inside res must be set by the caller.
func doJSON(t *testing.T, server http.Handler, setupAuth func(r *http.Request), method, url string, reqBody, res any) int {
	t.Helper()

	var body bytes.Buffer

	if reqBody != nil {
		if err := json.NewEncoder(&body).Encode(reqBody); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	if setupAuth != nil {
		setupAuth(req)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if err := json.NewDecoder(w.Body).Decode(res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return w.Code
}

func TestLedgerFlowAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	tokenMaker, err := tokenpkg.NewPasetoMaker(server.Config.TokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(server.Config.TokenSymmetricKey) returned error: %v", err)
	}

	user := helpers.SeedUser(t, server.DB)

	setupAuth := func(r *http.Request) {
		middleware.AddAuthorization(t, r, tokenMaker,
			middleware.AuthTypeBearer, user.ID, server.Config.AccessTokenDuration)
	}

	// Open an account.
	accountRes := web.Response{
		Data: &struct {
			Account domain.Account `json:"account"`
		}{},
	}

	code := doJSON(t, server, setupAuth, http.MethodPost, "/accounts", nil, &accountRes)
	if code != http.StatusOK {
		t.Fatalf("POST /accounts status code: got %v, want %v (error: %v)",
			code, http.StatusOK, accountRes.Error)
	}

	account := accountRes.Data.(*struct {
		Account domain.Account `json:"account"`
	}).Account

	if account.Balance != "0.00" || account.ProjectedBalance != "0.00" {
		t.Fatalf("account.Balance = %v, account.ProjectedBalance = %v, want both 0.00",
			account.Balance, account.ProjectedBalance)
	}

	// Record an incoming fund due on March 8th.
	addFundBody := struct {
		AccountID      int64  `json:"account_id"`
		Amount         string `json:"amount"`
		SettlementDate string `json:"settlement_date"`
	}{
		AccountID:      account.ID,
		Amount:         "150.00",
		SettlementDate: "2022-03-08T10:00:00Z",
	}

	fundRes := web.Response{
		Data: &struct {
			Fund    domain.IncomingFund `json:"fund"`
			Account domain.Account      `json:"account"`
		}{},
	}

	code = doJSON(t, server, setupAuth, http.MethodPost, "/incoming-funds", addFundBody, &fundRes)
	if code != http.StatusOK {
		t.Fatalf("POST /incoming-funds status code: got %v, want %v (error: %v)",
			code, http.StatusOK, fundRes.Error)
	}

	fundData := fundRes.Data.(*struct {
		Fund    domain.IncomingFund `json:"fund"`
		Account domain.Account      `json:"account"`
	})

	if fundData.Account.ProjectedBalance != "150.00" {
		t.Errorf("fundData.Account.ProjectedBalance = %v, want 150.00", fundData.Account.ProjectedBalance)
	}

	if fundData.Account.Balance != "0.00" {
		t.Errorf("fundData.Account.Balance = %v, want 0.00", fundData.Account.Balance)
	}

	// The pending fund can be read back while it awaits settlement.
	getFundRes := web.Response{
		Data: &struct {
			Fund domain.IncomingFund `json:"fund"`
		}{},
	}

	code = doJSON(t, server, setupAuth, http.MethodGet,
		fmt.Sprintf("/incoming-funds/%d", fundData.Fund.ID), nil, &getFundRes)
	if code != http.StatusOK {
		t.Fatalf("GET /incoming-funds/%d status code: got %v, want %v (error: %v)",
			fundData.Fund.ID, code, http.StatusOK, getFundRes.Error)
	}

	gotFund := getFundRes.Data.(*struct {
		Fund domain.IncomingFund `json:"fund"`
	}).Fund

	if gotFund.Amount != "150.00" || gotFund.AccountID != account.ID {
		t.Errorf("gotFund = %+v, want amount 150.00 on account %v", gotFund, account.ID)
	}

	// Before settlement the stored balance is returned verbatim.
	balanceBody := struct {
		AccountID int64  `json:"account_id"`
		AsOf      string `json:"datetime,omitempty"`
	}{AccountID: account.ID}

	balanceRes := web.Response{
		Data: &struct {
			AccountID int64  `json:"account_id"`
			Balance   string `json:"balance"`
		}{},
	}

	code = doJSON(t, server, setupAuth, http.MethodPost, "/accounts/balance", balanceBody, &balanceRes)
	if code != http.StatusOK {
		t.Fatalf("POST /accounts/balance status code: got %v, want %v (error: %v)",
			code, http.StatusOK, balanceRes.Error)
	}

	gotBalance := balanceRes.Data.(*struct {
		AccountID int64  `json:"account_id"`
		Balance   string `json:"balance"`
	}).Balance

	if gotBalance != "0.00" {
		t.Errorf("balance = %v, want 0.00", gotBalance)
	}

	// Projected to a date past the settlement date the fund counts in full.
	balanceBody.AsOf = "2022-04-01T00:00:00Z"
	balanceRes = web.Response{
		Data: &struct {
			AccountID int64  `json:"account_id"`
			Balance   string `json:"balance"`
		}{},
	}

	code = doJSON(t, server, setupAuth, http.MethodPost, "/accounts/balance", balanceBody, &balanceRes)
	if code != http.StatusOK {
		t.Fatalf("POST /accounts/balance status code: got %v, want %v (error: %v)",
			code, http.StatusOK, balanceRes.Error)
	}

	gotBalance = balanceRes.Data.(*struct {
		AccountID int64  `json:"account_id"`
		Balance   string `json:"balance"`
	}).Balance

	if gotBalance != "150.00" {
		t.Errorf("projected balance = %v, want 150.00", gotBalance)
	}

	// Settle the fund.
	settleURL := fmt.Sprintf("/settlements/%d", fundData.Fund.ID)
	settleRes := web.Response{
		Data: &struct {
			Message string         `json:"message"`
			Account domain.Account `json:"account"`
		}{},
	}

	code = doJSON(t, server, setupAuth, http.MethodPost, settleURL, nil, &settleRes)
	if code != http.StatusOK {
		t.Fatalf("POST %v status code: got %v, want %v (error: %v)",
			settleURL, code, http.StatusOK, settleRes.Error)
	}

	settled := settleRes.Data.(*struct {
		Message string         `json:"message"`
		Account domain.Account `json:"account"`
	})

	if settled.Account.Balance != "150.00" {
		t.Errorf("settled.Account.Balance = %v, want 150.00", settled.Account.Balance)
	}

	// A settlement retry must not credit the account twice.
	retryRes := web.Response{}

	code = doJSON(t, server, setupAuth, http.MethodPost, settleURL, nil, &retryRes)
	if code != http.StatusNotFound {
		t.Errorf("POST %v retry status code: got %v, want %v", settleURL, code, http.StatusNotFound)
	}

	if retryRes.Error != domain.ErrFundNotFound.Error() {
		t.Errorf("retryRes.Error = %q, want %q", retryRes.Error, domain.ErrFundNotFound.Error())
	}

	// The stored balance now reflects the settlement.
	getRes := web.Response{
		Data: &struct {
			Account domain.Account `json:"account"`
		}{},
	}

	getURL := fmt.Sprintf("/accounts/%d", account.ID)

	code = doJSON(t, server, setupAuth, http.MethodGet, getURL, nil, &getRes)
	if code != http.StatusOK {
		t.Fatalf("GET %v status code: got %v, want %v (error: %v)",
			getURL, code, http.StatusOK, getRes.Error)
	}

	updated := getRes.Data.(*struct {
		Account domain.Account `json:"account"`
	}).Account

	if updated.Balance != "150.00" {
		t.Errorf("updated.Balance = %v, want 150.00", updated.Balance)
	}
}

func TestAccountsRequireAuthAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	req, err := http.NewRequest(http.MethodPost, "/accounts", nil)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Status code: got %v, want %v", w.Code, http.StatusUnauthorized)
	}

	res := web.Response{}

	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Errorf("Decoding response body error: %v", err)
	}

	if res.Error != "authorization header is not provided" {
		t.Errorf(`res.Error=%q, want "authorization header is not provided"`, res.Error)
	}
}
