package userdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/golang/mock/gomock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func randomUser() (domain.UserWithoutPassword, string) {
	password := randompkg.String(10)

	user := domain.UserWithoutPassword{
		ID:        randompkg.Intn(1000) + 1,
		Name:      randompkg.Name(),
		Email:     randompkg.Email(),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}

	return user, password
}

func TestCreate(t *testing.T) {
	user, password := randomUser()

	session := domain.Session{
		UserID:       user.ID,
		RefreshToken: randompkg.String(10),
		ExpiresAt:    time.Now().Add(time.Hour),
	}

	type requestBody struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService, sessionMaker *MockSessionMaker)
		wantStatusCode int
		wantError      string
		checkResponse  func(res web.Response)
	}{
		{
			name: "OK",
			requestBody: requestBody{
				Name:            user.Name,
				Email:           user.Email,
				Password:        password,
				PasswordConfirm: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Name), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(user, nil)
				sessionMaker.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateSessionParams{})).
					Times(1).
					Return("access", time.Now().Add(time.Minute), session, nil)
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(res web.Response) {
				if res.AccessToken == "" {
					t.Error(`res.AccessToken = "", want non empty`)
				}

				if res.RefreshToken != session.RefreshToken {
					t.Errorf("res.RefreshToken = %v, want %v", res.RefreshToken, session.RefreshToken)
				}

				got, ok := res.Data.(*struct {
					User domain.UserWithoutPassword `json:"user"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, res.Data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(user, got.User, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "InvalidEmail",
			requestBody: requestBody{
				Name:            user.Name,
				Email:           "not-an-email",
				Password:        password,
				PasswordConfirm: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request",
		},
		{
			name: "ShortPassword",
			requestBody: requestBody{
				Name:            user.Name,
				Email:           user.Email,
				Password:        "123",
				PasswordConfirm: "123",
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request",
		},
		{
			name: "PasswordConfirmMismatch",
			requestBody: requestBody{
				Name:            user.Name,
				Email:           user.Email,
				Password:        password,
				PasswordConfirm: password + "x",
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request",
		},
		{
			name: "ErrEmailAlreadyExists",
			requestBody: requestBody{
				Name:            user.Name,
				Email:           user.Email,
				Password:        password,
				PasswordConfirm: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Name), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrEmailAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrEmailAlreadyExists.Error(),
		},
		{
			name: "SessionError",
			requestBody: requestBody{
				Name:            user.Name,
				Email:           user.Email,
				Password:        password,
				PasswordConfirm: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Name), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(user, nil)
				sessionMaker.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateSessionParams{})).
					Times(1).
					Return("", time.Time{}, domain.Session{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
		{
			name: "InternalError",
			requestBody: requestBody{
				Name:            user.Name,
				Email:           user.Email,
				Password:        password,
				PasswordConfirm: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Name), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(domain.UserWithoutPassword{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			service := NewMockService(ctrl)
			sessionMaker := NewMockSessionMaker(ctrl)
			handler := NewHandler(service, sessionMaker)

			server := gin.New()
			server.POST("/users", handler.Create)

			tc.buildStubs(service, sessionMaker)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					User domain.UserWithoutPassword `json:"user"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkResponse(res)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	user, password := randomUser()

	session := domain.Session{
		UserID:       user.ID,
		RefreshToken: randompkg.String(10),
		ExpiresAt:    time.Now().Add(time.Hour),
	}

	type requestBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService, sessionMaker *MockSessionMaker)
		wantStatusCode int
		wantError      string
		checkResponse  func(res web.Response)
	}{
		{
			name: "OK",
			requestBody: requestBody{
				Email:    user.Email,
				Password: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(user, nil)
				sessionMaker.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateSessionParams{})).
					Times(1).
					Return("access", time.Now().Add(time.Minute), session, nil)
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(res web.Response) {
				if res.AccessToken == "" {
					t.Error(`res.AccessToken = "", want non empty`)
				}

				got, ok := res.Data.(*struct {
					User domain.UserWithoutPassword `json:"user"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, res.Data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(user, got.User, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "MissingEmail",
			requestBody: requestBody{
				Password: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					CheckPassword(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request",
		},
		{
			name: "ErrUserNotFound",
			requestBody: requestBody{
				Email:    user.Email,
				Password: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrUserNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrUserNotFound.Error(),
		},
		{
			name: "ErrWrongPassword",
			requestBody: requestBody{
				Email:    user.Email,
				Password: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrWrongPassword)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrWrongPassword.Error(),
		},
		{
			name: "SessionError",
			requestBody: requestBody{
				Email:    user.Email,
				Password: password,
			},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(password)).
					Times(1).
					Return(user, nil)
				sessionMaker.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateSessionParams{})).
					Times(1).
					Return("", time.Time{}, domain.Session{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			service := NewMockService(ctrl)
			sessionMaker := NewMockSessionMaker(ctrl)
			handler := NewHandler(service, sessionMaker)

			server := gin.New()
			server.POST("/users/login", handler.Login)

			tc.buildStubs(service, sessionMaker)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					User domain.UserWithoutPassword `json:"user"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkResponse(res)
			}
		})
	}
}

func TestMe(t *testing.T) {
	user, _ := randomUser()

	testCases := []struct {
		name           string
		setupAuth      func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		checkResponse  func(res web.Response)
	}{
		{
			name: "OK",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, r, tokenMaker, middleware.AuthTypeBearer, user.ID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(res web.Response) {
				got, ok := res.Data.(*struct {
					User domain.UserWithoutPassword `json:"user"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, res.Data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(user, got.User, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:      "NoAuthorization",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "authorization header is not provided",
		},
		{
			name: "ErrUserNotFound",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, r, tokenMaker, middleware.AuthTypeBearer, user.ID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrUserNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrUserNotFound.Error(),
		},
		{
			name: "InternalError",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, r, tokenMaker, middleware.AuthTypeBearer, user.ID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(domain.UserWithoutPassword{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			service := NewMockService(ctrl)
			sessionMaker := NewMockSessionMaker(ctrl)
			handler := NewHandler(service, sessionMaker)

			tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
			if err != nil {
				t.Fatalf("tokenpkg.NewPasetoMaker(randompkg.String(32)) returned error: %v", err)
			}

			server := gin.New()
			server.GET("/users/me", middleware.AuthMiddleware(tokenMaker), handler.Me)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, "/users/me", nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			tc.setupAuth(t, req, tokenMaker)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					User domain.UserWithoutPassword `json:"user"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkResponse(res)
			}
		})
	}
}
