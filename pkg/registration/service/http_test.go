package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/peyroll/registrar/pkg/app/errors"
	"github.com/peyroll/registrar/pkg/auth"
	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/otp"
	"github.com/peyroll/registrar/pkg/registration"
	"github.com/peyroll/registrar/pkg/registration/service/mocks"
)

var testRequester = common.HexToAddress("0x1111111111111111111111111111111111111111")

func newTestTokens(t *testing.T) *auth.SessionTokens {
	t.Helper()
	tokens, err := auth.NewSessionTokens([]byte("0123456789abcdef0123456789abcdef"), "test", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionTokens: %v", err)
	}
	return tokens
}

func newRegistrationTestServer(svc Service, tokens TokenVerifier) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, tokens, zap.NewNop())
	return r
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var got errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return got
}

func authed(t *testing.T, tokens *auth.SessionTokens, method, path string, id uuid.UUID, body string) *http.Request {
	t.Helper()
	token, _, err := tokens.Issue(id, testRequester)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestStartHTTP_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newRegistrationTestServer(svc, newTestTokens(t))

	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := decodeError(t, rec); got.Error != "invalid JSON" || got.Code != http.StatusBadRequest {
		t.Fatalf("unexpected error body %+v", got)
	}
}

func TestStartHTTP_MissingSignature_ReturnsUnauthorized(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newRegistrationTestServer(svc, newTestTokens(t))

	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewBufferString(`{"company_name":"Acme"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if got := decodeError(t, rec); got.Error != "signature and message required" {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestStartHTTP_HeadersFallback_Created(t *testing.T) {
	id := uuid.New()
	svc := mocks.NewService(t)
	svc.EXPECT().
		Start(mock.Anything, mock.MatchedBy(func(req *registration.StartRequest) bool {
			return req.Signature == "sig" && req.Message == "msg" && req.CompanyName == "Acme"
		})).
		Return(&registration.StartResponse{
			SessionID: id.String(),
			Token:     "tok",
			Status:    &registration.StatusResponse{SessionID: id.String(), State: registration.StateAwaitingOtp},
		}, nil)
	handler := newRegistrationTestServer(svc, newTestTokens(t))

	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewBufferString(`{"company_name":"Acme"}`))
	req.Header.Set("X-Signature", "sig")
	req.Header.Set("X-Message", "msg")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type %q, got %q", "application/json", ct)
	}
	var got registration.StartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.SessionID != id.String() || got.Status.State != registration.StateAwaitingOtp {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestSessionRoutes_RequireBearerToken(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newRegistrationTestServer(svc, newTestTokens(t))

	req := httptest.NewRequest(http.MethodGet, "/registrations/"+uuid.NewString()+"/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestSessionRoutes_TokenForOtherSession_Forbidden(t *testing.T) {
	tokens := newTestTokens(t)
	svc := mocks.NewService(t)
	handler := newRegistrationTestServer(svc, tokens)

	req := authed(t, tokens, http.MethodGet, "/registrations/"+uuid.NewString()+"/", uuid.New(), "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestEnterCodeHTTP_PassesSessionAndRequester(t *testing.T) {
	tokens := newTestTokens(t)
	id := uuid.New()
	svc := mocks.NewService(t)
	svc.EXPECT().
		EnterCode(mock.Anything, id, "123456").
		Run(func(ctx context.Context, _ uuid.UUID, _ string) {
			if got, ok := auth.RequesterFromContext(ctx); !ok || got != testRequester {
				t.Errorf("requester not on context: %v %v", got, ok)
			}
		}).
		Return(&registration.StatusResponse{SessionID: id.String(), State: registration.StateAwaitingConfirmation, TxHash: "0xabc"}, nil)
	handler := newRegistrationTestServer(svc, tokens)

	req := authed(t, tokens, http.MethodPost, "/registrations/"+id.String()+"/code", id, `{"code":"123456"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var got registration.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.State != registration.StateAwaitingConfirmation || got.TxHash != "0xabc" {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestEnterCodeHTTP_MissingCode(t *testing.T) {
	tokens := newTestTokens(t)
	id := uuid.New()
	svc := mocks.NewService(t)
	handler := newRegistrationTestServer(svc, tokens)

	req := authed(t, tokens, http.MethodPost, "/registrations/"+id.String()+"/code", id, `{}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestEnterCodeHTTP_LockedOut(t *testing.T) {
	tokens := newTestTokens(t)
	id := uuid.New()
	svc := mocks.NewService(t)
	svc.EXPECT().
		EnterCode(mock.Anything, id, "000000").
		Return(nil, toServiceError(otp.ErrLockedOut))
	handler := newRegistrationTestServer(svc, tokens)

	req := authed(t, tokens, http.MethodPost, "/registrations/"+id.String()+"/code", id, `{"code":"000000"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusLocked {
		t.Fatalf("expected status %d, got %d", http.StatusLocked, rec.Code)
	}
	if got := decodeError(t, rec); got.Error != registration.UserMessage(otp.ErrLockedOut) {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestSessionActionsHTTP(t *testing.T) {
	tokens := newTestTokens(t)
	id := uuid.New()
	resp := &registration.StatusResponse{SessionID: id.String(), State: registration.StateIdle}

	tests := []struct {
		name   string
		method string
		path   string
		expect func(svc *mocks.Service)
	}{
		{"status", http.MethodGet, "/", func(svc *mocks.Service) {
			svc.EXPECT().Status(mock.Anything, id).Return(resp, nil)
		}},
		{"cancel", http.MethodDelete, "/", func(svc *mocks.Service) {
			svc.EXPECT().Cancel(mock.Anything, id).Return(resp, nil)
		}},
		{"resend", http.MethodPost, "/resend", func(svc *mocks.Service) {
			svc.EXPECT().ResendCode(mock.Anything, id).Return(resp, nil)
		}},
		{"retry", http.MethodPost, "/retry", func(svc *mocks.Service) {
			svc.EXPECT().Retry(mock.Anything, id).Return(resp, nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewService(t)
			tt.expect(svc)
			handler := newRegistrationTestServer(svc, tokens)

			req := authed(t, tokens, tt.method, "/registrations/"+id.String()+tt.path, id, "")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRetryHTTP_InvalidState_Conflict(t *testing.T) {
	tokens := newTestTokens(t)
	id := uuid.New()
	svc := mocks.NewService(t)
	svc.EXPECT().Retry(mock.Anything, id).Return(nil, toServiceError(registration.ErrInvalidState))
	handler := newRegistrationTestServer(svc, tokens)

	req := authed(t, tokens, http.MethodPost, "/registrations/"+id.String()+"/retry", id, "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestCompanyHTTP(t *testing.T) {
	owner := common.HexToAddress("0x3333333333333333333333333333333333333333")

	t.Run("invalid address", func(t *testing.T) {
		svc := mocks.NewService(t)
		handler := newRegistrationTestServer(svc, newTestTokens(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/not-an-address", nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		svc := mocks.NewService(t)
		svc.EXPECT().Company(mock.Anything, owner).Return(&company.Info{Owner: owner, CompanyName: "Acme"}, nil)
		handler := newRegistrationTestServer(svc, newTestTokens(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/"+owner.Hex(), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var got company.Info
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode response JSON: %v", err)
		}
		if got.CompanyName != "Acme" || got.Owner != owner {
			t.Fatalf("unexpected company %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := mocks.NewService(t)
		svc.EXPECT().Company(mock.Anything, owner).Return(nil, apperrors.ResourceNotFoundError(ErrCompanyNotFound, "company not registered"))
		handler := newRegistrationTestServer(svc, newTestTokens(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/"+owner.Hex(), nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}
