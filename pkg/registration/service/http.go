package service

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/peyroll/registrar/pkg/app/errors"
	apphttp "github.com/peyroll/registrar/pkg/app/http"
	"github.com/peyroll/registrar/pkg/auth"
	"github.com/peyroll/registrar/pkg/registration"
)

// TokenVerifier checks session bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.SessionClaims, error)
}

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	tokens  TokenVerifier
	logger  *zap.Logger
}

// RegisterRoutes registers the registration and company endpoints on r
func RegisterRoutes(r chi.Router, service Service, tokens TokenVerifier, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}

	r.Post("/registrations", apphttp.HandleError(h.start))
	r.Route("/registrations/{id}", func(r chi.Router) {
		r.Use(h.requireSession)
		r.Get("/", apphttp.HandleError(h.status))
		r.Delete("/", apphttp.HandleError(h.cancel))
		r.Post("/code", apphttp.HandleError(h.enterCode))
		r.Post("/resend", apphttp.HandleError(h.resend))
		r.Post("/retry", apphttp.HandleError(h.retry))
	})
	r.Get("/companies/{owner}", apphttp.HandleError(h.company))
}

func (h *HTTP) start(w http.ResponseWriter, r *http.Request) error {
	var req registration.StartRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	if req.Signature == "" {
		req.Signature = r.Header.Get("X-Signature")
		req.Message = r.Header.Get("X-Message")
	}
	if req.Signature == "" || req.Message == "" {
		return apperrors.UnAuthorizedError(nil, "signature and message required")
	}

	resp, err := h.service.Start(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) enterCode(w http.ResponseWriter, r *http.Request) error {
	var req registration.CodeRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	if req.Code == "" {
		return apperrors.BadRequestError(nil, "code is required")
	}
	id, _ := auth.SessionIDFromContext(r.Context())
	return h.respond(w, r, func() (*registration.StatusResponse, error) {
		return h.service.EnterCode(r.Context(), id, req.Code)
	})
}

func (h *HTTP) resend(w http.ResponseWriter, r *http.Request) error {
	id, _ := auth.SessionIDFromContext(r.Context())
	return h.respond(w, r, func() (*registration.StatusResponse, error) {
		return h.service.ResendCode(r.Context(), id)
	})
}

func (h *HTTP) retry(w http.ResponseWriter, r *http.Request) error {
	id, _ := auth.SessionIDFromContext(r.Context())
	return h.respond(w, r, func() (*registration.StatusResponse, error) {
		return h.service.Retry(r.Context(), id)
	})
}

func (h *HTTP) cancel(w http.ResponseWriter, r *http.Request) error {
	id, _ := auth.SessionIDFromContext(r.Context())
	return h.respond(w, r, func() (*registration.StatusResponse, error) {
		return h.service.Cancel(r.Context(), id)
	})
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	id, _ := auth.SessionIDFromContext(r.Context())
	return h.respond(w, r, func() (*registration.StatusResponse, error) {
		return h.service.Status(r.Context(), id)
	})
}

func (h *HTTP) company(w http.ResponseWriter, r *http.Request) error {
	raw := chi.URLParam(r, "owner")
	if !auth.ValidateEVMAddress(raw) {
		return apperrors.BadRequestError(nil, "invalid owner address")
	}
	info, err := h.service.Company(r.Context(), common.HexToAddress(raw))
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, info)
	return nil
}

func (h *HTTP) respond(w http.ResponseWriter, _ *http.Request, call func() (*registration.StatusResponse, error)) error {
	resp, err := call()
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

// requireSession admits requests whose bearer token was issued for the session in the path.
// The session id and requester from the token are placed on the request context.
func (h *HTTP) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			apphttp.DefaultErrorHandler(w, apperrors.BadRequestError(err, "invalid session id"))
			return
		}
		token, ok := apphttp.BearerToken(r)
		if !ok {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "session token required"))
			return
		}
		claims, err := h.tokens.Verify(token)
		if err != nil {
			h.logger.Debug("rejected session token", zap.Error(err))
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid session token"))
			return
		}
		sid, requester, err := claims.Session()
		if err != nil {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid session token"))
			return
		}
		if sid != id {
			apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(nil, "token does not grant access to this session"))
			return
		}

		ctx := auth.WithSessionID(r.Context(), id)
		ctx = auth.WithRequester(ctx, requester)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
