package service

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/peyroll/registrar/pkg/app/errors"
	"github.com/peyroll/registrar/pkg/auth"
	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/ledger"
	"github.com/peyroll/registrar/pkg/otp"
	"github.com/peyroll/registrar/pkg/registration"
	"github.com/peyroll/registrar/pkg/submission"
	"github.com/peyroll/registrar/pkg/wallet"
)

var (
	ErrSessionNotFound = errors.New("registration session not found")
	ErrNotSessionOwner = errors.New("registration session belongs to another requester")
	ErrCompanyNotFound = errors.New("company not registered")
)

// TokenIssuer issues the bearer token that authorizes follow-up calls on a session
type TokenIssuer interface {
	Issue(sessionID uuid.UUID, requester common.Address) (string, time.Time, error)
}

// CompanyReader reads registered companies from the factory
type CompanyReader interface {
	CompanyInfo(ctx context.Context, owner common.Address) (*company.Info, error)
}

// Service defines the registration API
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	Start(ctx context.Context, req *registration.StartRequest) (*registration.StartResponse, error)
	EnterCode(ctx context.Context, sessionID uuid.UUID, code string) (*registration.StatusResponse, error)
	ResendCode(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error)
	Retry(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error)
	Cancel(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error)
	Status(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error)
	Company(ctx context.Context, owner common.Address) (*company.Info, error)
}

type registrationService struct {
	sessions  *Sessions
	deps      registration.Deps
	cfg       registration.Config
	tokens    TokenIssuer
	companies CompanyReader
	logger    *zap.Logger
}

// NewService creates the registration service. deps.Logger is replaced per session.
func NewService(
	sessions *Sessions,
	deps registration.Deps,
	cfg registration.Config,
	tokens TokenIssuer,
	companies CompanyReader,
	logger *zap.Logger,
) Service {
	return &registrationService{
		sessions:  sessions,
		deps:      deps,
		cfg:       cfg,
		tokens:    tokens,
		companies: companies,
		logger:    logger,
	}
}

// Start proves the requester from the EIP-191 signature, validates the form and sends the first code
func (s *registrationService) Start(ctx context.Context, req *registration.StartRequest) (*registration.StartResponse, error) {
	if req.Signature == "" || req.Message == "" {
		return nil, apperrors.UnAuthorizedError(nil, "signature and message required")
	}
	var claimed common.Address
	if req.Address != "" {
		if !auth.ValidateEVMAddress(req.Address) {
			return nil, apperrors.BadRequestError(nil, "invalid address")
		}
		claimed = common.HexToAddress(req.Address)
	}
	requester, err := auth.VerifyRequester(req.Message, req.Signature, claimed)
	if err != nil {
		return nil, apperrors.UnAuthorizedError(err, "invalid signature")
	}

	id := uuid.New()
	deps := s.deps
	deps.Logger = s.logger.With(
		zap.String("session_id", id.String()),
		zap.String("requester", requester.Hex()))
	orch := registration.New(deps, s.cfg)

	if err := orch.Start(ctx, req.Form, requester); err != nil {
		orch.Close()
		return nil, toServiceError(err)
	}

	token, expires, err := s.tokens.Issue(id, requester)
	if err != nil {
		orch.Close()
		return nil, apperrors.GeneralError(err)
	}
	s.sessions.add(id, requester, orch)

	return &registration.StartResponse{
		SessionID: id.String(),
		Token:     token,
		ExpiresAt: expires,
		Status:    registration.NewStatusResponse(id, orch.Status()),
	}, nil
}

// EnterCode verifies the code and submits the registration on success
func (s *registrationService) EnterCode(ctx context.Context, sessionID uuid.UUID, code string) (*registration.StatusResponse, error) {
	if code == "" {
		return nil, apperrors.BadRequestError(nil, "code is required")
	}
	return s.apply(ctx, sessionID, func(o *registration.Orchestrator) error {
		return o.EnterCode(ctx, code)
	})
}

// ResendCode sends a new code
func (s *registrationService) ResendCode(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	return s.apply(ctx, sessionID, func(o *registration.Orchestrator) error {
		return o.ResendCode(ctx)
	})
}

// Retry resubmits a failed registration
func (s *registrationService) Retry(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	return s.apply(ctx, sessionID, func(o *registration.Orchestrator) error {
		return o.Retry(ctx)
	})
}

// Cancel returns the session to Idle
func (s *registrationService) Cancel(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	return s.apply(ctx, sessionID, func(o *registration.Orchestrator) error {
		return o.Cancel(ctx)
	})
}

// Status returns the session snapshot
func (s *registrationService) Status(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	return s.apply(ctx, sessionID, nil)
}

// Company returns the factory's record for owner
func (s *registrationService) Company(ctx context.Context, owner common.Address) (*company.Info, error) {
	if s.companies == nil {
		return nil, apperrors.NotSupportedError(nil, "company lookup is not configured")
	}
	info, err := s.companies.CompanyInfo(ctx, owner)
	if err != nil {
		return nil, apperrors.DependencyError(err, "failed to read company from chain")
	}
	if info == nil {
		return nil, apperrors.ResourceNotFoundError(ErrCompanyNotFound, "company not registered")
	}
	return info, nil
}

func (s *registrationService) apply(
	ctx context.Context,
	sessionID uuid.UUID,
	op func(*registration.Orchestrator) error,
) (*registration.StatusResponse, error) {
	sess, ok := s.sessions.get(sessionID)
	if !ok {
		return nil, apperrors.ResourceNotFoundError(ErrSessionNotFound, "registration session not found")
	}
	if requester, ok := auth.RequesterFromContext(ctx); ok && requester != sess.requester {
		return nil, apperrors.ForbiddenError(ErrNotSessionOwner, "registration session belongs to another requester")
	}
	if op != nil {
		if err := op(sess.orch); err != nil {
			return nil, toServiceError(err)
		}
	}
	return registration.NewStatusResponse(sessionID, sess.orch.Status()), nil
}

// toServiceError maps domain errors to categorised service errors carrying the user message
func toServiceError(err error) error {
	msg := registration.UserMessage(err)
	switch {
	case errors.Is(err, company.ErrValidation),
		errors.Is(err, otp.ErrInvalidCode),
		errors.Is(err, otp.ErrExpiredToken),
		errors.Is(err, otp.ErrNoToken),
		errors.Is(err, otp.ErrInvalidEmail),
		errors.Is(err, wallet.ErrInsufficientFunds):
		return apperrors.BadRequestError(err, msg)
	case errors.Is(err, otp.ErrLockedOut):
		return apperrors.LockedError(err, msg)
	case errors.Is(err, otp.ErrProviderUnavailable),
		errors.Is(err, wallet.ErrProviderError):
		return apperrors.DependencyError(err, msg)
	case errors.Is(err, wallet.ErrUserRejected),
		errors.Is(err, submission.ErrSubmissionInFlight),
		errors.Is(err, registration.ErrInvalidState),
		errors.Is(err, registration.ErrBusy),
		errors.Is(err, registration.ErrCancelled):
		return apperrors.ConflictError(err, msg)
	case errors.Is(err, ledger.ErrCorrelationTimeout):
		return apperrors.TimeoutError(err, msg)
	default:
		return apperrors.GeneralError(err)
	}
}
