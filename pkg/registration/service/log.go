package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/registration"
)

const serviceName = "RegistrationService"

const (
	logMessageMaxLen     = 50
	signatureDisplaySize = 16
)

// logService wraps Service with logging of every call
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the registration Service.
// Codes and signatures are never logged in full.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// Start wraps the service method with logging
func (ls *logService) Start(
	ctx context.Context,
	req *registration.StartRequest,
) (resp *registration.StartResponse, err error) {
	start := time.Now()
	ls.logger.Info("Start started",
		zap.String("service", serviceName),
		zap.String("method", "Start"),
		zap.String("company_name", truncateString(req.CompanyName, logMessageMaxLen)),
		zap.String("email", redactEmail(req.Email)),
		zap.String("message", truncateString(req.Message, logMessageMaxLen)),
		zap.String("signature", redactSignature(req.Signature)),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Start failed",
				zap.String("service", serviceName),
				zap.String("method", "Start"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("Start completed",
			zap.String("service", serviceName),
			zap.String("method", "Start"),
			zap.String("session_id", resp.SessionID),
			zap.String("state", string(resp.Status.State)),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.Start(ctx, req)
}

// EnterCode wraps the service method with logging
func (ls *logService) EnterCode(
	ctx context.Context,
	sessionID uuid.UUID,
	code string,
) (*registration.StatusResponse, error) {
	return ls.session(ctx, "EnterCode", sessionID, []zap.Field{zap.String("code", redactCode(code))},
		func() (*registration.StatusResponse, error) {
			return ls.svc.EnterCode(ctx, sessionID, code)
		})
}

// ResendCode wraps the service method with logging
func (ls *logService) ResendCode(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	return ls.session(ctx, "ResendCode", sessionID, nil, func() (*registration.StatusResponse, error) {
		return ls.svc.ResendCode(ctx, sessionID)
	})
}

// Retry wraps the service method with logging
func (ls *logService) Retry(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	return ls.session(ctx, "Retry", sessionID, nil, func() (*registration.StatusResponse, error) {
		return ls.svc.Retry(ctx, sessionID)
	})
}

// Cancel wraps the service method with logging
func (ls *logService) Cancel(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	return ls.session(ctx, "Cancel", sessionID, nil, func() (*registration.StatusResponse, error) {
		return ls.svc.Cancel(ctx, sessionID)
	})
}

// Status is polled by clients, so only failures are logged
func (ls *logService) Status(ctx context.Context, sessionID uuid.UUID) (*registration.StatusResponse, error) {
	resp, err := ls.svc.Status(ctx, sessionID)
	if err != nil {
		ls.logger.Warn("Status failed",
			zap.String("service", serviceName),
			zap.String("method", "Status"),
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
	}
	return resp, err
}

// Company wraps the service method with logging
func (ls *logService) Company(ctx context.Context, owner common.Address) (info *company.Info, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.String("method", "Company"),
			zap.String("owner", owner.Hex()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Debug("Company failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Debug("Company completed", append(fields, zap.String("payroll_contract", info.PayrollContract.Hex()))...)
	}()
	return ls.svc.Company(ctx, owner)
}

func (ls *logService) session(
	_ context.Context,
	method string,
	sessionID uuid.UUID,
	extra []zap.Field,
	call func() (*registration.StatusResponse, error),
) (*registration.StatusResponse, error) {
	start := time.Now()
	base := []zap.Field{
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.String("session_id", sessionID.String()),
	}
	ls.logger.Info(method+" started", append(base, extra...)...)

	resp, err := call()
	duration := time.Since(start)
	if err != nil {
		ls.logger.Error(method+" failed", append(base, zap.Duration("duration", duration), zap.Error(err))...)
		return nil, err
	}
	ls.logger.Info(method+" completed", append(base,
		zap.String("state", string(resp.State)),
		zap.String("tx_hash", resp.TxHash),
		zap.String("failure_reason", resp.FailureReason),
		zap.Duration("duration", duration),
	)...)
	return resp, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// redactSignature shows only the ends and length of a signature
func redactSignature(sig string) string {
	if sig == "" {
		return "<empty>"
	}
	sigLen := len(sig)
	if sigLen > signatureDisplaySize {
		return fmt.Sprintf("%s...%s (%d bytes)", sig[:8], sig[sigLen-4:], sigLen)
	}
	return fmt.Sprintf("<%d bytes>", sigLen)
}

func redactCode(code string) string {
	return fmt.Sprintf("<%d digits>", len(code))
}

// redactEmail keeps the first character of the local part and the domain
func redactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "<invalid>"
	}
	return email[:1] + "***" + email[at:]
}
