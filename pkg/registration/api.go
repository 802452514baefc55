package registration

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/ledger"
	"github.com/peyroll/registrar/pkg/otp"
	"github.com/peyroll/registrar/pkg/submission"
	"github.com/peyroll/registrar/pkg/wallet"
)

// StartRequest is the body of POST /registrations. Signature and Message may also be
// sent as the X-Signature and X-Message headers.
type StartRequest struct {
	company.Form
	Signature string `json:"signature,omitzero"`
	Message   string `json:"message,omitzero"`
	// Address is the wallet the client believes signed. When set, the signature must recover to it.
	Address string `json:"address,omitzero"`
}

// StartResponse is returned when a session is created
type StartResponse struct {
	SessionID string          `json:"session_id"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Status    *StatusResponse `json:"status"`
}

// CodeRequest is the body of POST /registrations/{id}/code
type CodeRequest struct {
	Code string `json:"code"`
}

// StatusResponse is the presentation view of a session
type StatusResponse struct {
	SessionID       string     `json:"session_id"`
	State           State      `json:"state"`
	Message         string     `json:"message,omitzero"`
	AttemptCount    int        `json:"attempt_count"`
	MaxAttempts     int        `json:"max_attempts"`
	Locked          bool       `json:"locked"`
	LockedUntil     *time.Time `json:"locked_until,omitempty"`
	TxHash          string     `json:"tx_hash,omitzero"`
	ContractAddress string     `json:"contract_address,omitzero"`
	FailureReason   string     `json:"failure_reason,omitzero"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewStatusResponse renders snap for session id
func NewStatusResponse(id uuid.UUID, snap Snapshot) *StatusResponse {
	resp := &StatusResponse{
		SessionID:     id.String(),
		State:         snap.State,
		Message:       snap.Message,
		AttemptCount:  snap.AttemptCount,
		MaxAttempts:   snap.MaxAttempts,
		Locked:        snap.Locked,
		FailureReason: snap.FailureReason,
		UpdatedAt:     snap.UpdatedAt,
	}
	if snap.Locked {
		until := snap.LockedUntil
		resp.LockedUntil = &until
	}
	if snap.TxHash != (common.Hash{}) {
		resp.TxHash = snap.TxHash.Hex()
	}
	if snap.ContractAddress != (common.Address{}) {
		resp.ContractAddress = snap.ContractAddress.Hex()
	}
	return resp
}

// UserMessage returns the text shown to the user for an operation error
func UserMessage(err error) string {
	var verr *company.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, otp.ErrLockedOut),
		errors.Is(err, otp.ErrInvalidCode),
		errors.Is(err, otp.ErrExpiredToken),
		errors.Is(err, otp.ErrNoToken),
		errors.Is(err, otp.ErrInvalidEmail),
		errors.Is(err, otp.ErrProviderUnavailable):
		return verificationMessage(err)
	case errors.Is(err, wallet.ErrUserRejected):
		return msgUserRejected
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return msgNoFunds
	case errors.Is(err, wallet.ErrProviderError):
		return msgTxFailed
	case errors.Is(err, submission.ErrSubmissionInFlight):
		return msgInFlight
	case errors.Is(err, ledger.ErrCorrelationTimeout):
		return msgTimedOut
	case errors.Is(err, ErrBusy):
		return "Another request for this registration is in progress."
	case errors.Is(err, ErrCancelled):
		return "The registration was cancelled."
	case errors.Is(err, ErrInvalidState):
		return "This action is not available in the current registration state."
	default:
		return "Unexpected error."
	}
}
