package registration

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/peyroll/registrar/pkg/otp"
	"github.com/peyroll/registrar/pkg/submission"
)

// State is the orchestrator's position in the registration flow
type State string

const (
	StateIdle                 State = "Idle"
	StateAwaitingOtp          State = "AwaitingOtp"
	StateVerifying            State = "Verifying"
	StateSubmitting           State = "Submitting"
	StateAwaitingConfirmation State = "AwaitingConfirmation"
	StateConfirmed            State = "Confirmed"
	StateFailed               State = "Failed"
)

// IsTerminal reports whether s accepts no further transitions
func (s State) IsTerminal() bool {
	return s == StateConfirmed
}

// ReasonSubmissionInFlight marks a Failed session whose submit hit the single-flight guard.
const ReasonSubmissionInFlight = "SubmissionInFlight"

// User-facing messages
const (
	msgCodeSent          = "A verification code has been sent to your email."
	msgInvalidCode       = "Invalid OTP code. Please check and try again."
	msgExpiredCode       = "OTP has expired. Please request a new code."
	msgLockedOut         = "Too many failed attempts. Please wait a moment and try again."
	msgVerifyUnavailable = "Failed to verify OTP. Please try again."
	msgSendFailed        = "Failed to send OTP. Please try again."
	msgInvalidEmail      = "Please enter a valid email address."
	msgVerifying         = "Verifying code..."
	msgSubmitting        = "Submitting registration transaction. Confirm it in your wallet."
	msgAwaiting          = "Transaction submitted! Waiting for confirmation..."
	msgConfirmed         = "Company registered successfully."
	msgUserRejected      = "Transaction was rejected in the wallet."
	msgNoFunds           = "Insufficient funds to pay for the registration transaction."
	msgReverted          = "Registration transaction reverted."
	msgTimedOut          = "Timed out waiting for the registration to be confirmed."
	msgInFlight          = "Another registration transaction for this wallet is still pending."
	msgTxFailed          = "Registration transaction failed. Please try again."
)

// Snapshot is the presentation view of a session
type Snapshot struct {
	State           State
	FailureReason   string
	Message         string
	Requester       common.Address
	AttemptCount    int
	MaxAttempts     int
	Locked          bool
	LockedUntil     time.Time
	TxHash          common.Hash
	ContractAddress common.Address
	UpdatedAt       time.Time
}

func verificationMessage(err error) string {
	switch {
	case errors.Is(err, otp.ErrLockedOut):
		return msgLockedOut
	case errors.Is(err, otp.ErrInvalidCode):
		return msgInvalidCode
	case errors.Is(err, otp.ErrExpiredToken), errors.Is(err, otp.ErrNoToken):
		return msgExpiredCode
	case errors.Is(err, otp.ErrInvalidEmail):
		return msgInvalidEmail
	default:
		return msgVerifyUnavailable
	}
}

func failureMessage(reason string) string {
	switch reason {
	case submission.ReasonUserRejected:
		return msgUserRejected
	case submission.ReasonInsufficientFunds:
		return msgNoFunds
	case submission.ReasonReverted:
		return msgReverted
	case submission.ReasonCorrelationTimeout:
		return msgTimedOut
	case ReasonSubmissionInFlight:
		return msgInFlight
	default:
		return msgTxFailed
	}
}
