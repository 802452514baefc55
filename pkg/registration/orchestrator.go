// Package registration sequences email verification, transaction submission and ledger
// confirmation for one company registration session.
package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/internal/metrics"
	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/ledger"
	"github.com/peyroll/registrar/pkg/otp"
	"github.com/peyroll/registrar/pkg/submission"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("operation not allowed in current registration state")
	// ErrBusy is returned while another operation on the session is waiting on a provider.
	ErrBusy = errors.New("registration session is busy")
	// ErrCancelled is returned to an operation whose session was cancelled while it waited.
	ErrCancelled = errors.New("registration session was cancelled")
)

// Submitter is the Transaction Submission Controller
type Submitter interface {
	Submit(ctx context.Context, req company.RegistrationRequest) (*submission.PendingTransaction, error)
	AwaitReceipt(ctx context.Context, tx *submission.PendingTransaction) (*types.Receipt, error)
	MarkConfirmed(ctx context.Context, tx *submission.PendingTransaction, contract common.Address) error
	MarkFailed(ctx context.Context, tx *submission.PendingTransaction, reason string) error
	Discard(ctx context.Context, tx *submission.PendingTransaction) error
}

// Correlator is the Ledger Event Correlator
type Correlator interface {
	Watch(ctx context.Context, requester common.Address, fromBlock uint64) *ledger.Watch
}

// BlockSource reports the chain head, used to bound the confirmation scan
type BlockSource interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
}

// CompanyRecorder stores confirmed registrations
type CompanyRecorder interface {
	SaveCompany(ctx context.Context, reg company.Registration) error
}

// Notifier is told about every state change
type Notifier interface {
	Notify(snap Snapshot)
}

// NotifyFunc adapts a function to Notifier
type NotifyFunc func(Snapshot)

// Notify implements Notifier
func (f NotifyFunc) Notify(snap Snapshot) { f(snap) }

// Deps are the orchestrator's collaborators. Blocks, Companies and Notifier are optional.
type Deps struct {
	Provider   otp.Provider
	Submitter  Submitter
	Correlator Correlator
	Blocks     BlockSource
	Companies  CompanyRecorder
	Notifier   Notifier
	Clock      clock.Clock
	Logger     *zap.Logger
}

// Config tunes an Orchestrator
type Config struct {
	Policy otp.Policy
	// Lookback is how many blocks before submission the confirmation scan starts at.
	Lookback uint64
}

// Orchestrator is the registration state machine for one session. Provider, wallet and
// store calls are made without holding the session lock; a cancel in the meantime bumps
// the generation and the late result is discarded.
type Orchestrator struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger

	bgCtx    context.Context
	bgCancel context.CancelFunc

	mu          sync.Mutex
	state       State
	generation  uint64
	busy        bool
	request     *company.RegistrationRequest
	verifier    *otp.Manager
	token       string
	verified    bool
	lastErr     error
	errAttempts int
	reason      string
	tx          *submission.PendingTransaction
	watch       *ledger.Watch
	contract    common.Address
	updatedAt   time.Time
}

// New creates an Orchestrator in Idle
func New(deps Deps, cfg Config) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.Policy.MaxAttempts <= 0 || cfg.Policy.Lockout <= 0 {
		cfg.Policy = otp.DefaultPolicy()
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		deps:      deps,
		cfg:       cfg,
		logger:    deps.Logger,
		bgCtx:     bgCtx,
		bgCancel:  bgCancel,
		state:     StateIdle,
		verifier:  otp.NewManager(deps.Provider, cfg.Policy, deps.Clock),
		updatedAt: deps.Clock.Now(),
	}
	metrics.ActiveSessions.WithLabelValues(string(StateIdle)).Inc()
	return o
}

// Start validates the form and sends the first verification code. A ValidationError
// leaves the session Idle and contacts nobody.
func (o *Orchestrator) Start(ctx context.Context, form company.Form, requester common.Address) error {
	o.mu.Lock()
	if o.state != StateIdle || o.busy {
		err := o.invalid("start")
		o.mu.Unlock()
		return err
	}

	req, err := company.Validate(form, requester)
	if err != nil {
		o.mu.Unlock()
		return err
	}

	o.busy = true
	gen := o.generation
	o.mu.Unlock()

	token, err := o.verifier.SendCode(ctx, req.Email)
	o.countSend(err)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return ErrCancelled
	}
	o.busy = false
	if err != nil {
		o.setError(err)
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
		return err
	}

	o.request = &req
	o.token = token
	o.clearError()
	o.setState(StateAwaitingOtp)
	o.logger.Info("Registration started, verification code sent",
		zap.String("requester", requester.Hex()))
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
	return nil
}

// ResendCode requests a new code for the session's email. The failure counter is kept.
func (o *Orchestrator) ResendCode(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateAwaitingOtp || o.busy {
		err := o.invalid("resend code")
		o.mu.Unlock()
		return err
	}
	o.busy = true
	gen := o.generation
	email := o.request.Email
	o.mu.Unlock()

	token, err := o.verifier.SendCode(ctx, email)
	o.countSend(err)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return ErrCancelled
	}
	o.busy = false
	if err != nil {
		o.setError(err)
	} else {
		o.token = token
		o.clearError()
		o.touch()
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
	return err
}

// EnterCode verifies code and, on success, submits the registration transaction.
// It returns the verification error, or the submission error after a verified code.
func (o *Orchestrator) EnterCode(ctx context.Context, code string) error {
	o.mu.Lock()
	if o.state != StateAwaitingOtp || o.busy {
		err := o.invalid("enter code")
		o.mu.Unlock()
		return err
	}
	o.busy = true
	gen := o.generation
	email, token := o.request.Email, o.token
	o.setState(StateVerifying)
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)

	_, err := o.verifier.VerifyCode(ctx, email, code, token)
	o.countVerify(err)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return ErrCancelled
	}
	if err != nil {
		o.busy = false
		o.setError(err)
		o.setState(StateAwaitingOtp)
		o.logger.Info("Verification code rejected",
			zap.Int("attempt_count", o.verifier.Status().AttemptCount),
			zap.Error(err))
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
		return err
	}

	o.verified = true
	o.token = ""
	o.clearError()
	o.setState(StateSubmitting)
	return o.submitLocked(ctx, gen)
}

// Retry resubmits the identical request after a Failed submission. Verification is not repeated.
func (o *Orchestrator) Retry(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateFailed || o.busy || !o.verified {
		err := o.invalid("retry")
		o.mu.Unlock()
		return err
	}
	o.busy = true
	o.generation++
	gen := o.generation
	o.tx = nil
	o.reason = ""
	o.clearError()
	o.setState(StateSubmitting)
	o.logger.Info("Retrying registration submission",
		zap.String("requester", o.request.Requester.Hex()))
	return o.submitLocked(ctx, gen)
}

// Cancel returns a non-terminal session to Idle. The verification session and any
// pending transaction are discarded and the ledger subscription is released.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	o.mu.Lock()
	if o.state.IsTerminal() {
		err := o.invalid("cancel")
		o.mu.Unlock()
		return err
	}
	if o.state == StateIdle && !o.busy {
		o.mu.Unlock()
		return nil
	}

	o.generation++
	o.busy = false
	if o.watch != nil {
		o.watch.Cancel()
		o.watch = nil
	}
	if o.tx != nil {
		if err := o.deps.Submitter.Discard(ctx, o.tx); err != nil {
			o.logger.Warn("Failed to discard pending transaction", zap.Error(err))
		}
		o.tx = nil
	}
	o.verifier = otp.NewManager(o.deps.Provider, o.cfg.Policy, o.deps.Clock)
	o.request = nil
	o.token = ""
	o.verified = false
	o.reason = ""
	o.clearError()
	o.setState(StateIdle)
	o.logger.Info("Registration cancelled")
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
	return nil
}

// Status returns the current snapshot
func (o *Orchestrator) Status() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Pending reports whether the session has a transaction awaiting its terminal status
func (o *Orchestrator) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tx != nil && o.tx.Status() == submission.StatusPending
}

// Busy reports whether an operation is waiting on the provider, the wallet or the store
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Close releases background work. The session must not be used afterwards.
func (o *Orchestrator) Close() {
	o.bgCancel()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.watch != nil {
		o.watch.Cancel()
		o.watch = nil
	}
	metrics.ActiveSessions.WithLabelValues(string(o.state)).Dec()
}

// submitLocked runs with o.mu held and state Submitting; it always releases o.mu.
func (o *Orchestrator) submitLocked(ctx context.Context, gen uint64) error {
	req := *o.request
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)

	fromBlock := o.scanStart(ctx)
	tx, err := o.deps.Submitter.Submit(ctx, req)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		if err == nil {
			_ = o.deps.Submitter.Discard(o.bgCtx, tx)
		}
		return ErrCancelled
	}
	o.busy = false

	if err != nil {
		reason := submission.ReasonProviderError
		switch {
		case errors.Is(err, submission.ErrSubmissionInFlight):
			reason = ReasonSubmissionInFlight
		case tx != nil && tx.FailureReason() != "":
			reason = tx.FailureReason()
		}
		o.failLocked(reason, err)
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
		return err
	}

	o.tx = tx
	o.watch = o.deps.Correlator.Watch(o.bgCtx, req.Requester, fromBlock)
	o.setState(StateAwaitingConfirmation)
	o.logger.Info("Registration transaction broadcast, awaiting confirmation",
		zap.String("tx_hash", tx.Handle.TxHash.Hex()),
		zap.Uint64("from_block", fromBlock))
	go o.awaitConfirmation(gen, tx, o.watch)

	snap = o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
	return nil
}

func (o *Orchestrator) scanStart(ctx context.Context) uint64 {
	if o.deps.Blocks == nil {
		return 0
	}
	head, err := o.deps.Blocks.GetLatestBlockNumber(ctx)
	if err != nil {
		o.logger.Warn("Failed to read chain head, scanning from genesis", zap.Error(err))
		return 0
	}
	if head < o.cfg.Lookback {
		return 0
	}
	return head - o.cfg.Lookback
}

// awaitConfirmation resolves the session from the first of the matching ledger event,
// a reverted receipt or the correlation timeout.
func (o *Orchestrator) awaitConfirmation(gen uint64, tx *submission.PendingTransaction, watch *ledger.Watch) {
	ctx, cancel := context.WithCancel(o.bgCtx)
	defer cancel()

	reverted := make(chan error, 1)
	go func() {
		if _, err := o.deps.Submitter.AwaitReceipt(ctx, tx); errors.Is(err, submission.ErrTransactionReverted) {
			reverted <- err
		}
	}()

	select {
	case r, ok := <-watch.Result():
		if !ok {
			return
		}
		o.resolve(gen, tx, r)
	case err := <-reverted:
		watch.Cancel()
		o.mu.Lock()
		if gen != o.generation {
			o.mu.Unlock()
			return
		}
		o.watch = nil
		o.failLocked(submission.ReasonReverted, err)
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
	}
}

func (o *Orchestrator) resolve(gen uint64, tx *submission.PendingTransaction, r ledger.Result) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.watch = nil

	if r.Err != nil {
		if err := o.deps.Submitter.MarkFailed(o.bgCtx, tx, submission.ReasonCorrelationTimeout); err != nil {
			o.logger.Warn("Failed to mark transaction failed", zap.Error(err))
		}
		metrics.ConfirmationsTotal.WithLabelValues("timeout").Inc()
		o.failLocked(submission.ReasonCorrelationTimeout, r.Err)
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
		return
	}

	if err := o.deps.Submitter.MarkConfirmed(o.bgCtx, tx, r.ContractAddress); err != nil {
		o.logger.Warn("Failed to mark transaction confirmed", zap.Error(err))
	}
	o.contract = r.ContractAddress
	o.setState(StateConfirmed)
	metrics.ConfirmationsTotal.WithLabelValues("confirmed").Inc()
	metrics.ConfirmationDuration.Observe(o.deps.Clock.Now().Sub(tx.SubmittedAt).Seconds())
	o.logger.Info("Company registration confirmed",
		zap.String("requester", tx.Request.Requester.Hex()),
		zap.String("payroll_contract", r.ContractAddress.Hex()))

	if o.deps.Companies != nil {
		reg := company.Registration{
			Owner:           tx.Request.Requester,
			PayrollContract: r.ContractAddress,
			CompanyName:     tx.Request.CompanyName,
			TxHash:          tx.Handle.TxHash,
			RegisteredAt:    o.deps.Clock.Now(),
		}
		if r.Event != nil {
			reg.TxHash = r.Event.TxHash
			reg.BlockNumber = r.Event.BlockNumber
		}
		if err := o.deps.Companies.SaveCompany(o.bgCtx, reg); err != nil {
			o.logger.Error("Failed to record company", zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("registration", "store").Inc()
		}
	}

	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) failLocked(reason string, err error) {
	o.reason = reason
	o.lastErr = err
	o.setState(StateFailed)
	o.logger.Warn("Registration submission failed",
		zap.String("reason", reason),
		zap.Error(err))
}

func (o *Orchestrator) setState(s State) {
	if s != o.state {
		metrics.ActiveSessions.WithLabelValues(string(o.state)).Dec()
		metrics.ActiveSessions.WithLabelValues(string(s)).Inc()
	}
	o.state = s
	o.touch()
}

func (o *Orchestrator) touch() {
	o.updatedAt = o.deps.Clock.Now()
}

func (o *Orchestrator) setError(err error) {
	o.lastErr = err
	o.errAttempts = o.verifier.Status().AttemptCount
	o.touch()
}

func (o *Orchestrator) clearError() {
	o.lastErr = nil
	o.errAttempts = 0
}

func (o *Orchestrator) invalid(op string) error {
	if o.busy {
		return fmt.Errorf("%w: cannot %s while %s", ErrBusy, op, o.state)
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, o.state)
}

func (o *Orchestrator) notify(snap Snapshot) {
	if o.deps.Notifier != nil {
		o.deps.Notifier.Notify(snap)
	}
}

func (o *Orchestrator) countSend(err error) {
	metrics.OTPCodesSent.WithLabelValues(resultLabel(err)).Inc()
}

func (o *Orchestrator) countVerify(err error) {
	metrics.OTPVerifications.WithLabelValues(resultLabel(err)).Inc()
	if err != nil && !errors.Is(err, otp.ErrLockedOut) && o.verifier.Locked() {
		metrics.OTPLockouts.Inc()
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, otp.ErrLockedOut):
		return "locked_out"
	case errors.Is(err, otp.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, otp.ErrExpiredToken), errors.Is(err, otp.ErrNoToken):
		return "expired_token"
	case errors.Is(err, otp.ErrInvalidEmail):
		return "invalid_email"
	default:
		return "provider_unavailable"
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	vs := o.verifier.Status()
	snap := Snapshot{
		State:           o.state,
		FailureReason:   o.reason,
		AttemptCount:    vs.AttemptCount,
		MaxAttempts:     vs.MaxAttempts,
		Locked:          vs.Locked,
		ContractAddress: o.contract,
		UpdatedAt:       o.updatedAt,
	}
	if vs.Locked {
		snap.LockedUntil = vs.LockedUntil
	}
	if o.request != nil {
		snap.Requester = o.request.Requester
	}
	if o.tx != nil {
		snap.TxHash = o.tx.Handle.TxHash
	}
	snap.Message = o.messageLocked(vs)
	return snap
}

func (o *Orchestrator) messageLocked(vs otp.Status) string {
	switch o.state {
	case StateIdle:
		if o.lastErr == nil {
			return ""
		}
		if errors.Is(o.lastErr, otp.ErrInvalidEmail) {
			return msgInvalidEmail
		}
		if errors.Is(o.lastErr, otp.ErrLockedOut) {
			return msgLockedOut
		}
		return msgSendFailed
	case StateAwaitingOtp:
		if vs.Locked {
			return msgLockedOut
		}
		// Counter reset by cooldown expiry clears the last verification message.
		if o.lastErr != nil && vs.AttemptCount >= o.errAttempts && !errors.Is(o.lastErr, otp.ErrLockedOut) {
			return verificationMessage(o.lastErr)
		}
		return msgCodeSent
	case StateVerifying:
		return msgVerifying
	case StateSubmitting:
		return msgSubmitting
	case StateAwaitingConfirmation:
		return msgAwaiting
	case StateConfirmed:
		return msgConfirmed
	case StateFailed:
		return failureMessage(o.reason)
	}
	return ""
}
