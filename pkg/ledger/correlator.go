package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/internal/metrics"
)

// ErrCorrelationTimeout is reported when no matching event arrives within the configured timeout.
var ErrCorrelationTimeout = errors.New("timed out waiting for registration confirmation")

// Result is the single outcome of a Watch
type Result struct {
	ContractAddress common.Address
	Event           *Event
	Err             error
}

// Correlator resolves the one ledger event confirming a requester's pending registration
type Correlator struct {
	feed       Feed
	timeout    time.Duration
	backoff    time.Duration
	maxBackoff time.Duration
	logger     *zap.Logger
}

// Option configures a Correlator
type Option func(*Correlator)

// WithTimeout bounds each Watch. Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(c *Correlator) { c.timeout = d }
}

// WithRestartBackoff sets the feed restart delays passed to each Subscription
func WithRestartBackoff(initial, maxDelay time.Duration) Option {
	return func(c *Correlator) {
		c.backoff = initial
		c.maxBackoff = maxDelay
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Correlator) { c.logger = logger }
}

// NewCorrelator creates a Correlator over feed
func NewCorrelator(feed Feed, opts ...Option) *Correlator {
	c := &Correlator{
		feed:       feed,
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Watch subscribes for the first event initiated by requester at or after fromBlock.
// The returned Watch emits exactly one Result unless it is cancelled first, and drops its
// subscription as soon as that Result is decided.
func (c *Correlator) Watch(ctx context.Context, requester common.Address, fromBlock uint64) *Watch {
	ctx, cancel := context.WithCancel(ctx)
	w := &Watch{
		requester: requester,
		result:    make(chan Result, 1),
		cancel:    cancel,
		sub: Subscribe(c.feed, fromBlock, InitiatorIs(requester),
			WithInitiators(requester),
			WithBackoff(c.backoff, c.maxBackoff),
			WithSubscriptionLogger(c.logger)),
		logger: c.logger,
	}
	go w.run(ctx, c.timeout)
	return w
}

// Watch is one pending correlation
type Watch struct {
	requester common.Address
	result    chan Result
	cancel    context.CancelFunc
	sub       *Subscription
	logger    *zap.Logger

	emitOnce sync.Once
}

// Result yields the outcome and is then closed. It is closed without a value on Cancel.
func (w *Watch) Result() <-chan Result {
	return w.result
}

// Cancel abandons the watch and releases its subscription
func (w *Watch) Cancel() {
	w.cancel()
}

func (w *Watch) run(ctx context.Context, timeout time.Duration) {
	defer close(w.result)
	defer w.sub.Unsubscribe()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	events := w.sub.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Initiator != w.requester {
				continue
			}
			w.sub.Unsubscribe()
			metrics.LedgerEvents.WithLabelValues("matched").Inc()
			w.logger.Info("Registration confirmation matched",
				zap.String("requester", w.requester.Hex()),
				zap.String("payroll_contract", ev.ContractAddress.Hex()),
				zap.String("tx_hash", ev.TxHash.Hex()),
				zap.Uint64("block_number", ev.BlockNumber))
			w.emit(Result{ContractAddress: ev.ContractAddress, Event: ev})
			return
		case <-expired:
			w.sub.Unsubscribe()
			w.logger.Warn("Registration confirmation timed out",
				zap.String("requester", w.requester.Hex()),
				zap.Duration("timeout", timeout))
			w.emit(Result{Err: ErrCorrelationTimeout})
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watch) emit(r Result) {
	w.emitOnce.Do(func() { w.result <- r })
}
