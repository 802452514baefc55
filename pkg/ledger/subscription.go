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

// Predicate selects the events a Subscription delivers
type Predicate func(*Event) bool

// InitiatorIs matches events initiated by addr
func InitiatorIs(addr common.Address) Predicate {
	return func(ev *Event) bool { return ev.Initiator == addr }
}

// SubscriptionOption configures a Subscription
type SubscriptionOption func(*Subscription)

// WithInitiators narrows the underlying feed to the given initiators
func WithInitiators(addrs ...common.Address) SubscriptionOption {
	return func(s *Subscription) { s.initiators = addrs }
}

// WithBackoff sets the initial and maximum restart delay after a feed error
func WithBackoff(initial, maxDelay time.Duration) SubscriptionOption {
	return func(s *Subscription) {
		s.backoff = initial
		s.maxBackoff = maxDelay
	}
}

// WithSubscriptionLogger sets the logger
func WithSubscriptionLogger(logger *zap.Logger) SubscriptionOption {
	return func(s *Subscription) { s.logger = logger }
}

// Subscription is a lazy, restartable stream of events matching a Predicate.
// Nothing is read from the feed until Events is first called. After a feed error the
// stream restarts from the last block seen, so events in that block may be redelivered.
type Subscription struct {
	feed       Feed
	fromBlock  uint64
	predicate  Predicate
	initiators []common.Address
	backoff    time.Duration
	maxBackoff time.Duration
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan *Event
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// Subscribe creates a Subscription. It does not touch the feed yet.
func Subscribe(feed Feed, fromBlock uint64, predicate Predicate, opts ...SubscriptionOption) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		feed:       feed,
		fromBlock:  fromBlock,
		predicate:  predicate,
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan *Event),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events starts the subscription on first use and returns its event channel. The
// channel is closed after Unsubscribe.
func (s *Subscription) Events() <-chan *Event {
	s.startOnce.Do(func() {
		metrics.ActiveSubscriptions.Inc()
		go s.run()
	})
	return s.events
}

// Unsubscribe stops the subscription and waits for the feed to be released. It is safe
// to call more than once and before Events.
func (s *Subscription) Unsubscribe() {
	s.stopOnce.Do(func() {
		s.cancel()
		started := true
		s.startOnce.Do(func() {
			started = false
			close(s.events)
			close(s.done)
		})
		if started {
			<-s.done
		}
	})
}

func (s *Subscription) run() {
	defer func() {
		close(s.events)
		close(s.done)
		metrics.ActiveSubscriptions.Dec()
	}()

	next := s.fromBlock
	delay := s.backoff

	for {
		from := next
		err := s.stream(from, &next)
		if s.ctx.Err() != nil {
			return
		}
		if next > from {
			delay = s.backoff
		}
		if err == nil {
			err = errors.New("feed closed")
		}

		s.logger.Warn("Ledger feed interrupted, restarting",
			zap.Uint64("from_block", next),
			zap.Duration("backoff", delay),
			zap.Error(err))
		metrics.ErrorsTotal.WithLabelValues("ledger", "feed").Inc()

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > s.maxBackoff {
			delay = s.maxBackoff
		}
	}
}

// stream consumes one feed connection. It records the highest block seen in next and
// returns the feed error, or nil if the feed closed without one.
func (s *Subscription) stream(from uint64, next *uint64) error {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	eventCh, errCh := s.feed.StreamEvents(ctx, from, s.initiators)
	for {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				select {
				case err := <-errCh:
					return err
				default:
					return nil
				}
			}
			if ev.BlockNumber > *next {
				*next = ev.BlockNumber
			}
			if s.predicate != nil && !s.predicate(ev) {
				metrics.LedgerEvents.WithLabelValues("ignored").Inc()
				continue
			}
			select {
			case s.events <- ev:
			case <-s.ctx.Done():
				return nil
			}
		case err := <-errCh:
			return err
		case <-s.ctx.Done():
			return nil
		}
	}
}
