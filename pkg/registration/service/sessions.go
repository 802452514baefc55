package service

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/registration"
)

type session struct {
	requester common.Address
	orch      *registration.Orchestrator
}

// Sessions holds live registration sessions in memory, keyed by session id
type Sessions struct {
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger

	mu    sync.RWMutex
	items map[uuid.UUID]*session
}

// NewSessions creates an empty session registry. Sessions idle for longer than ttl are
// removed by Sweep unless they have a pending transaction or an operation in progress.
func NewSessions(ttl time.Duration, clk clock.Clock, logger *zap.Logger) *Sessions {
	if clk == nil {
		clk = clock.Real()
	}
	return &Sessions{
		ttl:    ttl,
		clock:  clk,
		logger: logger,
		items:  make(map[uuid.UUID]*session),
	}
}

func (s *Sessions) add(id uuid.UUID, requester common.Address, o *registration.Orchestrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &session{requester: requester, orch: o}
}

func (s *Sessions) get(id uuid.UUID) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.items[id]
	return sess, ok
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep removes expired sessions and returns how many were removed
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.ttl)

	var expired []*session
	s.mu.Lock()
	for id, sess := range s.items {
		if sess.orch.Pending() || sess.orch.Busy() {
			continue
		}
		if sess.orch.Status().UpdatedAt.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.orch.Close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done
func (s *Sessions) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Session janitor started",
		zap.Duration("interval", interval),
		zap.Duration("ttl", s.ttl))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Expired registration sessions removed", zap.Int("count", n))
			}
		}
	}
}

// Close releases every session
func (s *Sessions) Close() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[uuid.UUID]*session)
	s.mu.Unlock()

	for _, sess := range items {
		sess.orch.Close()
	}
}
