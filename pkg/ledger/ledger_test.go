package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/pkg/ethereum"
)

var (
	alice    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob      = common.HexToAddress("0x2222222222222222222222222222222222222222")
	contract = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

type fakeStream struct {
	ctx        context.Context
	from       uint64
	initiators []common.Address
	events     chan *Event
	errs       chan error
}

type fakeFeed struct {
	mu      sync.Mutex
	calls   int
	streams chan *fakeStream
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{streams: make(chan *fakeStream, 8)}
}

func (f *fakeFeed) StreamEvents(ctx context.Context, fromBlock uint64, initiators []common.Address) (<-chan *Event, <-chan error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	st := &fakeStream{
		ctx:        ctx,
		from:       fromBlock,
		initiators: initiators,
		events:     make(chan *Event),
		errs:       make(chan error, 1),
	}
	f.streams <- st
	return st.events, st.errs
}

func (f *fakeFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func nextStream(t *testing.T, f *fakeFeed) *fakeStream {
	t.Helper()
	select {
	case st := <-f.streams:
		return st
	case <-time.After(time.Second):
		t.Fatal("feed was not opened")
		return nil
	}
}

func send(t *testing.T, st *fakeStream, ev *Event) {
	t.Helper()
	select {
	case st.events <- ev:
	case <-time.After(time.Second):
		t.Fatal("event was not consumed")
	}
}

func waitReleased(t *testing.T, st *fakeStream) {
	t.Helper()
	select {
	case <-st.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("feed stream was not released")
	}
}

func receive(t *testing.T, w *Watch) (Result, bool) {
	t.Helper()
	select {
	case r, ok := <-w.Result():
		return r, ok
	case <-time.After(time.Second):
		t.Fatal("no result")
		return Result{}, false
	}
}

func TestCorrelator_ConfirmsOnce(t *testing.T) {
	feed := newFakeFeed()
	c := NewCorrelator(feed)

	w := c.Watch(context.Background(), alice, 100)
	st := nextStream(t, feed)
	if st.from != 100 {
		t.Fatalf("expected stream from block 100, got %d", st.from)
	}
	if len(st.initiators) != 1 || st.initiators[0] != alice {
		t.Fatalf("expected server-side filter on requester, got %v", st.initiators)
	}

	send(t, st, &Event{Initiator: bob, ContractAddress: common.HexToAddress("0xbb"), BlockNumber: 101})
	match := &Event{Initiator: alice, ContractAddress: contract, BlockNumber: 102, TxHash: common.HexToHash("0xaa")}
	send(t, st, match)

	r, ok := receive(t, w)
	if !ok || r.Err != nil || r.ContractAddress != contract {
		t.Fatalf("unexpected result %+v (ok=%v)", r, ok)
	}
	waitReleased(t, st)

	// A redelivered event after confirmation must not produce a second result
	select {
	case st.events <- match:
		t.Fatal("duplicate event was consumed after confirmation")
	case <-time.After(20 * time.Millisecond):
	}
	if _, ok := receive(t, w); ok {
		t.Fatal("result channel must be closed after the single result")
	}
}

func TestCorrelator_Timeout(t *testing.T) {
	feed := newFakeFeed()
	c := NewCorrelator(feed, WithTimeout(20*time.Millisecond))

	w := c.Watch(context.Background(), alice, 0)
	st := nextStream(t, feed)

	r, ok := receive(t, w)
	if !ok || !errors.Is(r.Err, ErrCorrelationTimeout) {
		t.Fatalf("expected ErrCorrelationTimeout, got %+v", r)
	}
	waitReleased(t, st)
}

func TestCorrelator_Cancel(t *testing.T) {
	feed := newFakeFeed()
	c := NewCorrelator(feed)

	w := c.Watch(context.Background(), alice, 0)
	st := nextStream(t, feed)
	w.Cancel()

	if r, ok := receive(t, w); ok {
		t.Fatalf("cancelled watch must not emit, got %+v", r)
	}
	waitReleased(t, st)
}

func TestSubscription_RestartsFromLastBlock(t *testing.T) {
	feed := newFakeFeed()
	sub := Subscribe(feed, 5, InitiatorIs(alice), WithBackoff(time.Millisecond, 5*time.Millisecond))
	defer sub.Unsubscribe()

	events := sub.Events()
	first := nextStream(t, feed)
	send(t, first, &Event{Initiator: bob, BlockNumber: 10})
	first.errs <- errors.New("connection reset")

	second := nextStream(t, feed)
	if second.from != 10 {
		t.Fatalf("expected restart from block 10, got %d", second.from)
	}
	send(t, second, &Event{Initiator: alice, ContractAddress: contract, BlockNumber: 12})

	select {
	case ev := <-events:
		if ev.ContractAddress != contract {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event after restart")
	}
}

func TestSubscription_Lazy(t *testing.T) {
	feed := newFakeFeed()
	sub := Subscribe(feed, 0, nil)
	time.Sleep(10 * time.Millisecond)
	if feed.Calls() != 0 {
		t.Fatal("subscription opened the feed before Events was called")
	}

	sub.Unsubscribe()
	sub.Unsubscribe()
	if _, ok := <-sub.Events(); ok {
		t.Fatal("events channel must be closed after Unsubscribe")
	}
	if feed.Calls() != 0 {
		t.Fatal("unsubscribed subscription must not open the feed")
	}
}

type watcherFunc func(ctx context.Context, fromBlock uint64, owners []common.Address, handler func(*ethereum.CompanyRegisteredEvent) error) error

func (f watcherFunc) WatchCompanyRegistered(ctx context.Context, fromBlock uint64, owners []common.Address, handler func(*ethereum.CompanyRegisteredEvent) error) error {
	return f(ctx, fromBlock, owners, handler)
}

func TestEthereumFeed(t *testing.T) {
	boom := errors.New("rpc gone")
	watcher := watcherFunc(func(_ context.Context, _ uint64, _ []common.Address, handler func(*ethereum.CompanyRegisteredEvent) error) error {
		if err := handler(&ethereum.CompanyRegisteredEvent{Owner: alice, PayrollContract: bob, Removed: true}); err != nil {
			return err
		}
		if err := handler(&ethereum.CompanyRegisteredEvent{Owner: alice, PayrollContract: contract, BlockNumber: 7}); err != nil {
			return err
		}
		return boom
	})

	feed := NewEthereumFeed(watcher, zap.NewNop())
	events, errs := feed.StreamEvents(context.Background(), 0, nil)

	var got []*Event
	for ev := range events {
		got = append(got, ev)
	}
	if len(got) != 1 || got[0].ContractAddress != contract || got[0].BlockNumber != 7 {
		t.Fatalf("unexpected events %+v", got)
	}
	if err := <-errs; !errors.Is(err, boom) {
		t.Fatalf("expected feed error, got %v", err)
	}
}
