package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/cluster"
	"github.com/Iron-Ham/clusterexec/internal/errors"
	"github.com/Iron-Ham/clusterexec/internal/mailbox"
	"github.com/Iron-Ham/clusterexec/internal/task"
	"github.com/Iron-Ham/clusterexec/internal/testutil"
)

// tb is the subset of testing.TB that both *testing.T and *rapid.T offer.
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
}

type monitorEntry struct {
	ch     chan cluster.Down
	closed bool
}

// fakeRuntime is a single-node cluster.Runtime whose overseers are plain
// addresses. Messages to the coordinator land in its mailbox; everything
// else is recorded.
type fakeRuntime struct {
	mu         sync.Mutex
	processors int
	self       address.Address
	box        *mailbox.Mailbox
	nextLocal  uint32
	sent       []mailbox.Message
	monitors   map[address.Address]*monitorEntry
	spawnErr   error
	sendErr    func(mailbox.Message) error
}

func newFakeRuntime(processors int) *fakeRuntime {
	return &fakeRuntime{
		processors: processors,
		nextLocal:  1,
		monitors:   make(map[address.Address]*monitorEntry),
	}
}

func (f *fakeRuntime) LocalNode() address.NodeID              { return 0 }
func (f *fakeRuntime) RemoteNodes() []address.NodeID          { return nil }
func (f *fakeRuntime) ProcessorCount(node address.NodeID) int { return f.processors }
func (f *fakeRuntime) WorkerCount(node address.NodeID) int    { return 0 }

func (f *fakeRuntime) Attach(role cluster.Role) (address.Address, *mailbox.Mailbox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.self = address.New(0, f.nextLocal)
	f.nextLocal++
	f.box = mailbox.New(f.self)
	return f.self, f.box, nil
}

func (f *fakeRuntime) Spawn(ctx context.Context, node address.NodeID, role cluster.Role) (address.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.spawnErr != nil {
		return address.Address{}, f.spawnErr
	}
	addr := address.New(node, f.nextLocal)
	f.nextLocal++
	return addr, nil
}

func (f *fakeRuntime) Monitor(ctx context.Context, addr address.Address) (<-chan cluster.Down, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &monitorEntry{ch: make(chan cluster.Down, 1)}
	f.monitors[addr] = e
	context.AfterFunc(ctx, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !e.closed {
			e.closed = true
			close(e.ch)
		}
	})
	return e.ch, nil
}

// down reports addr as failed through its monitor.
func (f *fakeRuntime) down(addr address.Address, reason error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.monitors[addr]
	if !ok || e.closed {
		return
	}
	e.ch <- cluster.Down{Addr: addr, Reason: reason}
	e.closed = true
	close(e.ch)
}

func (f *fakeRuntime) Send(msg mailbox.Message) error {
	f.mu.Lock()
	hook := f.sendErr
	self, box := f.self, f.box
	f.mu.Unlock()

	if hook != nil {
		if err := hook(msg); err != nil {
			return err
		}
	}
	if msg.To == self {
		if err := box.Deliver(msg); err != nil {
			return errors.NewClusterError("send failed", err).WithAddress(msg.To.String())
		}
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

// sentOf returns the recorded messages of type t.
func (f *fakeRuntime) sentOf(t mailbox.MessageType) []mailbox.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mailbox.Message
	for _, m := range f.sent {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// harness drives a coordinator's handlers synchronously, without the loop
// goroutine.
type harness struct {
	t   tb
	rt  *fakeRuntime
	rec *testutil.Recorder[string, int]
	c   *Coordinator[string, int]
	now time.Time
}

func newHarness(t tb, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:   t,
		rt:  newFakeRuntime(4),
		rec: testutil.NewRecorder[string, int](),
		now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	opts = append([]Option{WithID("test"), WithClock(h.clock)}, opts...)
	c, err := New[string, int](h.rt, h.rec, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.c = c
	return h
}

func (h *harness) clock() time.Time {
	h.now = h.now.Add(time.Second)
	return h.now
}

// deliver queues a message from sender to the coordinator.
func (h *harness) deliver(t mailbox.MessageType, from address.Address, payload []byte) {
	h.t.Helper()
	if err := h.c.box.Deliver(mailbox.NewMessage(t, from, h.c.addr, payload)); err != nil {
		h.t.Fatalf("Deliver %s failed: %v", t, err)
	}
}

// pump handles queued messages until the mailbox is empty or a handler
// fails.
func (h *harness) pump() error {
	for {
		msg, ok := h.c.box.TryReceive()
		if !ok {
			return nil
		}
		if err := h.c.handle(msg); err != nil {
			return err
		}
	}
}

func (h *harness) mustPump() {
	h.t.Helper()
	if err := h.pump(); err != nil {
		h.t.Fatalf("pump failed: %v", err)
	}
}

// run brings the coordinator to running.
func (h *harness) run() {
	h.t.Helper()
	h.deliver(mailbox.MessageInitialized, h.c.addr, nil)
	h.deliver(mailbox.MessageRun, h.c.addr, nil)
	h.mustPump()
}

// assignments returns the tasks sent to overseers, in send order.
func (h *harness) assignments() []assignment {
	h.t.Helper()
	var out []assignment
	for _, m := range h.rt.sentOf(mailbox.MessageReplyTask) {
		rec, err := task.Decode[string, int](m.Payload)
		if err != nil {
			h.t.Fatalf("ReplyTask payload: %v", err)
		}
		out = append(out, assignment{to: m.To, rec: rec})
	}
	return out
}

type assignment struct {
	to  address.Address
	rec *task.Record[string, int]
}

// report sends a completion for rec from overseer.
func (h *harness) report(overseer address.Address, rec *task.Record[string, int], result int, failed bool) {
	h.t.Helper()
	reported := rec.Clone()
	t := mailbox.MessageResult
	if failed {
		t = mailbox.MessageResultError
		reported.Error = "boom"
	} else {
		reported.Result = &result
		reported.Status = task.StatusDone
	}
	payload, err := task.Encode(reported)
	if err != nil {
		h.t.Fatalf("Encode failed: %v", err)
	}
	h.deliver(t, overseer, payload)
}

var (
	overseerA = address.New(1, 10)
	overseerB = address.New(1, 11)
	overseerC = address.New(1, 12)
)
