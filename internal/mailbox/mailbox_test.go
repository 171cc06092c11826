package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/errors"
)

var (
	self  = address.New(0, 1)
	other = address.New(1, 1)
)

func TestMailbox_New(t *testing.T) {
	mb := New(self)
	if mb.Owner() != self {
		t.Errorf("Owner() = %v, want %v", mb.Owner(), self)
	}
	if mb.Len() != 0 || mb.Closed() {
		t.Errorf("new mailbox: Len() = %d, Closed() = %v", mb.Len(), mb.Closed())
	}
}

func TestMailbox_OrderPreserved(t *testing.T) {
	mb := New(self)
	order := []MessageType{MessageInitialized, MessageRun, MessageReadyAgain, MessagePause, MessageTerminate}
	for _, mt := range order {
		if err := mb.Deliver(NewMessage(mt, other, self, nil)); err != nil {
			t.Fatalf("Deliver(%v) error = %v", mt, err)
		}
	}

	ctx := context.Background()
	for _, want := range order {
		msg, err := mb.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive() error = %v", err)
		}
		if msg.Type != want {
			t.Errorf("Receive() = %v, want %v", msg.Type, want)
		}
	}
}

func TestMailbox_DeliverUnknownType(t *testing.T) {
	mb := New(self)
	if err := mb.Deliver(Message{Type: "bogus"}); err == nil {
		t.Error("Deliver() of unknown type should fail")
	}
}

func TestMailbox_ReceiveBlocksUntilDeliver(t *testing.T) {
	mb := New(self)
	got := make(chan Message, 1)

	go func() {
		msg, err := mb.Receive(context.Background())
		if err == nil {
			got <- msg
		}
	}()

	select {
	case <-got:
		t.Fatal("Receive() returned before any delivery")
	case <-time.After(20 * time.Millisecond):
	}

	if err := mb.Deliver(NewMessage(MessageStart, other, self, nil)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	select {
	case msg := <-got:
		if msg.Type != MessageStart {
			t.Errorf("Receive() = %v, want start", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive() did not wake after Deliver")
	}
}

func TestMailbox_ReceiveContextCancel(t *testing.T) {
	mb := New(self)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mb.Receive(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Receive() error = %v, want deadline exceeded", err)
	}
}

func TestMailbox_Close(t *testing.T) {
	mb := New(self)
	if err := mb.Deliver(NewMessage(MessageRun, other, self, nil)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	mb.Close()
	mb.Close() // idempotent

	if err := mb.Deliver(NewMessage(MessageRun, other, self, nil)); !errors.Is(err, errors.ErrMailboxClosed) {
		t.Errorf("Deliver() after Close error = %v, want ErrMailboxClosed", err)
	}

	// Queued messages drain before the closed error.
	msg, err := mb.Receive(context.Background())
	if err != nil || msg.Type != MessageRun {
		t.Fatalf("Receive() = %v, %v; want queued run message", msg.Type, err)
	}
	if _, err := mb.Receive(context.Background()); !errors.Is(err, errors.ErrMailboxClosed) {
		t.Errorf("Receive() error = %v, want ErrMailboxClosed", err)
	}
}

func TestMailbox_CloseWakesReceiver(t *testing.T) {
	mb := New(self)
	done := make(chan error, 1)
	go func() {
		_, err := mb.Receive(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	mb.Close()

	select {
	case err := <-done:
		if !errors.Is(err, errors.ErrMailboxClosed) {
			t.Errorf("Receive() error = %v, want ErrMailboxClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not wake the receiver")
	}
}

func TestMailbox_ConcurrentSenders(t *testing.T) {
	mb := New(self)
	const senders, each = 10, 50

	var wg sync.WaitGroup
	for s := range senders {
		wg.Go(func() {
			from := address.New(1, uint32(s+1))
			for range each {
				_ = mb.Deliver(NewMessage(MessageReadyAgain, from, self, nil))
			}
		})
	}
	wg.Wait()

	if mb.Len() != senders*each {
		t.Fatalf("Len() = %d, want %d", mb.Len(), senders*each)
	}

	// Per-sender order is preserved, so each sender's messages arrive in
	// timestamp order.
	last := make(map[address.Address]time.Time)
	for range senders * each {
		msg, ok := mb.TryReceive()
		if !ok {
			t.Fatal("TryReceive() ran dry early")
		}
		if prev, seen := last[msg.From]; seen && msg.Timestamp.Before(prev) {
			t.Fatalf("messages from %v reordered", msg.From)
		}
		last[msg.From] = msg.Timestamp
	}
}
