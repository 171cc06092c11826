package task

import (
	"sync"
	"testing"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[string, int]()
	for _, p := range []string{"A", "B", "C"} {
		q.Push(NewRecord[string, int](p))
	}

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	for _, want := range []string{"A", "B", "C"} {
		r, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() ok = false, want %s", want)
		}
		if r.Params != want {
			t.Errorf("Pop() = %s, want %s", r.Params, want)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("Pop() on empty queue should return false")
	}
}

func TestQueue_PushFront(t *testing.T) {
	q := NewQueue[string, int]()
	q.Push(NewRecord[string, int]("B"))
	q.Push(NewRecord[string, int]("C"))
	q.PushFront(NewRecord[string, int]("A"))

	var got []string
	for {
		r, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, r.Params)
	}
	if len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("order = %v, want [A B C]", got)
	}
}

func TestQueue_SnapshotIsCopy(t *testing.T) {
	q := NewQueue[string, int]()
	q.Push(NewRecord[string, int]("A"))

	snap := q.Snapshot()
	snap[0].Status = StatusDone

	r, _ := q.Pop()
	if r.Status != StatusPending {
		t.Errorf("Snapshot mutation leaked into queue: status = %v", r.Status)
	}
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue[string, int]()
	q.Push(NewRecord[string, int]("A"))
	q.Push(NewRecord[string, int]("B"))

	got := q.Drain()
	if len(got) != 2 || got[0].Params != "A" || got[1].Params != "B" {
		t.Errorf("Drain() = %v, want [A B]", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", q.Len())
	}
}

func TestQueue_ConcurrentPushPop(t *testing.T) {
	q := NewQueue[int, int]()
	const producers, perProducer = 8, 100

	var wg sync.WaitGroup
	for p := range producers {
		wg.Go(func() {
			for i := range perProducer {
				q.Push(NewRecord[int, int](p*perProducer + i))
			}
		})
	}
	wg.Wait()

	seen := make(map[int]bool)
	for {
		r, ok := q.Pop()
		if !ok {
			break
		}
		if seen[r.Params] {
			t.Fatalf("record %d popped twice", r.Params)
		}
		seen[r.Params] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("popped %d records, want %d", len(seen), producers*perProducer)
	}
}
