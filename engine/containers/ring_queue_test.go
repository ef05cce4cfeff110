package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d) error = %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue on full queue error = %v; want ErrQueueFull", err)
	}
	for want := 1; want <= 3; want++ {
		got, err := rq.Dequeue()
		if err != nil || got != want {
			t.Errorf("Dequeue() = %d, %v; want %d", got, err, want)
		}
	}
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Dequeue on empty queue error = %v; want ErrQueueEmpty", err)
	}
}

func TestRingQueuePushEvictsOldest(t *testing.T) {
	rq := NewRingQueue[int](2)
	rq.Push(1)
	rq.Push(2)
	rq.Push(3)

	var got []int
	rq.Each(func(v int) { got = append(got, v) })
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Each() visited %v; want [2 3]", got)
	}
	if v, _ := rq.Peek(); v != 2 {
		t.Errorf("Peek() = %d; want 2", v)
	}
}
