package rotating

import (
	"errors"
	"testing"
)

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(0) did not panic")
		}
	}()
	New[int](0)
}

func TestBuffer_EmptyReadsReportNothing(t *testing.T) {
	b := New[int](3)

	if _, ok := b.First(); ok {
		t.Error("First() on empty buffer reported a value")
	}
	if _, ok := b.Last(); ok {
		t.Error("Last() on empty buffer reported a value")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBuffer_FirstLastAcrossPushCounts(t *testing.T) {
	for capacity := 1; capacity <= 6; capacity++ {
		for pushes := 0; pushes <= 3*capacity+1; pushes++ {
			b := New[int](capacity)
			for i := 0; i < pushes; i++ {
				b.Push(i)
			}

			wantLen := pushes
			if wantLen > capacity {
				wantLen = capacity
			}
			if b.Len() != wantLen {
				t.Errorf("N=%d M=%d: Len() = %d, want %d", capacity, pushes, b.Len(), wantLen)
			}
			if len(b.Values()) != wantLen {
				t.Errorf("N=%d M=%d: len(Values()) = %d, want %d", capacity, pushes, len(b.Values()), wantLen)
			}

			if pushes == 0 {
				continue
			}

			last, ok := b.Last()
			if !ok || last != pushes-1 {
				t.Errorf("N=%d M=%d: Last() = %d, %v; want %d", capacity, pushes, last, ok, pushes-1)
			}

			wantFirst := 0
			if pushes > capacity {
				wantFirst = pushes - capacity
			}
			first, ok := b.First()
			if !ok || first != wantFirst {
				t.Errorf("N=%d M=%d: First() = %d, %v; want %d", capacity, pushes, first, ok, wantFirst)
			}
		}
	}
}

func TestBuffer_ValuesOldestFirst(t *testing.T) {
	b := New[string](3)
	b.Push("a").Push("b").Push("c").Push("d").Push("e")

	got := b.Values()
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
	if !b.Full() {
		t.Error("Full() = false after wrapping")
	}
}

func TestBuffer_Clear(t *testing.T) {
	b := New[int](2)
	b.Push(1).Push(2).Push(3)
	b.Clear()

	if _, ok := b.First(); ok {
		t.Error("First() after Clear reported a value")
	}
	if _, ok := b.Last(); ok {
		t.Error("Last() after Clear reported a value")
	}

	b.Push(42)
	first, _ := b.First()
	last, _ := b.Last()
	if first != 42 || last != 42 {
		t.Errorf("after Clear+Push: First() = %d, Last() = %d, want 42", first, last)
	}
}

func TestBuffer_RemovalAlwaysFails(t *testing.T) {
	states := map[string]func() *Buffer[int]{
		"empty": func() *Buffer[int] { return New[int](3) },
		"partial": func() *Buffer[int] {
			return New[int](3).Push(1)
		},
		"full": func() *Buffer[int] {
			return New[int](3).Push(1).Push(2).Push(3)
		},
		"wrapped": func() *Buffer[int] {
			return New[int](3).Push(1).Push(2).Push(3).Push(4)
		},
		"cleared": func() *Buffer[int] {
			b := New[int](3).Push(1)
			b.Clear()
			return b
		},
	}

	for name, build := range states {
		t.Run(name, func(t *testing.T) {
			b := build()
			before := b.Values()

			if _, err := b.Pop(); !errors.Is(err, ErrInvalidOperation) {
				t.Errorf("Pop() error = %v, want ErrInvalidOperation", err)
			}
			if _, err := b.Shift(); !errors.Is(err, ErrInvalidOperation) {
				t.Errorf("Shift() error = %v, want ErrInvalidOperation", err)
			}
			if err := b.Unshift(9); !errors.Is(err, ErrInvalidOperation) {
				t.Errorf("Unshift() error = %v, want ErrInvalidOperation", err)
			}
			if len(b.Values()) != len(before) {
				t.Errorf("failed removal changed contents: %v -> %v", before, b.Values())
			}
		})
	}
}
