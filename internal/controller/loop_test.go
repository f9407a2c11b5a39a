package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/hyprtext/internal/storage"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	defer l.Close()

	var got []int
	for i := 0; i < 5; i++ {
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatal("Post rejected")
		}
	}
	if err := l.Do(ctx, func() {}); err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
	if len(got) != 5 {
		t.Errorf("ran %d", len(got))
	}
}

func TestLoopClosedRejectsWork(t *testing.T) {
	l := NewLoop()
	go l.Run(context.Background())
	l.Close()

	if l.Post(func() {}) {
		t.Error("Post accepted after Close")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("err = %v", err)
	}
}

func TestLoopDoHonoursContext(t *testing.T) {
	l := NewLoop()
	go l.Run(context.Background())
	defer l.Close()

	block := make(chan struct{})
	l.Post(func() { <-block })
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}
}

func TestSerialDebouncedSortRunsOnLoop(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	defer l.Close()

	ctrl := New(storage.NewDisk(), WithDispatch(func(fn func()) { l.Post(fn) }), WithSortDelay(10*time.Millisecond))
	exec := NewSerial(l, ctrl)

	var id int
	err := exec.Exec(ctx, func(c *Controller) error {
		id = c.New().ID
		_, err := c.Edit(id, "b\na-", nil)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var buf string
		_ = exec.Exec(ctx, func(c *Controller) error {
			d, err := c.Document(id)
			buf = d.Buffer
			return err
		})
		if buf == "a-\nb" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("debounced sort never ran on the loop")
}

func TestSerialReturnsOperationError(t *testing.T) {
	l := NewLoop()
	go l.Run(context.Background())
	defer l.Close()

	exec := NewSerial(l, New(storage.NewDisk()))
	err := exec.Exec(context.Background(), func(c *Controller) error {
		_, err := c.SaveAs(Active, filepath.Join(t.TempDir(), "x.txt"))
		return err
	})
	if err == nil {
		t.Error("expected error for an empty session")
	}
}
