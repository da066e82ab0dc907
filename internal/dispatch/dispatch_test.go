package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/microcache-go/internal/protocol"
	"github.com/yndnr/microcache-go/internal/storage"
	"github.com/yndnr/microcache-go/internal/storage/memory"
)

func TestCompletion_FirstWins(t *testing.T) {
	c := NewCompletion()
	if !c.Resolve([]byte("OK\r\n")) {
		t.Fatal("first Resolve should take effect")
	}
	if c.Resolve([]byte("again")) {
		t.Error("second Resolve should be ignored")
	}
	if c.Fail(errors.New("late")) {
		t.Error("Fail after Resolve should be ignored")
	}

	resp, err := c.Wait(context.Background())
	if err != nil || string(resp) != "OK\r\n" {
		t.Errorf("Wait() = (%q, %v), want (OK, nil)", resp, err)
	}
}

func TestCompletion_Fail(t *testing.T) {
	c := NewCompletion()
	c.Fail(ErrInternal)

	_, err := c.Wait(context.Background())
	if !errors.Is(err, ErrInternal) {
		t.Errorf("Wait() error = %v, want ErrInternal", err)
	}
}

func TestCompletion_WaitCancelled(t *testing.T) {
	c := NewCompletion()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestNewCommand_CopiesValue(t *testing.T) {
	buf := []byte("SET K 5 hello 10")
	req := protocol.ParseCommand(buf)
	cmd := NewCommand(req)

	copy(buf, "XXXXXXXXXXXXXXXX")
	if string(cmd.Value) != "hello" {
		t.Errorf("Value = %q, want hello", cmd.Value)
	}
}

func TestDispatcher_FIFO(t *testing.T) {
	d := NewDispatcher()
	for i := 0; i < 5; i++ {
		if err := d.Submit(NewCommand(protocol.Request{Kind: protocol.KindGet, Key: fmt.Sprint(i)})); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if d.Len() != 5 {
		t.Errorf("Len() = %d, want 5", d.Len())
	}

	for i := 0; i < 5; i++ {
		cmd, err := d.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if cmd.Key != fmt.Sprint(i) {
			t.Errorf("Next() key = %s, want %d", cmd.Key, i)
		}
	}
}

func TestDispatcher_NextWaits(t *testing.T) {
	d := NewDispatcher()
	got := make(chan *Command, 1)

	go func() {
		cmd, err := d.Next(context.Background())
		if err == nil {
			got <- cmd
		}
	}()

	time.Sleep(20 * time.Millisecond)
	_ = d.Submit(NewCommand(protocol.Request{Kind: protocol.KindStat}))

	select {
	case cmd := <-got:
		if cmd.Kind != protocol.KindStat {
			t.Errorf("Kind = %v, want stat", cmd.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after Submit")
	}
}

func TestDispatcher_NextCancelled(t *testing.T) {
	d := NewDispatcher()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := d.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Next() error = %v, want DeadlineExceeded", err)
	}
}

func TestDispatcher_CloseFailsPending(t *testing.T) {
	d := NewDispatcher()
	cmds := make([]*Command, 3)
	for i := range cmds {
		cmds[i] = NewCommand(protocol.Request{Kind: protocol.KindGet, Key: "k"})
		_ = d.Submit(cmds[i])
	}

	if n := d.Close(); n != 3 {
		t.Errorf("Close() failed %d commands, want 3", n)
	}
	for i, cmd := range cmds {
		if _, err := cmd.Completion.Wait(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("cmd %d error = %v, want ErrClosed", i, err)
		}
	}

	if err := d.Submit(NewCommand(protocol.Request{})); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close = %v, want ErrClosed", err)
	}
	if _, err := d.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Next after Close = %v, want ErrClosed", err)
	}
	if n := d.Close(); n != 0 {
		t.Errorf("second Close() = %d, want 0", n)
	}
}

func TestDispatcher_CloseWakesWaiters(t *testing.T) {
	d := NewDispatcher()
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := d.Next(context.Background())
			errs <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	d.Close()

	for i := 0; i < 4; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrClosed) {
				t.Errorf("Next() error = %v, want ErrClosed", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("waiter not released by Close")
		}
	}
}

func TestPool_Execute(t *testing.T) {
	p := NewPool(NewDispatcher(), memory.New())

	steps := []struct {
		frame string
		want  string
	}{
		{"GET A", "(nil)\r\n"},
		{"SET A 5 hello 5", "OK\r\n"},
		{"GET A", "hello\r\n"},
		{"DELETE A", "OK\r\n"},
		{"DELETE A", "OK\r\n"},
		{"GET A", "(nil)\r\n"},
		{"STAT", "GET: 000003; SET: 000001; DELETE: 000002;\r\n"},
		{"GET", "-ERR UnknownOrMalformedCommand\r\n"},
		{"FLUSH ALL", "-ERR UnknownOrMalformedCommand\r\n"},
	}
	for _, s := range steps {
		got := p.Execute(protocol.ParseCommand([]byte(s.frame)))
		if string(got) != s.want {
			t.Errorf("Execute(%q) = %q, want %q", s.frame, got, s.want)
		}
	}
}

func TestPool_MalformedDoesNotTouchStore(t *testing.T) {
	store := memory.New()
	p := NewPool(NewDispatcher(), store)
	p.Execute(protocol.ParseCommand([]byte("SET ")))

	if st := store.Stats(); st != (storage.Stats{}) {
		t.Errorf("Stats() = %+v, want zero", st)
	}
}

type panicCache struct{ storage.Cache }

func (panicCache) Get(string) ([]byte, bool) { panic("boom") }

type recordingObserver struct {
	mu     sync.Mutex
	kinds  []string
	failed []bool
}

func (o *recordingObserver) ObserveCommand(kind string, failed bool, _, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
	o.failed = append(o.failed, failed)
}

func TestPool_PanicFailsCompletion(t *testing.T) {
	d := NewDispatcher()
	obs := &recordingObserver{}
	p := NewPool(d, panicCache{}, WithSize(1), WithObserver(obs))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cmd := NewCommand(protocol.Request{Kind: protocol.KindGet, Key: "k"})
	_ = d.Submit(cmd)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if _, err := cmd.Completion.Wait(waitCtx); !errors.Is(err, ErrInternal) {
		t.Errorf("Wait() error = %v, want ErrInternal", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}

	if st := p.Stats(); st.Read != 1 || st.Failed != 1 || st.Good != 0 {
		t.Errorf("Stats() = %+v, want one failed read", st)
	}
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.kinds) != 1 || obs.kinds[0] != "get" || !obs.failed[0] {
		t.Errorf("observer saw %v %v, want one failed get", obs.kinds, obs.failed)
	}
}

func TestPool_RunDrainsConcurrently(t *testing.T) {
	d := NewDispatcher()
	store := memory.New()
	p := NewPool(d, store, WithSize(4))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	const n = 500
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := NewCommand(protocol.Request{Kind: protocol.KindSet, Key: fmt.Sprint(i), Value: []byte("v"), TTL: time.Minute})
			if err := d.Submit(cmd); err != nil {
				t.Errorf("Submit: %v", err)
				return
			}
			resp, err := cmd.Completion.Wait(ctx)
			if err != nil || string(resp) != "OK\r\n" {
				t.Errorf("Wait() = (%q, %v)", resp, err)
			}
		}(i)
	}
	wg.Wait()

	if got := store.Stats().Sets; got != n {
		t.Errorf("Sets = %d, want %d", got, n)
	}

	d.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestNewPool_DefaultSize(t *testing.T) {
	p := NewPool(NewDispatcher(), memory.New(), WithSize(0))
	if p.Size() <= 0 {
		t.Errorf("Size() = %d, want > 0", p.Size())
	}
}
