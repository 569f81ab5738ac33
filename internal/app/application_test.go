package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/internal/workqueue"
)

func newTestApp(t *testing.T, base string, reg *registry, opts ...func(*Options)) *Application {
	t.Helper()
	o := Options{
		BaseDir:         base,
		NewGroup:        reg.factory,
		TickInterval:    50 * time.Millisecond,
		KillWait:        500 * time.Millisecond,
		ShutdownTimeout: 5 * time.Second,
	}
	for _, fn := range opts {
		fn(&o)
	}
	a, err := New("app", o)
	require.NoError(t, err)
	return a
}

// asServer switches a to server mode without binding anything.
func asServer(a *Application) *workqueue.Queue {
	q := workqueue.New()
	a.mu.Lock()
	a.mode = ModeServer
	a.queue = q
	a.mu.Unlock()
	return q
}

func TestNew(t *testing.T) {
	a, err := New("app", Options{})
	require.NoError(t, err)
	assert.Equal(t, ModeClient, a.Mode())
	assert.Equal(t, DefaultBaseDir, a.BaseDir())
	assert.Equal(t, time.Second, a.opts.TickInterval)

	for _, name := range []string{"", "a/b", "a:b"} {
		_, err := New(name, Options{})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig, "name %q", name)
	}
}

func TestAddProcess_GetOrCreateGroup(t *testing.T) {
	reg := newRegistry()
	a := newTestApp(t, t.TempDir(), reg)

	require.NoError(t, a.AddProcess(&fakeProcess{name: "P"}, ""))
	require.NoError(t, a.AddProcess(&fakeProcess{name: "Q"}, "web"))
	require.NoError(t, a.AddProcess(&fakeProcess{name: "R"}, "web"))

	groups := a.snapshot()
	require.Len(t, groups, 2)
	assert.Equal(t, "", groups[0].Name())
	assert.Equal(t, "web", groups[1].Name())
	assert.Len(t, reg.get("web").Status(), 2)
}

func TestServerMode_StatusReport(t *testing.T) {
	a := newTestApp(t, t.TempDir(), newRegistry())
	require.NoError(t, a.AddProcess(&fakeProcess{name: "P", state: "running"}, ""))
	require.NoError(t, a.AddProcess(&fakeProcess{name: "Q", state: "stopped"}, "web"))
	asServer(a)

	out, err := a.Status(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "P: running\n\nweb:\n  Q: stopped\n\n", out)
}

func TestServerMode_StopGroupEnqueuesOneItem(t *testing.T) {
	reg := newRegistry()
	a := newTestApp(t, t.TempDir(), reg)
	require.NoError(t, a.AddProcess(&fakeProcess{name: "P"}, ""))
	require.NoError(t, a.AddProcess(&fakeProcess{name: "Q"}, "web"))
	require.NoError(t, a.AddProcess(&fakeProcess{name: "R"}, "db"))
	q := asServer(a)

	resp, err := a.Stop(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	require.Equal(t, 1, q.Len())

	item, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, domain.WorkItem{Verb: domain.VerbStop, Target: "web"}, item)

	require.NoError(t, a.dispatch(item))
	assert.Equal(t, []string{"stop:"}, reg.get("web").Calls())
	assert.Empty(t, reg.get("").Calls())
	assert.Empty(t, reg.get("db").Calls())
}

func TestServerMode_CommandAfterWorkerDrainedIsRejected(t *testing.T) {
	reg := newRegistry()
	a := newTestApp(t, t.TempDir(), reg)
	require.NoError(t, a.AddProcess(&fakeProcess{name: "Q"}, "web"))
	q := asServer(a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.work(ctx, q) }()

	q.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not return after close")
	}

	resp, err := a.Stop(context.Background(), "web")
	require.ErrorIs(t, err, domain.ErrNotRunning)
	assert.ErrorIs(t, err, workqueue.ErrClosed)
	assert.Empty(t, resp)
	assert.Zero(t, q.Len())
	assert.Empty(t, reg.get("web").Calls())

	// Status is rendered locally and still answers.
	_, err = a.Status(context.Background(), "")
	require.NoError(t, err)
}

func TestDispatch_Broadcast(t *testing.T) {
	tests := []struct {
		name   string
		item   domain.WorkItem
		expect string
	}{
		{"target matches no group", domain.WorkItem{Verb: domain.VerbRestart, Target: "api"}, "restart:api"},
		{"empty target", domain.WorkItem{Verb: domain.VerbUnmonitor}, "unmonitor:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry()
			a := newTestApp(t, t.TempDir(), reg)
			require.NoError(t, a.AddProcess(&fakeProcess{name: "P"}, ""))
			require.NoError(t, a.AddProcess(&fakeProcess{name: "Q"}, "web"))

			require.NoError(t, a.dispatch(tt.item))
			assert.Equal(t, []string{tt.expect}, reg.get("").Calls())
			assert.Equal(t, []string{tt.expect}, reg.get("web").Calls())
		})
	}
}

func TestDispatch_UnknownVerb(t *testing.T) {
	a := newTestApp(t, t.TempDir(), newRegistry())
	err := a.dispatch(domain.WorkItem{Verb: domain.VerbStatus})
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)
}

func TestControl_UnknownVerb(t *testing.T) {
	a := newTestApp(t, t.TempDir(), newRegistry())
	asServer(a)

	_, err := a.Control(context.Background(), domain.Verb("explode"), "")
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)

	_, err = a.handleLine(context.Background(), "explode:web")
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)
}

func TestHandleLine(t *testing.T) {
	a := newTestApp(t, t.TempDir(), newRegistry())
	require.NoError(t, a.AddProcess(&fakeProcess{name: "P", state: "up"}, ""))
	q := asServer(a)

	resp, err := a.handleLine(context.Background(), "status\n")
	require.NoError(t, err)
	assert.Equal(t, "P: up\n\n", resp)

	resp, err = a.handleLine(context.Background(), "start:P")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", resp)
	assert.Equal(t, 1, q.Len())
}

func TestStatus_DoesNotCreateGroups(t *testing.T) {
	a := newTestApp(t, t.TempDir(), newRegistry())
	asServer(a)

	out, err := a.Status(context.Background(), "web")
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, a.dispatch(domain.WorkItem{Verb: domain.VerbStop, Target: "web"}))
	assert.Empty(t, a.snapshot())
}

func TestClientMode_NoServer(t *testing.T) {
	a := newTestApp(t, shortDir(t), newRegistry(), func(o *Options) {
		o.DialTimeout = 500 * time.Millisecond
		o.ResponseTimeout = time.Second
	})

	start := time.Now()
	_, err := a.Status(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrChannelUnavailable)

	_, err = a.Stop(context.Background(), "web")
	assert.ErrorIs(t, err, domain.ErrChannelUnavailable)
	assert.Less(t, time.Since(start), 3*time.Second)
}
