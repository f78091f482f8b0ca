package prompt

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bnema/challenge-harvester/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

type events struct {
	tokens  chan string
	errors  chan error
	expired chan struct{}
}

func newEvents() events {
	return events{tokens: make(chan string, 4), errors: make(chan error, 4), expired: make(chan struct{}, 4)}
}

func (e events) options() ports.RenderOptions {
	return ports.RenderOptions{
		Size:            "normal",
		Theme:           "light",
		Callback:        func(token string) { e.tokens <- token },
		ErrorCallback:   func(err error) { e.errors <- err },
		ExpiredCallback: func() { e.expired <- struct{}{} },
	}
}

func setup(t *testing.T) (*Capability, *io.PipeWriter, *syncBuffer) {
	t.Helper()

	reader, writer := io.Pipe()
	out := &syncBuffer{}
	t.Cleanup(func() { _ = writer.Close() })

	return New(reader, out), writer, out
}

func mountAndRender(t *testing.T, capability *Capability, ev events) ports.Overlay {
	t.Helper()

	overlay, err := capability.Mount(context.Background(), ports.MountRequest{SessionID: "sess0001"})
	require.NoError(t, err)
	_, err = capability.Render(overlay, ev.options())
	require.NoError(t, err)
	return overlay
}

func write(t *testing.T, w io.Writer, line string) {
	t.Helper()

	_, err := io.WriteString(w, line+"\n")
	require.NoError(t, err)
}

func TestPastedLineIsToken(t *testing.T) {
	capability, in, out := setup(t)
	require.True(t, capability.Ready())

	ev := newEvents()
	mountAndRender(t, capability, ev)
	assert.Contains(t, out.String(), "Challenge sess0001-1 ready")

	write(t, in, "  ")
	write(t, in, " 03AFcWeA-pasted ")

	select {
	case token := <-ev.tokens:
		assert.Equal(t, "03AFcWeA-pasted", token)
	case <-time.After(5 * time.Second):
		t.Fatal("token not delivered")
	}
}

func TestCommandsTriggerErrorAndExpired(t *testing.T) {
	capability, in, _ := setup(t)

	ev := newEvents()
	mountAndRender(t, capability, ev)

	write(t, in, "!error")
	select {
	case err := <-ev.errors:
		assert.ErrorIs(t, err, errChallengeFailed)
	case <-time.After(5 * time.Second):
		t.Fatal("error not delivered")
	}

	write(t, in, "!expired")
	select {
	case <-ev.expired:
	case <-time.After(5 * time.Second):
		t.Fatal("expiry not delivered")
	}
}

func TestReleasedOverlayIgnoresLines(t *testing.T) {
	capability, in, out := setup(t)

	ev := newEvents()
	overlay := mountAndRender(t, capability, ev)
	require.NoError(t, overlay.Release())
	assert.Error(t, overlay.Release())

	write(t, in, "late-token")

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("No challenge pending"))
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, ev.tokens)

	_, err := capability.Render(overlay, ev.options())
	assert.Error(t, err)
}

func TestClosedInputReportsErrorAndBecomesUnready(t *testing.T) {
	capability, in, _ := setup(t)

	ev := newEvents()
	mountAndRender(t, capability, ev)
	require.NoError(t, in.Close())

	select {
	case err := <-ev.errors:
		assert.Contains(t, err.Error(), "operator input closed")
	case <-time.After(5 * time.Second):
		t.Fatal("close not reported")
	}
	assert.Eventually(t, func() bool { return !capability.Ready() }, 5*time.Second, 10*time.Millisecond)
}

func TestExecuteIsNotSupported(t *testing.T) {
	capability, _, _ := setup(t)

	assert.ErrorIs(t, capability.Execute("sess0001-1"), ErrHumanTriggered)
}

func TestRenderRacingReleaseNeverLeavesReleasedOverlayActive(t *testing.T) {
	capability, _, _ := setup(t)
	ev := newEvents()

	for i := 0; i < 200; i++ {
		overlay, err := capability.Mount(context.Background(), ports.MountRequest{SessionID: "sess0001"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = capability.Render(overlay, ev.options())
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, overlay.Release())
		}()
		wg.Wait()

		capability.mu.Lock()
		active := capability.active
		capability.mu.Unlock()
		if active != nil {
			require.NotSame(t, overlay, active.overlay, "iteration %d left a released overlay active", i)
		}
	}
}
