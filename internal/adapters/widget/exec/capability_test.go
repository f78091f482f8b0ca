package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/bnema/challenge-harvester/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test; the capability runs the test binary as its helper.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("HELPER_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "challenge rejected")
		os.Exit(3)
	case "empty":
		os.Exit(0)
	case "hang":
		time.Sleep(time.Minute)
	default:
		fmt.Printf("token:%s:%s:%s\nsecond line\n",
			os.Getenv("HARVEST_SITE_KEY"), os.Getenv("HARVEST_WIDGET_SIZE"), os.Getenv("HARVEST_WIDGET_ID"))
	}
	os.Exit(0)
}

type result struct {
	token string
	err   error
}

func helperCapability(t *testing.T, mode string) *Capability {
	t.Helper()

	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("HELPER_MODE", mode)

	return New([]string{os.Args[0], "-test.run=TestHelperProcess", "--"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func render(t *testing.T, capability *Capability, results chan<- result) (ports.Overlay, ports.WidgetID) {
	t.Helper()

	overlay, err := capability.Mount(context.Background(), ports.MountRequest{SessionID: "abcd1234"})
	require.NoError(t, err)

	id, err := capability.Render(overlay, ports.RenderOptions{
		SiteKey:         "site-key",
		Size:            "invisible",
		Callback:        func(token string) { results <- result{token: token} },
		ErrorCallback:   func(err error) { results <- result{err: err} },
		ExpiredCallback: func() { results <- result{err: errors.New("expired")} },
	})
	require.NoError(t, err)
	return overlay, id
}

func waitResult(t *testing.T, results <-chan result) result {
	t.Helper()

	select {
	case r := <-results:
		return r
	case <-time.After(10 * time.Second):
		t.Fatal("helper did not report an outcome")
		return result{}
	}
}

func TestExecuteDeliversHelperToken(t *testing.T) {
	capability := helperCapability(t, "token")
	require.True(t, capability.Ready())

	results := make(chan result, 1)
	overlay, id := render(t, capability, results)
	assert.Equal(t, ports.WidgetID("abcd1234-1"), id)

	require.NoError(t, capability.Execute(id))
	got := waitResult(t, results)
	require.NoError(t, got.err)
	assert.Equal(t, "token:site-key:invisible:abcd1234-1", got.token)

	require.NoError(t, overlay.Release())
	assert.Error(t, overlay.Release())
	assert.ErrorIs(t, capability.Execute(id), errUnknownWidget)
}

func TestExecuteHelperFailureReportsError(t *testing.T) {
	capability := helperCapability(t, "fail")

	results := make(chan result, 1)
	_, id := render(t, capability, results)
	require.NoError(t, capability.Execute(id))

	got := waitResult(t, results)
	require.Error(t, got.err)
	assert.Contains(t, got.err.Error(), "challenge rejected")
}

func TestExecuteEmptyOutputReportsError(t *testing.T) {
	capability := helperCapability(t, "empty")

	results := make(chan result, 1)
	_, id := render(t, capability, results)
	require.NoError(t, capability.Execute(id))

	got := waitResult(t, results)
	assert.ErrorIs(t, got.err, errEmptyToken)
}

func TestReleaseKillsRunningHelperSilently(t *testing.T) {
	capability := helperCapability(t, "hang")

	results := make(chan result, 1)
	overlay, id := render(t, capability, results)
	require.NoError(t, capability.Execute(id))

	require.NoError(t, overlay.Release())

	select {
	case r := <-results:
		t.Fatalf("released widget reported %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestReadyRequiresResolvableCommand(t *testing.T) {
	assert.False(t, New(nil, nil).Ready())
	assert.False(t, New([]string{"harvest-helper-that-does-not-exist"}, nil).Ready())

	_, err := New(nil, nil).Mount(context.Background(), ports.MountRequest{SessionID: "s"})
	assert.ErrorIs(t, err, errNoCommand)
}

func TestRenderRejectsForeignOverlay(t *testing.T) {
	first := New([]string{"helper"}, nil)
	second := New([]string{"helper"}, nil)

	overlay, err := first.Mount(context.Background(), ports.MountRequest{SessionID: "s"})
	require.NoError(t, err)

	_, err = second.Render(overlay, ports.RenderOptions{})
	assert.Error(t, err)
}
