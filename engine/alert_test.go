package engine

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ftahirops/celltop/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWebhookURL(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		// Valid URLs
		{"https_valid", "https://hooks.slack.com/test", false},
		{"http_valid", "http://example.com/webhook", false},

		// Non-http schemes blocked
		{"ftp_blocked", "ftp://example.com", true},

		// Localhost blocked
		{"localhost_blocked", "http://localhost/webhook", true},
		{"loopback_blocked", "http://127.0.0.1/webhook", true},
		{"ipv6_loopback_blocked", "http://[::1]/webhook", true},

		// Cloud metadata blocked
		{"metadata_blocked", "http://169.254.169.254/latest", true},

		// Private IP ranges blocked
		{"private_10_blocked", "http://10.0.0.1/webhook", true},
		{"private_172_blocked", "http://172.16.0.1/webhook", true},
		{"private_192_blocked", "http://192.168.1.1/webhook", true},

		// Empty string fails
		{"empty_string", "", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validateWebhookURL(c.url)
			if c.wantErr && err == nil {
				t.Fatalf("expected error for URL %q, got nil", c.url)
			}
			if !c.wantErr && err != nil {
				t.Fatalf("expected no error for URL %q, got %v", c.url, err)
			}
		})
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestAlertingTickerTransitions(t *testing.T) {
	at := &alertingTicker{notifier: NewNotifier(AlertConfig{}, quietLogger())}

	hot := model.AlertSet{OverTemperature: []model.CellReading{{CellID: "Cell_01"}}}
	calm := model.AlertSet{}

	assert.Equal(t, "", at.transition(calm))
	assert.Equal(t, "alerts_raised", at.transition(hot))
	assert.Equal(t, "", at.transition(hot))
	assert.Equal(t, "alerts_cleared", at.transition(calm))
	assert.Equal(t, "", at.transition(calm))
}

// alternatingTicker yields an alerting snapshot, then a normal one, and so on.
type alternatingTicker struct{ n int }

func (t *alternatingTicker) Tick() (*model.Snapshot, *model.Result) {
	t.n++
	snap := mixedSnapshot()
	if t.n%2 == 1 {
		snap.Cells[0].TemperatureC = 44
	}
	return snap, EvaluateSnapshot(snap)
}

func TestAlertingTickerTracksLatestTickAcrossSessions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "events")
	n := NewNotifier(AlertConfig{Command: `echo "$CELLTOP_EVENT" >> ` + out}, quietLogger())
	shared := NewAlertingTicker(&alternatingTicker{}, n)

	a := NewSession(shared, SessionOptions{})
	b := NewSession(shared, SessionOptions{})

	assert.False(t, a.Refresh().AllNormal)
	assert.True(t, b.Refresh().AllNormal)
	assert.False(t, a.Refresh().AllNormal)

	// One bank-wide state: every flip of the latest tick notifies once,
	// whichever session asked for it.
	var events []string
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		if err != nil {
			return false
		}
		events = strings.Fields(string(data))
		return len(events) == 3
	}, 5*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []string{"alerts_raised", "alerts_cleared", "alerts_raised"}, events)
}

func TestNotifierDisabledWithoutDestinations(t *testing.T) {
	n := NewNotifier(AlertConfig{}, quietLogger())
	assert.False(t, n.Enabled())
	n.Notify("alerts_raised", nil)

	assert.True(t, NewNotifier(AlertConfig{Command: "true"}, quietLogger()).Enabled())
}

func TestPublishingTickerIgnoresErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	ticker := NewPublishingTicker(&stubTicker{base: mixedSnapshot()}, pub, quietLogger())

	snap, result := ticker.Tick()
	assert.NotNil(t, snap)
	assert.NotNil(t, result)
	assert.Len(t, pub.snaps, 1)
	assert.Same(t, snap, pub.snaps[0])
}
