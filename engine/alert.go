package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ftahirops/celltop/model"
	"github.com/sirupsen/logrus"
)

// AlertConfig defines alert destinations.
type AlertConfig struct {
	Webhook string
	Command string
}

// Notifier sends alert notifications.
type Notifier struct {
	cfg    AlertConfig
	client *http.Client
	log    logrus.FieldLogger
}

// NewNotifier creates a notifier.
func NewNotifier(cfg AlertConfig, log logrus.FieldLogger) *Notifier {
	return &Notifier{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log,
	}
}

// Enabled returns true if any alert destination is configured.
func (n *Notifier) Enabled() bool {
	return n.cfg.Webhook != "" || n.cfg.Command != ""
}

// Notify sends an alert event asynchronously.
func (n *Notifier) Notify(event string, payload interface{}) {
	if !n.Enabled() {
		return
	}
	go n.notify(event, payload)
}

// validateWebhookURL checks that the webhook URL uses http/https and does not
// target loopback, private, link-local or cloud metadata addresses.
func validateWebhookURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("webhook URL must use http or https scheme, got %q", scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("webhook URL has no host")
	}
	blocked := []string{"metadata.google.internal", "localhost"}
	for _, b := range blocked {
		if host == b {
			return fmt.Errorf("webhook URL host %q is blocked", host)
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("webhook URL host %q is blocked", host)
		}
	}
	return nil
}

func (n *Notifier) notify(event string, payload interface{}) {
	body := map[string]interface{}{
		"event":   event,
		"payload": payload,
		"ts":      time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(body)
	if err != nil {
		n.log.WithError(err).Error("alert marshal")
		return
	}

	if n.cfg.Webhook != "" {
		if err := validateWebhookURL(n.cfg.Webhook); err != nil {
			n.log.WithError(err).Warn("webhook blocked")
		} else if err := n.post(data); err != nil {
			n.log.WithError(err).Warn("webhook delivery")
		}
	}

	if n.cfg.Command != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cmd := exec.CommandContext(ctx, "sh", "-c", n.cfg.Command)
		cmd.Env = append(os.Environ(), "CELLTOP_EVENT="+event, "CELLTOP_PAYLOAD="+string(data))
		if err := cmd.Run(); err != nil {
			n.log.WithError(err).Warn("alert command")
		}
	}
}

func (n *Notifier) post(data []byte) error {
	req, err := http.NewRequest(http.MethodPost, n.cfg.Webhook, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// alertingTicker notifies when the alert banner flips between normal and
// alerting. Only the previous banner state is kept between ticks, and it is
// shared by every session ticking through this wrapper.
type alertingTicker struct {
	inner    Ticker
	notifier *Notifier

	mu       sync.Mutex
	alerting bool
}

// NewAlertingTicker wraps a ticker with banner transition notifications.
func NewAlertingTicker(inner Ticker, n *Notifier) Ticker {
	return &alertingTicker{inner: inner, notifier: n}
}

func (t *alertingTicker) Tick() (*model.Snapshot, *model.Result) {
	snap, result := t.inner.Tick()
	if result == nil {
		return snap, result
	}
	if event := t.transition(result.Alerts); event != "" {
		t.notifier.Notify(event, map[string]interface{}{
			"banner": result.Alerts.Banner(),
			"alerts": result.Alerts.Alerts(),
		})
	}
	return snap, result
}

// transition records the new banner state and names the event, if any.
func (t *alertingTicker) transition(a model.AlertSet) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := !a.AllNormal()
	if now == t.alerting {
		return ""
	}
	t.alerting = now
	if now {
		return "alerts_raised"
	}
	return "alerts_cleared"
}
