// Package reporter delivers snapshots to the receiving endpoint.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"sysmon/internal/auth"
	"sysmon/internal/logger"
	"sysmon/internal/monitor"
)

const deliverTimeout = 10 * time.Second

// Reporter posts one snapshot per tick. Delivery is at-most-once: failures
// are logged and dropped, never retried, and a slow endpoint never delays
// the sampling loop.
type Reporter struct {
	client   *http.Client
	endpoint string
	agentID  string
	hostname string
	secret   string
	log      logger.Logger
	wg       sync.WaitGroup
}

func New(endpoint, agentID, hostname, secret string, log logger.Logger) *Reporter {
	return &Reporter{
		client:   &http.Client{Timeout: deliverTimeout},
		endpoint: endpoint,
		agentID:  agentID,
		hostname: hostname,
		secret:   secret,
		log:      log,
	}
}

// Report hands the snapshot to a delivery goroutine and returns immediately,
// so delivery latency cannot skew the next tick's elapsed-time measurement.
func (r *Reporter) Report(snap monitor.Snapshot) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()

		if err := r.send(ctx, snap); err != nil {
			r.log.Warn("delivery failed", "endpoint", r.endpoint, "error", err)
		}
	}()
}

func (r *Reporter) send(ctx context.Context, snap monitor.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-ID", r.agentID)
	req.Header.Set("X-Agent-Host", r.hostname)

	if r.secret != "" {
		token, err := auth.MintToken(r.secret, r.agentID, time.Minute)
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}

	r.log.Debug("snapshot delivered", "status", resp.StatusCode)
	return nil
}

// Close waits for in-flight deliveries until ctx expires. At most one
// delivery can be lost on shutdown.
func (r *Reporter) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}
