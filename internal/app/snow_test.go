package app

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleSnowStreamsSnapshot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snow.Enabled = true
	cfg.Snow.InitialBatch = 3
	env := newTestEnv(t, cfg, december(3, 12), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.srv.Snow().Start(ctx)
	defer env.srv.Snow().Stop()

	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/snow", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/snow error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	spawns := 0
	for spawns < 3 && scanner.Scan() {
		line := scanner.Text()
		if line == "event: spawn" {
			spawns++
			continue
		}
		if strings.HasPrefix(line, "data: ") && !strings.Contains(line, `"id":`) {
			t.Errorf("Unexpected data line %q", line)
		}
	}
	if spawns < 3 {
		t.Errorf("Expected at least 3 spawn events, got %d (err %v)", spawns, scanner.Err())
	}
}
