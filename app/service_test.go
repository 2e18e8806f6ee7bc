package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ocppcs/config"
	"github.com/kilianp07/ocppcs/core/factory"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/core/tasklog"
	"github.com/kilianp07/ocppcs/test/util"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.API.Addr = "127.0.0.1:0"
	cfg.Transport.RequestTimeoutSeconds = 2
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.TaskLog = factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "tasks.jsonl")}}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestService_ClearCacheRoundTrip(t *testing.T) {
	cp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/soap+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope">
  <s:Body><clearCacheResponse xmlns="urn://Ocpp/Cp/2012/06/"><status>Accepted</status></clearCacheResponse></s:Body>
</s:Envelope>`))
	}))
	defer cp.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	svc, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()
	svc.StartCollector(ctx)

	params := `{"charge_points":[{"charge_box_id":"cb1","endpoint_address":"` + cp.URL + `"},` +
		`{"charge_box_id":"cb2","endpoint_address":"http://127.0.0.1:1"}]}`
	id, err := svc.Dispatcher.Execute(ctx, "ClearCache", []byte(params))
	require.NoError(t, err)

	snap, err := svc.Wait(ctx, id, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, snap.Finished)
	assert.Equal(t, 1, snap.Counts.Succeeded)
	assert.Equal(t, 1, snap.Counts.TransportError)

	require.Eventually(t, func() bool {
		recs, err := svc.Logs.Query(ctx, tasklog.Query{TaskID: id})
		return err == nil && len(recs) == 2
	}, 2*time.Second, 20*time.Millisecond)

	st, ok := svc.Status.Get("cb2")
	require.True(t, ok)
	assert.False(t, st.Reachable)
}

func TestService_WaitUnknownTask(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer svc.Close()
	_, err = svc.Wait(context.Background(), 42, time.Millisecond)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "42"))
}

func TestService_WaitHonorsContext(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer svc.Close()
	tk, err := svc.Tasks.Create(svc.Dispatcher.Version(), "Reset", []ocpp.ChargePointSelect{
		{ChargeBoxID: "cb1", EndpointAddress: "http://cb1"},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	snap, err := svc.Wait(ctx, tk.ID(), 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, snap.Finished)
	assert.Equal(t, 1, snap.Counts.Pending)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestService_RunServesAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Addr = freeAddr(t)
	cfg.API.ShutdownSeconds = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, err := New(ctx, cfg)
	require.NoError(t, err)
	defer svc.Close()

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	base := "http://" + cfg.API.Addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	body := `{"charge_points":[{"charge_box_id":"cb9","endpoint_address":"http://127.0.0.1:1"}]}`
	resp, err := http.Post(base+"/api/v1.5/operations/ClearCache", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	mctx, mcancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer mcancel()
	require.NoError(t, util.WaitForMetric(mctx, base+"/metrics", `ocpp_tasks_created_total{operation="ClearCache"}`))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}
