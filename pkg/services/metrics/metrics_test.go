package metrics

import (
	"io"
	"net/http"
	"testing"

	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, url string) (int, string) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestPrometheusService(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"localhost:0", "localhost:0"}}
	srv := NewPrometheusService(cfg, zaptest.NewLogger(t))
	require.Equal(t, "Prometheus", srv.Name())
	require.NoError(t, srv.Start())
	t.Cleanup(srv.ShutDown)

	addrs := srv.Addresses()
	require.Len(t, addrs, 1)
	code, body := get(t, "http://"+addrs[0]+"/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "go_goroutines")

	// Second start is a no-op.
	require.NoError(t, srv.Start())
}

func TestPprofService(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"localhost:0"}}
	srv := NewPprofService(cfg, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.ShutDown)

	code, _ := get(t, "http://"+srv.Addresses()[0]+"/debug/pprof/")
	require.Equal(t, http.StatusOK, code)
}

func TestDisabledService(t *testing.T) {
	srv := NewPrometheusService(config.BasicService{Addresses: []string{"localhost:0"}}, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())
	srv.ShutDown()
	require.Nil(t, NewPrometheusService(config.BasicService{}, nil))
}
