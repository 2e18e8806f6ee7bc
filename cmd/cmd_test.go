package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTaskGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/tasks/3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":3,"finished":true}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "task", "get", "3", "--server", srv.URL, "--token", "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"finished":true}`, out)

	_, err = runCLI(t, "task", "get", "4", "--server", srv.URL, "--token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOperationsCommand(t *testing.T) {
	out, err := runCLI(t, "operations")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 15)
	assert.Contains(t, out, "ReserveNow (single charge point)")
}

func TestReadParams(t *testing.T) {
	_, err := readParams("")
	require.Error(t, err)

	b, err := readParams(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))

	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"b":2}`), 0o600))
	b, err = readParams("@" + path)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(b))
}
