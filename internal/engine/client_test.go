package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProcessSendsMultipartFile(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "q1.csv", header.Filename)

		got, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "sku,qty\nA,3\n", string(got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"msg":"File processed successfully"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	resp, err := client.Process(context.Background(), "q1.csv", strings.NewReader("sku,qty\nA,3\n"))
	require.NoError(t, err)
	require.JSONEq(t, `{"msg":"File processed successfully"}`, string(resp))
}

func TestProcessNonOKCarriesBodyAsDetail(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"bad header row"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = client.Process(context.Background(), "q1.csv", strings.NewReader("broken"))
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	require.Equal(t, http.StatusUnprocessableEntity, engineErr.Status)
	require.Equal(t, map[string]any{"error": "bad header row"}, engineErr.EngineDetail())
}

func TestProcessConnectionRefused(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening any more

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.Process(context.Background(), "q1.csv", strings.NewReader("x"))
	require.Error(t, err)
	var engineErr *Error
	require.False(t, errors.As(err, &engineErr), "transport failures carry no engine detail")
}

func TestStatsPassThrough(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalSales":120,"totalCustomers":8}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	resp, err := client.Stats(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, `{"totalSales":120,"totalCustomers":8}`, string(resp))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()
	_, err := NewClient("  ", time.Second)
	require.Error(t, err)
}
