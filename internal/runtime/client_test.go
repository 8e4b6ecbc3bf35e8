package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

func TestTestRun_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/workflows/wf-1/test/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req schema.RunRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.TestMode)
		assert.Equal(t, map[string]any{"q": "x"}, req.InputData)

		json.NewEncoder(w).Encode(schema.RunResult{
			NodeExecutions: []schema.NodeExecution{
				{NodeID: "node_a", Status: schema.NodeStatusSuccess},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result, err := c.TestRun(context.Background(), "wf-1", schema.RunRequest{
		InputData: map[string]any{"q": "x"},
		TestMode:  true,
	})
	require.NoError(t, err)
	require.Len(t, result.NodeExecutions, 1)
	assert.Equal(t, "node_a", result.NodeExecutions[0].NodeID)
}

func TestTestRun_DetailErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "workflow has no trigger"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).TestRun(context.Background(), "wf-1", schema.RunRequest{})
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeRuntime))
	assert.Contains(t, err.Error(), "workflow has no trigger")
	assert.Contains(t, err.Error(), "400")
}

func TestTestRun_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream blew up", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).TestRun(context.Background(), "wf-1", schema.RunRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream blew up")
}

func TestTestRun_Unreachable(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", nil).TestRun(context.Background(), "wf-1", schema.RunRequest{})
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeRuntime))
}

func TestTestRun_NoRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).TestRun(context.Background(), "wf-1", schema.RunRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDeploy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workflows/wf-9/activate/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, nil).Deploy(context.Background(), "wf-9"))
}

func TestDeploy_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "already active"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Deploy(context.Background(), "wf-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already active")
}
