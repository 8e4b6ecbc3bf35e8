package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

func TestBuiltin_FiveTypes(t *testing.T) {
	c := New(Builtin())

	types := c.Types()
	require.Len(t, types, 5)

	names := make([]string, len(types))
	for i, nt := range types {
		names[i] = nt.Name
	}
	assert.Equal(t, []string{
		"manual_trigger", "database_query", "data_transform", "condition", "email_send",
	}, names)
}

func TestBuiltin_ConfigSchemas(t *testing.T) {
	c := New(Builtin())

	trigger, ok := c.Lookup("manual_trigger")
	require.True(t, ok)
	assert.Empty(t, trigger.ConfigSchema.Fields)

	query, ok := c.Lookup("database_query")
	require.True(t, ok)
	table, ok := query.Field("table_name")
	require.True(t, ok)
	assert.True(t, table.Required)
	qt, ok := query.Field("query_type")
	require.True(t, ok)
	assert.Equal(t, []string{"SELECT", "INSERT", "UPDATE", "DELETE"}, qt.Options)

	cond, ok := c.Lookup("condition")
	require.True(t, ok)
	lang, ok := cond.Field("language")
	require.True(t, ok)
	assert.Equal(t, []string{"cel", "expr", "jq"}, lang.Options)
	assert.Equal(t, "cel", lang.Default)
}

func TestCatalog_LookupMissing(t *testing.T) {
	_, ok := New(Builtin()).Lookup("teleporter")
	assert.False(t, ok)
}

func TestCatalog_Categories(t *testing.T) {
	cats := New(Builtin()).Categories()
	assert.Equal(t, []string{"manual_trigger"}, cats["trigger"])
	assert.Equal(t, []string{"database_query"}, cats["data"])
	assert.Equal(t, []string{"email_send"}, cats["action"])
}

func TestCatalog_DuplicateNamesDropped(t *testing.T) {
	c := New([]schema.NodeType{
		{Name: "a", DisplayName: "First"},
		{Name: "a", DisplayName: "Second"},
	})
	require.Len(t, c.Types(), 1)
	nt, _ := c.Lookup("a")
	assert.Equal(t, "First", nt.DisplayName)
}

func TestLoader_FetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]schema.NodeType{
			{Name: "custom_type", DisplayName: "Custom", Category: "action"},
		})
	}))
	defer srv.Close()

	c := NewLoader(srv.URL, nil).Load(context.Background())
	_, ok := c.Lookup("custom_type")
	assert.True(t, ok)
	_, ok = c.Lookup("manual_trigger")
	assert.False(t, ok)
}

func TestLoader_FallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c := NewLoader(srv.URL, logger).Load(context.Background())
	require.Len(t, c.Types(), 5)
	assert.Contains(t, buf.String(), "catalog fetch failed")
}

func TestLoader_EmptyURLUsesBuiltin(t *testing.T) {
	c := NewLoader("", nil).Load(context.Background())
	assert.Len(t, c.Types(), 5)
}

func TestLoader_EmptyListFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := NewLoader(srv.URL, nil).Load(context.Background())
	assert.Len(t, c.Types(), 5)
}
