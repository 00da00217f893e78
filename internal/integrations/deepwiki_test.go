package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWikiStructure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/structure", r.URL.Path)
		require.Equal(t, "golang/go", r.URL.Query().Get("repo"))
		w.Write([]byte(`{"topics":[{"id":"1","title":"Overview"},{"id":"2","title":"Runtime"}]}`))
	}))
	defer srv.Close()

	c := NewDeepWiki(srv.URL)
	topics, err := c.WikiStructure(context.Background(), "golang/go")
	require.NoError(t, err)
	require.Len(t, topics, 2)
	require.Equal(t, "Overview", topics[0].Title)
}

func TestWikiContents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/contents", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("topic"))
		w.Write([]byte(`{"content":"# Runtime\nDetails here."}`))
	}))
	defer srv.Close()

	c := NewDeepWiki(srv.URL)
	content, err := c.WikiContents(context.Background(), "golang/go", "2")
	require.NoError(t, err)
	require.Contains(t, content, "Runtime")
}

func TestWikiErrorResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/structure" {
			w.Write([]byte(`{"error":"repo not indexed"}`))
			return
		}
		w.WriteHeader(500)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewDeepWiki(srv.URL)

	_, err := c.WikiStructure(context.Background(), "x/y")
	require.Error(t, err)
	require.Contains(t, err.Error(), "repo not indexed")

	_, err = c.WikiContents(context.Background(), "x/y", "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}
