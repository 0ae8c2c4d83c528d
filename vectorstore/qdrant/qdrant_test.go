package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/vectorstore"
)

// fakeServer mimics the Qdrant collections endpoints: GET reports an
// existing collection's vector size, PUT creates and rejects repeats
// with 409 the way recent server versions do.
type fakeServer struct {
	mu          sync.Mutex
	collections map[string]int
	creates     int
}

func newFakeServer(t *testing.T) (*fakeServer, *Store) {
	t.Helper()
	f := &fakeServer{collections: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	return f, NewStore(Config{URL: srv.URL})
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/collections/")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		size, ok := f.collections[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"result":{"config":{"params":{"vectors":{"size":%d,"distance":"Cosine"}}}}}`, size)
	case http.MethodPut:
		if _, ok := f.collections[name]; ok {
			w.WriteHeader(http.StatusConflict)
			return
		}
		var body struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.collections[name] = body.Vectors.Size
		f.creates++
		fmt.Fprint(w, `{"result":true,"status":"ok"}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestEnsureCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing collection", func(t *testing.T) {
		fake, store := newFakeServer(t)

		require.NoError(t, store.EnsureCollection(ctx, "docs", 4, vectorstore.MetricCosine))
		assert.Equal(t, 4, fake.collections["docs"])
		assert.Equal(t, 1, fake.creates)
	})

	t.Run("existing collection with matching dimension", func(t *testing.T) {
		fake, store := newFakeServer(t)
		fake.collections["docs"] = 4

		require.NoError(t, store.EnsureCollection(ctx, "docs", 4, vectorstore.MetricCosine))
		assert.Zero(t, fake.creates, "must not re-create an existing collection")
	})

	t.Run("existing collection with mismatched dimension", func(t *testing.T) {
		fake, store := newFakeServer(t)
		fake.collections["docs"] = 8

		err := store.EnsureCollection(ctx, "docs", 4, vectorstore.MetricCosine)
		assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	})

	t.Run("repeated ensure is idempotent", func(t *testing.T) {
		fake, store := newFakeServer(t)

		require.NoError(t, store.EnsureCollection(ctx, "docs", 4, vectorstore.MetricCosine))
		require.NoError(t, store.EnsureCollection(ctx, "docs", 4, vectorstore.MetricCosine))
		assert.Equal(t, 1, fake.creates)
	})

	t.Run("rejects non-positive dimension", func(t *testing.T) {
		_, store := newFakeServer(t)

		err := store.EnsureCollection(ctx, "docs", 0, vectorstore.MetricCosine)
		assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	})
}
