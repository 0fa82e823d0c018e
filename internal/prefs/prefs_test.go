package prefs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"thinkclear-backend/internal/auth"
	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/db"
)

func stores(t *testing.T) map[string]Store {
	ctx := context.Background()
	d, err := db.Connect(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(ctx))

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLStore(d),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "s1")
			assert.ErrorIs(t, err, ErrNotFound)

			trial := &Trial{Mode: contract.ModePush, Started: "2026-03-01T10:00:00.000Z"}
			put, err := s.Put(ctx, "s1", Prefs{AppMode: contract.ModePush, Trial: trial})
			require.NoError(t, err)
			assert.False(t, put.UpdatedAt.IsZero())

			got, err := s.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, contract.ModePush, got.AppMode)
			require.NotNil(t, got.Trial)
			assert.Equal(t, *trial, *got.Trial)
			assert.True(t, put.UpdatedAt.Equal(got.UpdatedAt))

			// второй Put перезаписывает, trial можно убрать
			_, err = s.Put(ctx, "s1", Prefs{AppMode: contract.ModeLite})
			require.NoError(t, err)
			got, err = s.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, contract.ModeLite, got.AppMode)
			assert.Nil(t, got.Trial)
		})
	}
}

func TestPrefsHandlers(t *testing.T) {
	secret := []byte("k")
	store := NewMemoryStore()
	log := zaptest.NewLogger(t)
	mw := auth.New(secret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /prefs", mw.Wrap(GetHandler(store, log)))
	mux.HandleFunc("PUT /prefs", mw.Wrap(PutHandler(store, log)))

	token, _, err := auth.GenerateToken(secret, "s1", time.Hour)
	require.NoError(t, err)

	do := func(method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/prefs", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"appMode":"guide"`)

	rec = do(http.MethodPut, `{"appMode":"push","trial":{"mode":"push","started":"2026-03-01T10:00:00Z","finished":false,"continued":false}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"appMode":"push"`)
	assert.Contains(t, rec.Body.String(), `"started":"2026-03-01T10:00:00Z"`)

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, `{"appMode":"boss"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, `{"appMode":"lite","trial":{"mode":"lite"}}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, `not json`).Code)
}
