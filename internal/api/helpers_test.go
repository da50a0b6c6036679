package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

const (
	testEmail    = "owner@example.com"
	testUser     = "owner"
	testPassword = "s3cret"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err, "opening store")
	t.Cleanup(func() { store.Close() })
	return store
}

// seededService seeds the owner's profile into store and returns a service
// bound to it.
func seededService(t *testing.T, store *storage.Store) *profile.Service {
	t.Helper()
	col := store.Collection(profile.CollectionName)
	_, err := profile.Seed(context.Background(), col, profile.Profile{
		Name:   "Owner",
		Email:  testEmail,
		Skills: []string{"Go"},
	})
	require.NoError(t, err, "seeding profile")
	return profile.NewService(profile.NewRepository(col, testEmail))
}

// newTestService opens an in-memory store and seeds the owner's profile.
func newTestService(t *testing.T) *profile.Service {
	t.Helper()
	return seededService(t, newTestStore(t))
}

func newTestServer(t *testing.T, limits RateLimits) (*httptest.Server, *profile.Service) {
	t.Helper()
	store := newTestStore(t)
	svc := seededService(t, store)
	srv := httptest.NewServer(NewAppHandler(AppDeps{
		Service:     svc,
		Store:       store,
		Credentials: Credentials{Email: testEmail, User: testUser, Password: testPassword},
		RateLimits:  limits,
		CORSOrigins: []string{"http://localhost:3000"},
	}))
	t.Cleanup(srv.Close)
	return srv, svc
}

// generousLimits never trips inside a test.
var generousLimits = RateLimits{Window: 15 * time.Minute, ReadMax: 1000, WriteMax: 1000}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, srv *httptest.Server, method, path string, body any) (int, apiResponse) {
	t.Helper()
	return doRequestAs(t, srv, method, path, body, testEmail, testPassword)
}

func doRequestAs(t *testing.T, srv *httptest.Server, method, path string, body any, user, pass string) (int, apiResponse) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "marshal body")
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	require.NoError(t, err, "new request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err, "%s %s", method, path)
	defer resp.Body.Close()

	var out apiResponse
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "decoding %s %s response %q", method, path, raw)
	}
	return resp.StatusCode, out
}

func decodeData(t *testing.T, r apiResponse, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v), "decoding data %s", r.Data)
}
