package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/jwt-auth-api/internal/auth"
	"github.com/hongminglow/jwt-auth-api/internal/models"
	"github.com/hongminglow/jwt-auth-api/internal/password"
	"github.com/hongminglow/jwt-auth-api/internal/storage"
	"github.com/hongminglow/jwt-auth-api/internal/storage/memory"
	"github.com/hongminglow/jwt-auth-api/internal/validation"
)

type fixture struct {
	router http.Handler
	store  storage.UserStore
	hasher password.Hasher
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.NewUserStore())
}

func newFixtureWithStore(t *testing.T, store storage.UserStore) fixture {
	t.Helper()
	hasher := password.NewBcryptHasher(password.WithCost(bcrypt.MinCost))
	tokens := auth.NewTokenManager("handler-test-secret", "", time.Hour)
	bearer := auth.NewBearerStrategy(tokens)

	r := chi.NewRouter()
	NewHealthHandler(time.Now(), store).Register(r)
	NewProtectedHandler(bearer).Register(r)
	r.Route("/api/users", NewUsersHandler(store, validation.NewRegistration(store), hasher).Register)
	r.Route("/api/auth", NewAuthHandler(tokens, auth.NewLocalStrategy(store, hasher), bearer).Register)

	return fixture{router: r, store: store, hasher: hasher, tokens: tokens}
}

func (f fixture) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func bearerHeader(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/users", map[string]any{
		"username": "alice1", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"username": "alice1", "firstName": "", "lastName": ""}, body)
	assert.NotContains(t, rec.Body.String(), "supersecret")
	assert.NotContains(t, rec.Body.String(), "password")

	stored, err := f.store.FindByUsername(context.Background(), "alice1")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)
	ok, err := f.hasher.Verify("supersecret", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterTrimsNamesButRejectsPaddedCredentials(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/users", map[string]any{
		"username": "alice1", "password": "supersecret", "firstName": " Alice ", "lastName": " Liddell",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.SerializedUser{Username: "alice1", FirstName: "Alice", LastName: "Liddell"},
		decode[models.SerializedUser](t, rec))

	for _, field := range []string{"username", "password"} {
		payload := map[string]any{"username": "bobby1", "password": "supersecret"}
		payload[field] = payload[field].(string) + " "
		rec := f.do(t, http.MethodPost, "/api/users", payload, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		verr := decode[validation.Error](t, rec)
		assert.Equal(t, field, verr.Location)
		assert.Equal(t, "ValidationError", verr.Reason)
		assert.Equal(t, http.StatusUnprocessableEntity, verr.Code)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	payload := map[string]any{"username": "alice1", "password": "supersecret"}
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/users", payload, nil).Code)

	rec := f.do(t, http.MethodPost, "/api/users", payload, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	verr := decode[validation.Error](t, rec)
	assert.Equal(t, "username", verr.Location)
	assert.Equal(t, "Username already taken", verr.Message)
}

func TestRegisterAcceptsFormBody(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"username": {"alice1"}, "password": {"supersecret"}, "firstName": {" Al "}}
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Al", decode[models.SerializedUser](t, rec).FirstName)
}

func TestRegisterMalformedBody(t *testing.T) {
	f := newFixture(t)
	for _, raw := range []string{`{"username":`, `["alice1"]`} {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}

	rec := f.do(t, http.MethodPost, "/api/users", nil, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "username", decode[validation.Error](t, rec).Location)
}

// raceStore reports every username as free so the insert has to catch the
// duplicate, as a database unique constraint would.
type raceStore struct {
	*memory.Store
}

func (raceStore) CountByUsername(context.Context, string) (int, error) { return 0, nil }

func TestRegisterConcurrentDuplicateIsValidationError(t *testing.T) {
	store := raceStore{Store: memory.NewUserStore()}
	hasher := password.NewBcryptHasher(password.WithCost(bcrypt.MinCost))
	r := chi.NewRouter()
	r.Route("/api/users", NewUsersHandler(store, validation.NewRegistration(store), hasher).Register)
	f := fixture{router: r}

	body, err := json.Marshal(map[string]any{"username": "racer1", "password": "supersecret"})
	require.NoError(t, err)

	const workers = 8
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	var created, rejected int
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusUnprocessableEntity:
			rejected++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, rejected)
}

type brokenStore struct {
	*memory.Store
}

func (brokenStore) CreateUser(context.Context, models.User) (models.User, error) {
	return models.User{}, errors.New("connection reset by peer")
}

func TestRegisterStoreFailureIsGeneric500(t *testing.T) {
	store := brokenStore{Store: memory.NewUserStore()}
	hasher := password.NewBcryptHasher(password.WithCost(bcrypt.MinCost))
	r := chi.NewRouter()
	r.Route("/api/users", NewUsersHandler(store, validation.NewRegistration(store), hasher).Register)
	f := fixture{router: r}

	rec := f.do(t, http.MethodPost, "/api/users", map[string]any{"username": "alice1", "password": "supersecret"}, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"code": float64(500), "message": "Internal server error"}, decode[map[string]any](t, rec))
}

func register(t *testing.T, f fixture, username, pass string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/users", map[string]any{"username": username, "password": pass}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func login(t *testing.T, f fixture, username, pass string) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": username, "password": pass}, nil)
}

func TestLoginIssuesTokenForSerializedUser(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice1", "supersecret")

	rec := login(t, f, "alice1", "supersecret")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["authToken"]
	require.NotEmpty(t, token)

	claim, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.SerializedUser{Username: "alice1"}, claim)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice1", "supersecret")

	wrong := login(t, f, "alice1", "wrong-password")
	unknown := login(t, f, "nobody1", "supersecret")
	missing := f.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "alice1"}, nil)

	for _, rec := range []*httptest.ResponseRecorder{wrong, unknown, missing} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, wrong.Body.String(), rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "authToken")
	}
}

func TestRefreshKeepsClaimWithoutStoreLookup(t *testing.T) {
	f := newFixture(t)
	claim := models.SerializedUser{Username: "ghost1", FirstName: "Not", LastName: "Stored"}
	token, err := f.tokens.IssueFor(claim)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/auth/refresh", nil, bearerHeader(token))
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decode[map[string]string](t, rec)["authToken"]
	assert.NotEqual(t, token, refreshed)

	got, err := f.tokens.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, claim, got)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	expired, err := f.tokens.Issue(models.SerializedUser{Username: "alice1"}, "alice1", -time.Minute)
	require.NoError(t, err)

	for name, header := range map[string]http.Header{
		"none":    nil,
		"expired": bearerHeader(expired),
		"garbage": bearerHeader("abc.def.ghi"),
	} {
		rec := f.do(t, http.MethodPost, "/api/auth/refresh", nil, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestProtectedAndPing(t *testing.T) {
	f := newFixture(t)
	token, err := f.tokens.IssueFor(models.SerializedUser{Username: "alice1"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/protected", nil, nil).Code)

	rec := f.do(t, http.MethodGet, "/api/protected", nil, bearerHeader(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"data": "rosebud"}, decode[map[string]string](t, rec))

	rec = f.do(t, http.MethodGet, "/api", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"message": "server active"}, decode[map[string]string](t, rec))
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return storage.ErrNotFound }

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	r := chi.NewRouter()
	NewHealthHandler(time.Now(), downPinger{}).Register(r)
	rec = fixture{router: r}.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
