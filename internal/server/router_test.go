package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalogapi/internal/catalog"
	"catalogapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedBook = catalog.Book{
	ID:        catalog.MustParseBookID("LIB001"),
	Title:     "Cien años de soledad",
	ISBN:      catalog.ISBN{Value: "978-84-376-0494-7"},
	Category:  "Novela",
	Authors:   []string{"García Márquez"},
	Available: true,
}

func newTestRouter(t *testing.T, ready ReadyFunc) *Router {
	t.Helper()
	svc := catalog.NewService(catalog.NewMemoryRepo(seedBook))
	if ready == nil {
		ready = svc.Ready
	}
	router := NewRouter(Options{
		JWTSecret:      testutil.TestSecret,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1024,
	}, catalog.NewHTTPHandler(svc, nil), ready)
	t.Cleanup(router.Close)
	return router
}

func serve(router http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestRouter_LoanScenario(t *testing.T) {
	router := newTestRouter(t, nil)
	librarian := testutil.LibrarianToken()
	reader := testutil.UserToken()

	w := serve(router, testutil.NewRequestWithAuth(http.MethodGet, "/libros/buscar?criterio=Garc%C3%ADa+M%C3%A1rquez", nil, reader))
	require.Equal(t, http.StatusOK, w.Code)
	found, err := testutil.DecodeJSON[[]catalog.Book](w)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "LIB001", found[0].ID.String())

	w = serve(router, testutil.NewRequestWithAuth(http.MethodGet, "/libros/LIB001/disponible", nil, reader))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "true", w.Body.String())

	w = serve(router, testutil.NewRequestWithAuth(http.MethodPut, "/libros/LIB001/disponibilidad", "false", librarian))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, testutil.NewRequestWithAuth(http.MethodGet, "/libros/LIB001/disponible", nil, reader))
	assert.JSONEq(t, "false", w.Body.String())

	w = serve(router, testutil.NewRequestWithAuth(http.MethodGet, "/libros/LIB001", nil, librarian))
	require.Equal(t, http.StatusOK, w.Code)
	book, err := testutil.DecodeJSON[catalog.Book](w)
	require.NoError(t, err)
	assert.False(t, book.Available)
	assert.Equal(t, seedBook.Title, book.Title)
}

func TestRouter_AccessControl(t *testing.T) {
	router := newTestRouter(t, nil)
	noRoles := testutil.GenerateTestToken(testutil.TestSecret, "someone")
	prefixless := testutil.GenerateTestToken(testutil.TestSecret, "lib-2", "librarian")

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		token    string
		wantCode int
		wantErr  string
	}{
		{"no token", http.MethodGet, "/libros/LIB001", nil, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired token", http.MethodGet, "/libros/LIB001", nil, testutil.GenerateExpiredToken(testutil.TestSecret, "u", "ROLE_USER"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"foreign secret", http.MethodGet, "/libros/LIB001", nil, testutil.GenerateTestToken("other", "u", "ROLE_USER"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no roles on read", http.MethodGet, "/libros/LIB001", nil, noRoles, http.StatusForbidden, "FORBIDDEN"},
		{"no roles on search", http.MethodGet, "/libros/buscar?criterio=x", nil, noRoles, http.StatusForbidden, "FORBIDDEN"},
		{"user cannot update", http.MethodPut, "/libros/LIB001/disponibilidad", "false", testutil.UserToken(), http.StatusForbidden, "FORBIDDEN"},
		{"unprefixed librarian role", http.MethodPut, "/libros/LIB001/disponibilidad", "true", prefixless, http.StatusOK, ""},
		{"user can read", http.MethodGet, "/libros/LIB001", nil, testutil.UserToken(), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, testutil.NewRequestWithAuth(tt.method, tt.path, tt.body, tt.token))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, testutil.ErrorCode(w))
			}
		})
	}
}

func TestRouter_RejectedRequestsLeaveCatalogUnchanged(t *testing.T) {
	router := newTestRouter(t, nil)

	serve(router, testutil.NewRequestWithAuth(http.MethodPut, "/libros/LIB001/disponibilidad", "false", ""))
	serve(router, testutil.NewRequestWithAuth(http.MethodPut, "/libros/LIB001/disponibilidad", "false", testutil.UserToken()))
	serve(router, testutil.NewRequestWithAuth(http.MethodPut, "/libros/LIB001/disponibilidad", "null", testutil.LibrarianToken()))

	w := serve(router, testutil.NewRequestWithAuth(http.MethodGet, "/libros/LIB001/disponible", nil, testutil.UserToken()))
	assert.JSONEq(t, "true", w.Body.String())
}

func TestRouter_CatalogEdgeCases(t *testing.T) {
	router := newTestRouter(t, nil)
	librarian := testutil.LibrarianToken()

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		wantCode int
		wantBody string
	}{
		{"unknown book", http.MethodGet, "/libros/NOPE", nil, http.StatusNotFound, ""},
		{"unknown book availability", http.MethodGet, "/libros/NOPE/disponible", nil, http.StatusOK, "false"},
		{"update unknown book", http.MethodPut, "/libros/NOPE/disponibilidad", "true", http.StatusNotFound, ""},
		{"update with non boolean", http.MethodPut, "/libros/LIB001/disponibilidad", `"yes"`, http.StatusBadRequest, ""},
		{"blank criterion", http.MethodGet, "/libros/buscar?criterio=", nil, http.StatusBadRequest, ""},
		{"no match", http.MethodGet, "/libros/buscar?criterio=tolkien", nil, http.StatusOK, "[]"},
		{"long criterion", http.MethodGet, "/libros/buscar?criterio=" + strings.Repeat("a", 201), nil, http.StatusOK, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, testutil.NewRequestWithAuth(tt.method, tt.path, tt.body, librarian))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			if tt.wantCode == http.StatusNotFound {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}

func TestRouter_OversizedBody(t *testing.T) {
	router := newTestRouter(t, nil)

	r := testutil.NewRequestWithAuth(http.MethodPut, "/libros/LIB001/disponibilidad", strings.Repeat(" ", 2048)+"true", testutil.LibrarianToken())
	w := serve(router, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", testutil.ErrorCode(w))
}

func TestRouter_Probes(t *testing.T) {
	router := newTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestRouter(t, func(context.Context) error { return errors.New("connection refused") })
	w = serve(down, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
