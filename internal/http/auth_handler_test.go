package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newAuthRouter() http.Handler {
	handler := NewAuthHandler(testSecret, time.Hour)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", handler.Login)
	mux.Handle("GET /auth/me", AuthMiddleware(testSecret)(http.HandlerFunc(handler.Me)))
	return mux
}

func TestLogin_FabricatesUser(t *testing.T) {
	router := newAuthRouter()

	body := bytes.NewBufferString(`{"email": "ana@example.com", "password": "secreto"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/auth/login", body))

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp LoginResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "1", resp.User.ID)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "Usuario de Prueba", resp.User.Name)
}

func TestLogin_MissingFields(t *testing.T) {
	router := newAuthRouter()

	for _, body := range []string{
		`{"email": "", "password": "secreto"}`,
		`{"email": "ana@example.com", "password": ""}`,
		`{}`,
	} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(body)))
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "body: %s", body)
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	router := newAuthRouter()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString("{not json")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestMe_WithValidToken(t *testing.T) {
	router := newAuthRouter()

	// Log in first to get a token
	body := bytes.NewBufferString(`{"email": "ana@example.com", "password": "secreto"}`)
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, httptest.NewRequest("POST", "/auth/login", body))
	require.Equal(t, http.StatusOK, loginRec.Code)

	var login LoginResponseDTO
	require.NoError(t, json.NewDecoder(loginRec.Body).Decode(&login))

	request := httptest.NewRequest("GET", "/auth/me", nil)
	request.Header.Set("Authorization", "Bearer "+login.Token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var user UserDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&user))
	assert.Equal(t, "1", user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestMe_MissingToken(t *testing.T) {
	router := newAuthRouter()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMe_GarbageToken(t *testing.T) {
	router := newAuthRouter()

	request := httptest.NewRequest("GET", "/auth/me", nil)
	request.Header.Set("Authorization", "Bearer not.a.token")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMe_TokenSignedWithWrongSecret(t *testing.T) {
	otherHandler := NewAuthHandler([]byte("other-secret"), time.Hour)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", otherHandler.Login)

	body := bytes.NewBufferString(`{"email": "ana@example.com", "password": "secreto"}`)
	loginRec := httptest.NewRecorder()
	mux.ServeHTTP(loginRec, httptest.NewRequest("POST", "/auth/login", body))

	var login LoginResponseDTO
	require.NoError(t, json.NewDecoder(loginRec.Body).Decode(&login))

	router := newAuthRouter()
	request := httptest.NewRequest("GET", "/auth/me", nil)
	request.Header.Set("Authorization", "Bearer "+login.Token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
