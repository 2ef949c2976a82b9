package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gestion-bovina/internal/adapters/auth/bcrypthash"
	"gestion-bovina/internal/adapters/auth/jwtauth"
	"gestion-bovina/internal/adapters/storage/memory"
	"gestion-bovina/internal/domain/animals"
	"gestion-bovina/internal/domain/users"
	"gestion-bovina/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokens, err := jwtauth.New("test-secret", 0)
	require.NoError(t, err)

	usersSvc := users.NewService(memory.NewUserRepo(), bcrypthash.New(bcrypt.MinCost), tokens)
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Animals:  animals.NewService(memory.NewAnimalRepo()),
		Users:    usersSvc,
		Verifier: tokens,
	}))
	t.Cleanup(ts.Close)
	return ts
}

type vaca struct {
	ID           string  `json:"id"`
	Diio         int64   `json:"diio"`
	DateBirthday string  `json:"dateBirthday"`
	Genre        string  `json:"genre"`
	Race         string  `json:"race"`
	Location     string  `json:"location"`
	Sick         *string `json:"sick"`
	CowState     bool    `json:"cowState"`
}

func TestHTTP_EndToEnd_VacasLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// 1) Registro devuelve token
	{
		st, body := doReq(t, ts.URL, "POST", "/register", "", map[string]any{"email": "a@x.com", "password": "p1", "role": "user"})
		require.Equal(t, http.StatusCreated, st, string(body))
		assert.NotEmpty(t, decode[map[string]string](t, body)["token"])
	}

	// 2) Login con password incorrecta
	{
		st, body := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"email": "a@x.com", "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, st)
		assert.Equal(t, "usuario y/o contraseña inválida", decode[map[string]string](t, body)["message"])
	}

	// 3) Login correcto
	var token string
	{
		st, body := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"email": "a@x.com", "password": "p1"})
		require.Equal(t, http.StatusOK, st, string(body))
		token = decode[map[string]string](t, body)["token"]
		require.NotEmpty(t, token)
	}

	// 4) Sin token => 401
	{
		st, body := doReq(t, ts.URL, "GET", "/vacas", "", nil)
		require.Equal(t, http.StatusUnauthorized, st)
		assert.NotEmpty(t, decode[map[string]string](t, body)["message"])
	}

	// 5) Inventario vacío
	{
		st, body := doReq(t, ts.URL, "GET", "/vacas", token, nil)
		require.Equal(t, http.StatusNotFound, st)
		assert.Equal(t, "No hay vacas registradas", decode[map[string]string](t, body)["message"])

		st, body = doReq(t, ts.URL, "GET", "/vacas/all", token, nil)
		require.Equal(t, http.StatusOK, st)
		assert.Empty(t, decode[[]vaca](t, body))
	}

	// 6) Crear
	var created vaca
	{
		st, body := doReq(t, ts.URL, "POST", "/vacas", token, map[string]any{
			"diio":         345671,
			"dateBirthday": "2022-05-11",
			"genre":        "F",
			"race":         "Negra",
			"location":     "Talca",
		})
		require.Equal(t, http.StatusCreated, st, string(body))
		created = decode[vaca](t, body)
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.CowState)
		assert.Nil(t, created.Sick)
	}

	// 7) DIIO duplicado
	{
		st, _ := doReq(t, ts.URL, "POST", "/vacas", token, map[string]any{
			"diio":         345671,
			"dateBirthday": "2021-01-01",
			"genre":        "M",
			"race":         "Holstein",
			"location":     "Osorno",
		})
		require.Equal(t, http.StatusConflict, st)
	}

	// 8) Listar y obtener
	{
		st, body := doReq(t, ts.URL, "GET", "/vacas", token, nil)
		require.Equal(t, http.StatusOK, st)
		list := decode[[]vaca](t, body)
		require.Len(t, list, 1)
		assert.Equal(t, created, list[0])

		st, body = doReq(t, ts.URL, "GET", "/vacas?genre=M", token, nil)
		require.Equal(t, http.StatusNotFound, st, string(body))

		st, body = doReq(t, ts.URL, "GET", "/vacas/"+created.ID, token, nil)
		require.Equal(t, http.StatusOK, st)
		assert.Equal(t, created, decode[vaca](t, body))

		st, _ = doReq(t, ts.URL, "GET", "/vacas/no-es-uuid", token, nil)
		require.Equal(t, http.StatusBadRequest, st)
	}

	// 9) PATCH cambia solo location; luego sick y null
	{
		st, body := doReq(t, ts.URL, "PATCH", "/vacas/"+created.ID, token, map[string]any{"location": "Santiago"})
		require.Equal(t, http.StatusOK, st, string(body))
		got := decode[vaca](t, body)
		assert.Equal(t, "Santiago", got.Location)
		assert.Equal(t, created.Diio, got.Diio)
		assert.Equal(t, created.Race, got.Race)
		assert.Equal(t, created.DateBirthday, got.DateBirthday)

		st, body = doReq(t, ts.URL, "PUT", "/vacas/"+created.ID, token, map[string]any{"sick": "Mastitis"})
		require.Equal(t, http.StatusOK, st, string(body))
		got = decode[vaca](t, body)
		require.NotNil(t, got.Sick)
		assert.Equal(t, "Mastitis", *got.Sick)

		st, body = doReq(t, ts.URL, "PATCH", "/vacas/"+created.ID, token, map[string]any{"sick": nil})
		require.Equal(t, http.StatusOK, st, string(body))
		assert.Nil(t, decode[vaca](t, body).Sick)

		st, _ = doReq(t, ts.URL, "PATCH", "/vacas/"+created.ID, token, map[string]any{"cowState": false})
		require.Equal(t, http.StatusBadRequest, st)
	}

	// 10) Baja lógica
	{
		st, body := doReq(t, ts.URL, "DELETE", "/vacas/"+created.ID, token, nil)
		require.Equal(t, http.StatusOK, st, string(body))
		resp := decode[struct {
			Message string `json:"message"`
			Vaca    vaca   `json:"vaca"`
		}](t, body)
		assert.Contains(t, resp.Message, created.ID)
		assert.False(t, resp.Vaca.CowState)

		st, _ = doReq(t, ts.URL, "GET", "/vacas/"+created.ID, token, nil)
		require.Equal(t, http.StatusNotFound, st)

		st, _ = doReq(t, ts.URL, "DELETE", "/vacas/"+created.ID, token, nil)
		require.Equal(t, http.StatusNotFound, st)

		st, body = doReq(t, ts.URL, "GET", "/vacas/desactivadas", token, nil)
		require.Equal(t, http.StatusOK, st)
		list := decode[[]vaca](t, body)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
		assert.Equal(t, "Santiago", list[0].Location)

		st, body = doReq(t, ts.URL, "GET", "/vacas/all", token, nil)
		require.Equal(t, http.StatusOK, st)
		assert.Len(t, decode[[]vaca](t, body), 1)
	}
}

func TestHTTP_RegisterDuplicateAndBadToken(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/register", "", map[string]any{"email": "a@x.com", "password": "p1", "rol": "admin"})
	require.Equal(t, http.StatusCreated, st)

	st, body := doReq(t, ts.URL, "POST", "/register", "", map[string]any{"email": "a@x.com", "password": "p2"})
	require.Equal(t, http.StatusConflict, st)
	assert.Equal(t, "Este usuario ya existe", decode[map[string]string](t, body)["message"])

	st, _ = doReq(t, ts.URL, "POST", "/login", "", map[string]any{"email": "nadie@x.com", "password": "p1"})
	require.Equal(t, http.StatusUnauthorized, st)

	st, _ = doReq(t, ts.URL, "GET", "/vacas/all", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, st)
}

func TestHTTP_PlatformRoutes(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))

	st, body = doReq(t, ts.URL, "GET", "/no-existe", "", nil)
	require.Equal(t, http.StatusNotFound, st)
	assert.Equal(t, "Ruta no encontrada", decode[map[string]string](t, body)["message"])

	st, body = doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), "/vacas/desactivadas")
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, b
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}
