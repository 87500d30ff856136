package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ivan0402201/Taller/internal/application/dto"
	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/infrastructure/memory"
	apphttp "github.com/Ivan0402201/Taller/internal/interfaces/http"
	"github.com/Ivan0402201/Taller/pkg/config"
	"github.com/Ivan0402201/Taller/pkg/logger"
	"github.com/Ivan0402201/Taller/pkg/token"
)

const (
	testSecret = "secreto-de-test-para-la-pasarela"
	testAppID  = "taller-test"
	testIssuer = "taller-test"
)

func authConfig() config.AuthConfig {
	return config.AuthConfig{Secret: testSecret, Issuer: testIssuer, ExpMinutes: 60}
}

// armarPasarela monta la app Fiber completa contra el almacén en memoria.
func armarPasarela(t *testing.T) *fiber.App {
	t.Helper()
	almacen := memory.New()
	t.Cleanup(func() { _ = almacen.Close() })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Fachada: records.New(almacen, nil, logger.Nop()),
		Auth:    authConfig(),
		AppID:   testAppID,
		Log:     logger.Nop(),
	})
	return app
}

func hacerJSON(t *testing.T, app *fiber.App, metodo, ruta, bearer string, cuerpo any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if cuerpo != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(cuerpo))
	}
	req := httptest.NewRequest(metodo, ruta, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func abrirSesion(t *testing.T, app *fiber.App, bootstrapToken string) dto.SessionResponse {
	t.Helper()
	cuerpo := map[string]string{}
	if bootstrapToken != "" {
		cuerpo["token"] = bootstrapToken
	}
	resp := hacerJSON(t, app, http.MethodPost, "/api/session", "", cuerpo)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestSession_SinToken_EmitePrincipalAnonimo(t *testing.T) {
	app := armarPasarela(t)
	out := abrirSesion(t, app, "")

	assert.True(t, out.Anonimo)
	assert.NotEmpty(t, out.UID)
	assert.NotEmpty(t, out.SessionToken)

	uid, appID, err := token.Parse(testSecret, out.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, out.UID, uid)
	assert.Equal(t, testAppID, appID)
}

func TestSession_ConTokenDeArranque_RespetaSuUID(t *testing.T) {
	app := armarPasarela(t)
	bootstrap, err := token.Generate(testSecret, "tecnico-7", testAppID, testIssuer, 60)
	require.NoError(t, err)

	out := abrirSesion(t, app, bootstrap)
	assert.False(t, out.Anonimo)
	assert.Equal(t, "tecnico-7", out.UID)
}

func TestSession_TokenInvalido_DegradaAAnonimoSinRechazar(t *testing.T) {
	app := armarPasarela(t)
	out := abrirSesion(t, app, "token.roto.aqui")

	assert.True(t, out.Anonimo, "un token inválido nunca bloquea la sesión")
	assert.NotEmpty(t, out.SessionToken)
}

// ──────────────────────────────────────────────────────────────────────────────
// CRUD del dataset
// ──────────────────────────────────────────────────────────────────────────────

func TestCRUD_SinBearer_Rechazado(t *testing.T) {
	app := armarPasarela(t)
	resp := hacerJSON(t, app, http.MethodGet, "/api/tickets", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCRUD_CicloCompletoDeTicket(t *testing.T) {
	app := armarPasarela(t)
	sesion := abrirSesion(t, app, "")

	// alta
	resp := hacerJSON(t, app, http.MethodPost, "/api/tickets", sesion.SessionToken,
		map[string]any{"cliente": "María", "equipo": "Samsung A54", "estado": "PENDIENTE"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var creado dto.CreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&creado))
	resp.Body.Close()
	require.NotEmpty(t, creado.ID)

	// snapshot con timestamp de servidor
	resp = hacerJSON(t, app, http.MethodGet, "/api/tickets", sesion.SessionToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap dto.SnapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, creado.ID, snap.Documents[0].ID)
	assert.NotEmpty(t, snap.Documents[0].Fields["createdAt"])

	// merge parcial: solo estado
	resp = hacerJSON(t, app, http.MethodPatch, "/api/tickets/"+creado.ID, sesion.SessionToken,
		map[string]any{"estado": "LISTO"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = hacerJSON(t, app, http.MethodGet, "/api/tickets", sesion.SessionToken, nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, "LISTO", snap.Documents[0].Fields["estado"])
	assert.Equal(t, "María", snap.Documents[0].Fields["cliente"], "los campos no tocados sobreviven")

	// borrado
	resp = hacerJSON(t, app, http.MethodDelete, "/api/tickets/"+creado.ID, sesion.SessionToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = hacerJSON(t, app, http.MethodGet, "/api/tickets", sesion.SessionToken, nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Empty(t, snap.Documents)
}

func TestCreate_ValidacionPorCampo(t *testing.T) {
	app := armarPasarela(t)
	sesion := abrirSesion(t, app, "")

	resp := hacerJSON(t, app, http.MethodPost, "/api/inventory", sesion.SessionToken,
		map[string]any{"name": "", "model": "X", "category": "Mica", "quantity": 1, "price": 0})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.Contains(t, errResp.Fields, "name")
	assert.Contains(t, errResp.Fields, "price")
}

func TestCreate_DescartaElIDDelCuerpo(t *testing.T) {
	app := armarPasarela(t)
	sesion := abrirSesion(t, app, "")

	resp := hacerJSON(t, app, http.MethodPost, "/api/tickets", sesion.SessionToken,
		map[string]any{"id": "id-falso", "cliente": "Ana", "equipo": "Xiaomi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var creado dto.CreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&creado))
	resp.Body.Close()

	assert.NotEqual(t, "id-falso", creado.ID, "el id lo asigna el servidor")
}

func TestUpdate_ParcialInvalido_RechazadoAntesDeTocarElStore(t *testing.T) {
	app := armarPasarela(t)
	sesion := abrirSesion(t, app, "")

	resp := hacerJSON(t, app, http.MethodPost, "/api/inventory", sesion.SessionToken,
		map[string]any{"name": "Mica templada", "model": "iPhone 15", "category": "Mica", "quantity": 10, "price": 5.99})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var creado dto.CreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&creado))
	resp.Body.Close()

	// un merge parcial jamás puede dejar al item fuera de su esquema
	resp = hacerJSON(t, app, http.MethodPatch, "/api/inventory/"+creado.ID, sesion.SessionToken,
		map[string]any{"quantity": -5, "price": 0})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	resp.Body.Close()
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.Contains(t, errResp.Fields, "quantity")
	assert.Contains(t, errResp.Fields, "price")

	// el documento persistido conserva sus valores válidos
	resp = hacerJSON(t, app, http.MethodGet, "/api/inventory", sesion.SessionToken, nil)
	var snap dto.SnapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	require.Len(t, snap.Documents, 1)
	assert.EqualValues(t, 10, snap.Documents[0].Fields["quantity"])
	assert.EqualValues(t, 5.99, snap.Documents[0].Fields["price"])
}

func TestUpdate_ParcialValido_MergeaSoloLoProvisto(t *testing.T) {
	app := armarPasarela(t)
	sesion := abrirSesion(t, app, "")

	resp := hacerJSON(t, app, http.MethodPost, "/api/inventory", sesion.SessionToken,
		map[string]any{"name": "Funda rígida", "model": "Moto G84", "category": "Funda", "quantity": 4, "price": 8.5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var creado dto.CreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&creado))
	resp.Body.Close()

	resp = hacerJSON(t, app, http.MethodPatch, "/api/inventory/"+creado.ID, sesion.SessionToken,
		map[string]any{"quantity": 3})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = hacerJSON(t, app, http.MethodGet, "/api/inventory", sesion.SessionToken, nil)
	var snap dto.SnapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	require.Len(t, snap.Documents, 1)
	assert.EqualValues(t, 3, snap.Documents[0].Fields["quantity"])
	assert.EqualValues(t, 8.5, snap.Documents[0].Fields["price"], "los campos no provistos sobreviven")
	assert.Equal(t, "Funda rígida", snap.Documents[0].Fields["name"])
}

func TestUpdate_IDInexistente_404(t *testing.T) {
	app := armarPasarela(t)
	sesion := abrirSesion(t, app, "")

	resp := hacerJSON(t, app, http.MethodPatch, "/api/tickets/no-existe", sesion.SessionToken,
		map[string]any{"estado": "LISTO"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestColeccionDesconocida_404(t *testing.T) {
	app := armarPasarela(t)
	sesion := abrirSesion(t, app, "")

	resp := hacerJSON(t, app, http.MethodGet, "/api/clientes", sesion.SessionToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSinBackend_RutasDeDatosResponden503(t *testing.T) {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Fachada: records.New(nil, nil, logger.Nop()),
		Auth:    authConfig(),
		AppID:   testAppID,
		Log:     logger.Nop(),
	})
	sesion := abrirSesion(t, app, "")

	resp := hacerJSON(t, app, http.MethodGet, "/api/tickets", sesion.SessionToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode,
		"la sesión funciona aun sin almacén, los datos responden 503")
}
