package router

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
	"github.com/mamadbah2/coldroom/internal/repository/memory"
	"github.com/mamadbah2/coldroom/internal/server/handlers"
	"github.com/mamadbah2/coldroom/internal/service/audit"
	"github.com/mamadbah2/coldroom/internal/service/monitoring"
	"github.com/mamadbah2/coldroom/internal/service/sensor"
	"github.com/mamadbah2/coldroom/internal/service/session"
)

type fixedEnvironment struct {
	sample models.EnvironmentSample
}

func (e fixedEnvironment) Latest(ctx context.Context) (models.EnvironmentSample, error) {
	return e.sample, nil
}

func (e fixedEnvironment) Refresh(ctx context.Context) (models.EnvironmentSample, error) {
	return e.sample, nil
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	store := memory.NewStore()
	env := fixedEnvironment{sample: models.EnvironmentSample{Location: "Ahmedabad", Temperature: 20, Humidity: 50, Conditions: "Sunny"}}
	recorder := audit.NewRecorder(store, nil, nil)
	simulator := sensor.NewSimulator(store, sensor.NewDriftProducer(rand.New(rand.NewSource(7)), 0.2, 1), nil)
	svc := monitoring.NewService(store, env, recorder, monitoring.Options{
		Thresholds: rules.DefaultThresholds(),
		Sampler:    simulator,
	}, nil)
	require.NoError(t, svc.Seed(context.Background()))

	handler := handlers.NewMonitoringHandler(svc, session.NewManager(), nil)

	engine := New(handler, nil, nil)
	gin.SetMode(gin.TestMode)
	return engine
}

func do(engine *gin.Engine, method, path, user, role string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(handlers.HeaderUser, user)
		req.Header.Set(handlers.HeaderRole, role)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz_NoIdentityNeeded(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_RequiresUserHeader(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodGet, "/rooms", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRoutes_AbsentWithoutMessaging(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodGet, "/webhook", "", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndGetRooms(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodGet, "/rooms", "vera", "viewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rooms := decode[[]models.Room](t, w)
	assert.Len(t, rooms, 3)

	w = do(engine, http.MethodGet, "/rooms/Room%201", "vera", "viewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Room 1", decode[models.Room](t, w).Name)

	w = do(engine, http.MethodGet, "/rooms/Room%209", "vera", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "not found")
}

func TestAddProduct_ErrorMapping(t *testing.T) {
	engine := newTestEngine(t)

	yoghurt := models.NewProductRequest{Name: "Yoghurt", MinTemp: 2, MaxTemp: 5, IdealHumidity: 80, ShelfLifeDays: 14}

	w := do(engine, http.MethodPost, "/products", "vera", "viewer", yoghurt)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(engine, http.MethodPost, "/products", "tech", "technician", yoghurt)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Yoghurt", decode[models.Product](t, w).Name)

	w = do(engine, http.MethodPost, "/products", "tech", "technician", yoghurt)
	assert.Equal(t, http.StatusConflict, w.Code)

	inverted := yoghurt
	inverted.Name = "Paneer"
	inverted.MinTemp, inverted.MaxTemp = 6, 2
	w = do(engine, http.MethodPost, "/products", "tech", "technician", inverted)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(engine, http.MethodGet, "/products/yoghurt", "vera", "viewer", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestManualTarget_RequiresOverride(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodPut, "/rooms/Room%201/target", "tech", "technician", map[string]float64{"target_temp": 3.5})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(engine, http.MethodPut, "/session", "tech", "technician", map[string]bool{"manual_override": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Session](t, w).ManualOverride)

	w = do(engine, http.MethodPut, "/rooms/Room%201/target", "tech", "technician", map[string]float64{"target_temp": 3.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.5, decode[models.Room](t, w).TargetTemp)

	w = do(engine, http.MethodPut, "/rooms/Room%201/target", "tech", "technician", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(engine, http.MethodPut, "/rooms/Room%201/target", "tech", "technician", map[string]float64{"target_temp": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Override is per session.
	w = do(engine, http.MethodPut, "/rooms/Room%201/target", "other", "technician", map[string]float64{"target_temp": 3.5})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAssignProductAndApplyRecommended(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodPost, "/rooms/Room%202/target/recommended", "tech", "technician", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(engine, http.MethodGet, "/rooms/Room%202/recommendation", "tech", "technician", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recommended_temp":null}`, w.Body.String())

	w = do(engine, http.MethodPut, "/rooms/Room%202/product", "tech", "technician", map[string]string{"product": "Milk"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[models.Room](t, w).ProductID)

	w = do(engine, http.MethodPost, "/rooms/Room%202/target/recommended", "tech", "technician", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, decode[models.Room](t, w).TargetTemp)

	w = do(engine, http.MethodPut, "/rooms/Room%202/product", "tech", "technician", map[string]any{"product": nil})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.Room](t, w).ProductID)
}

func TestDashboard_PersistsCurrentRoom(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodGet, "/dashboard", "vera", "viewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[models.DashboardView](t, w)
	assert.Equal(t, "Freezer 1", view.Room.Name)
	assert.NotNil(t, view.History)

	w = do(engine, http.MethodGet, "/session", "vera", "viewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, view.Room.ID, decode[models.Session](t, w).CurrentRoomID)
}

func TestTakeSampleAndHistory(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodPost, "/rooms/Room%201/samples", "vera", "viewer", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(engine, http.MethodPost, "/rooms/Room%201/samples", "tech", "technician", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(engine, http.MethodGet, "/rooms/Room%201/history?limit=10", "vera", "viewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.SensorSample](t, w), 1)

	w = do(engine, http.MethodGet, "/audit?limit=1", "root", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]models.AuditEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "tech", entries[0].User)
	assert.Contains(t, entries[0].Action, "Took sensor reading in room Room 1")

	w = do(engine, http.MethodGet, "/rooms/Room%201/history?limit=ten", "vera", "viewer", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminOperations(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodDelete, "/history", "root", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(engine, http.MethodDelete, "/history?keep=0", "tech", "technician", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(engine, http.MethodDelete, "/history?keep=0", "root", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodPost, "/environment/refresh", "root", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodGet, "/audit?limit=1", "tech", "technician", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(engine, http.MethodGet, "/audit?limit=1", "root", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]models.AuditEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "Refreshed weather data", entries[0].Action)
	assert.Equal(t, "root", entries[0].User)
}

func TestResetSession(t *testing.T) {
	engine := newTestEngine(t)

	w := do(engine, http.MethodPut, "/session", "tech", "technician", map[string]bool{"manual_override": true, "energy_saving": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodDelete, "/session", "tech", "technician", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(engine, http.MethodGet, "/session", "tech", "technician", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sess := decode[models.Session](t, w)
	assert.False(t, sess.ManualOverride)
	assert.False(t, sess.EnergySaving)
	assert.Empty(t, sess.CurrentRoomID)
}
