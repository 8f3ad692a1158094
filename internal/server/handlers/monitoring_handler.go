package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/service/session"
)

// Monitor is the set of monitoring operations exposed over HTTP.
type Monitor interface {
	Dashboard(ctx context.Context, sess *models.Session) (*models.DashboardView, error)
	SelectRoom(ctx context.Context, sess *models.Session, ref string) (*models.Room, error)
	SetManualOverride(ctx context.Context, sess *models.Session, enabled bool) error
	SetEnergySaving(ctx context.Context, sess *models.Session, enabled bool) error

	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, ref string) (*models.Room, error)
	AddRoom(ctx context.Context, sess *models.Session, req models.NewRoomRequest) (*models.Room, error)
	AssignProduct(ctx context.Context, sess *models.Session, roomID string, ref *string) (*models.Room, error)
	SetTargetTemp(ctx context.Context, sess *models.Session, roomID string, value float64) (*models.Room, error)
	ApplyRecommended(ctx context.Context, sess *models.Session, roomID string) (*models.Room, error)
	Recommendation(ctx context.Context, roomID string) (*float64, error)
	History(ctx context.Context, roomID string, limit int) ([]models.SensorSample, error)
	SampleRoom(ctx context.Context, sess *models.Session, ref string) (*models.SensorSample, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, ref string) (*models.Product, error)
	AddProduct(ctx context.Context, sess *models.Session, req models.NewProductRequest) (*models.Product, error)

	Environment(ctx context.Context) (models.EnvironmentSample, error)
	RefreshEnvironment(ctx context.Context, sess *models.Session) (models.EnvironmentSample, error)

	AuditLog(ctx context.Context, sess *models.Session, limit int) ([]models.AuditEntry, error)
	PruneHistory(ctx context.Context, sess *models.Session, keep int) (int64, error)
}

// MonitoringHandler serves the operator API.
type MonitoringHandler struct {
	svc      Monitor
	sessions *session.Manager
	logger   *zap.Logger
}

// NewMonitoringHandler constructs the HTTP handler adapter.
func NewMonitoringHandler(svc Monitor, sessions *session.Manager, logger *zap.Logger) *MonitoringHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitoringHandler{svc: svc, sessions: sessions, logger: logger}
}

// withSession runs fn against the caller's session. State changes made by the
// service are kept, and requests of one operator are applied one at a time.
func (h *MonitoringHandler) withSession(c *gin.Context, fn func(sess *models.Session) error) bool {
	id := identityFrom(c)
	if _, err := h.sessions.Apply(id.User, id.Role, fn); err != nil {
		respondError(c, h.logger, err)
		return false
	}
	return true
}

type sessionUpdate struct {
	RoomID         *string `json:"room_id"`
	ManualOverride *bool   `json:"manual_override"`
	EnergySaving   *bool   `json:"energy_saving"`
}

// GetSession returns the caller's session state.
func (h *MonitoringHandler) GetSession(c *gin.Context) {
	id := identityFrom(c)
	c.JSON(http.StatusOK, h.sessions.Get(id.User, id.Role))
}

// ResetSession drops the caller's session state.
func (h *MonitoringHandler) ResetSession(c *gin.Context) {
	id := identityFrom(c)
	h.sessions.Clear(id.User)
	c.Status(http.StatusNoContent)
}

// UpdateSession switches rooms and toggles the session modes.
func (h *MonitoringHandler) UpdateSession(c *gin.Context) {
	var req sessionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid session payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	var out models.Session
	ok := h.withSession(c, func(sess *models.Session) error {
		ctx := c.Request.Context()
		if req.RoomID != nil {
			if _, err := h.svc.SelectRoom(ctx, sess, *req.RoomID); err != nil {
				return err
			}
		}
		if req.ManualOverride != nil {
			if err := h.svc.SetManualOverride(ctx, sess, *req.ManualOverride); err != nil {
				return err
			}
		}
		if req.EnergySaving != nil {
			if err := h.svc.SetEnergySaving(ctx, sess, *req.EnergySaving); err != nil {
				return err
			}
		}
		out = *sess
		return nil
	})
	if ok {
		c.JSON(http.StatusOK, out)
	}
}

// Dashboard renders the view of the caller's current room.
func (h *MonitoringHandler) Dashboard(c *gin.Context) {
	var view *models.DashboardView
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		view, err = h.svc.Dashboard(c.Request.Context(), sess)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, view)
	}
}

// ListRooms lists every room.
func (h *MonitoringHandler) ListRooms(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom returns one room by id or name.
func (h *MonitoringHandler) GetRoom(c *gin.Context) {
	room, err := h.svc.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// AddRoom registers a room.
func (h *MonitoringHandler) AddRoom(c *gin.Context) {
	var req models.NewRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid room payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	var room *models.Room
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		room, err = h.svc.AddRoom(c.Request.Context(), sess, req)
		return err
	})
	if ok {
		c.JSON(http.StatusCreated, room)
	}
}

// History returns the room's recent samples, newest first.
func (h *MonitoringHandler) History(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	samples, err := h.svc.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, samples)
}

// TakeSample records a sensor reading for the room immediately.
func (h *MonitoringHandler) TakeSample(c *gin.Context) {
	var sample *models.SensorSample
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		sample, err = h.svc.SampleRoom(c.Request.Context(), sess, c.Param("id"))
		return err
	})
	if ok {
		c.JSON(http.StatusCreated, sample)
	}
}

type targetRequest struct {
	TargetTemp *float64 `json:"target_temp" binding:"required"`
}

// SetTarget applies a manual setpoint.
func (h *MonitoringHandler) SetTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid target payload", zap.Error(err))
		badRequest(c, "target_temp is required")
		return
	}

	var room *models.Room
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		room, err = h.svc.SetTargetTemp(c.Request.Context(), sess, c.Param("id"), *req.TargetTemp)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, room)
	}
}

// ApplyRecommended sets the room target to the current recommendation.
func (h *MonitoringHandler) ApplyRecommended(c *gin.Context) {
	var room *models.Room
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		room, err = h.svc.ApplyRecommended(c.Request.Context(), sess, c.Param("id"))
		return err
	})
	if ok {
		c.JSON(http.StatusOK, room)
	}
}

// Recommendation returns the recommended target of the room, null without a product.
func (h *MonitoringHandler) Recommendation(c *gin.Context) {
	value, err := h.svc.Recommendation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommended_temp": value})
}

type productAssignment struct {
	Product *string `json:"product"`
}

// AssignProduct stores a product in the room, or clears it when product is null.
func (h *MonitoringHandler) AssignProduct(c *gin.Context) {
	var req productAssignment
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid product assignment", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	var room *models.Room
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		room, err = h.svc.AssignProduct(c.Request.Context(), sess, c.Param("id"), req.Product)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, room)
	}
}

// ListProducts lists the catalog.
func (h *MonitoringHandler) ListProducts(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product by id or name.
func (h *MonitoringHandler) GetProduct(c *gin.Context) {
	product, err := h.svc.GetProduct(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// AddProduct adds a catalog entry.
func (h *MonitoringHandler) AddProduct(c *gin.Context) {
	var req models.NewProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid product payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	var product *models.Product
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		product, err = h.svc.AddProduct(c.Request.Context(), sess, req)
		return err
	})
	if ok {
		c.JSON(http.StatusCreated, product)
	}
}

// Environment returns the cached weather observation.
func (h *MonitoringHandler) Environment(c *gin.Context) {
	env, err := h.svc.Environment(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

// RefreshEnvironment fetches fresh weather.
func (h *MonitoringHandler) RefreshEnvironment(c *gin.Context) {
	var env models.EnvironmentSample
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		env, err = h.svc.RefreshEnvironment(c.Request.Context(), sess)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, env)
	}
}

// AuditLog lists recent audit entries.
func (h *MonitoringHandler) AuditLog(c *gin.Context) {
	limit, valid := queryInt(c, "limit", 0)
	if !valid {
		return
	}

	var entries []models.AuditEntry
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		entries, err = h.svc.AuditLog(c.Request.Context(), sess, limit)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, entries)
	}
}

// PruneHistory keeps the newest samples of every room.
func (h *MonitoringHandler) PruneHistory(c *gin.Context) {
	if c.Query("keep") == "" {
		badRequest(c, "keep is required")
		return
	}
	keep, valid := queryInt(c, "keep", 0)
	if !valid {
		return
	}

	var removed int64
	ok := h.withSession(c, func(sess *models.Session) error {
		var err error
		removed, err = h.svc.PruneHistory(c.Request.Context(), sess, keep)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, key+" must be an integer")
		return 0, false
	}
	return v, true
}
