package mobilesync

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/models"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

// Handler exposes the engine over REST for the mobile clients.
type Handler struct {
	engine *Engine
	logger *logrus.Logger
}

func NewHandler(engine *Engine, logger *logrus.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

func (h *Handler) actorFromContext(c *gin.Context) (Actor, bool) {
	ctx := c.Request.Context()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(ctx)
	return Actor{ID: userId, Role: role}, true
}

// Push handles POST /api/sync/push.
func (h *Handler) Push(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed push payload"})
		return
	}
	if req.DeviceId == "" {
		req.DeviceId = c.GetHeader("X-Device-Id")
	}

	result, err := h.engine.PushSync(c.Request.Context(), actor, req)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		config.LogError(h.logger, "mobilesync", "Push", req.DeviceId, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Pull handles GET /api/sync/pull.
func (h *Handler) Pull(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	deviceId := c.Query("deviceId")
	if deviceId == "" {
		deviceId = c.GetHeader("X-Device-Id")
	}

	result, err := h.engine.PullSync(c.Request.Context(), actor, deviceId)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		config.LogError(h.logger, "mobilesync", "Pull", deviceId, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Runs handles GET /api/sync/runs: the actor's recent push audit rows.
func (h *Handler) Runs(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := models.GetRecentSyncRuns(c.Request.Context(), actor.ID, limit)
	if err != nil {
		config.LogError(h.logger, "mobilesync", "Runs", "", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sync runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": runs})
}
