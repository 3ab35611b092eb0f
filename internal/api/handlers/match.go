package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/matchmaking"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/models"
)

type MatchHandler struct {
	engine *matchmaking.Engine
}

func NewMatchHandler(engine *matchmaking.Engine) *MatchHandler {
	return &MatchHandler{engine: engine}
}

// AddMatchRequest 매칭 요청 접수.
// 접수 즉시 202를 반환하고 실제 등록은 비동기로 처리된다.
func (h *MatchHandler) AddMatchRequest(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !req.Faction.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid faction"})
		return
	}

	isTest := c.Query("test") == "true"
	h.engine.AddMatchRequest(&req, isTest)

	c.JSON(http.StatusAccepted, gin.H{
		"userId":    req.UserID,
		"sessionId": req.SessionID,
	})
}

// CancelMatchRequest 매칭 취소 접수.
// 취소는 비동기로 적용되며 즉시 효과를 보장하지 않는다.
func (h *MatchHandler) CancelMatchRequest(c *gin.Context) {
	var req models.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID := h.engine.CancelMatchRequest(req.UserID, req.SessionID)

	c.JSON(http.StatusAccepted, gin.H{"userId": userID})
}

// GetQueueDepth 맵의 진영별 큐 길이 조회 (운영용)
func (h *MatchHandler) GetQueueDepth(c *gin.Context) {
	mapID, err := strconv.ParseInt(c.Param("mapId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid map id"})
		return
	}

	sheepDepth, wolfDepth, err := h.engine.QueueDepth(c.Request.Context(), int32(mapID))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue depth unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mapId":      mapID,
		"sheepDepth": sheepDepth,
		"wolfDepth":  wolfDepth,
	})
}
