package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/api/handlers"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/api/middleware"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/config"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/matchmaking"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/websocket"
)

// SetupRouter API 라우터 설정
func SetupRouter(cfg *config.Config, engine *matchmaking.Engine, hub *websocket.Hub) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Handler 초기화
	matchHandler := handlers.NewMatchHandler(engine)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// 매칭 접수/취소 (계정 서비스에서 인증을 마친 요청만 들어온다)
		match := v1.Group("/match")
		match.Use(middleware.MatchIntakeRateLimit())
		{
			match.POST("/requests", matchHandler.AddMatchRequest)
			match.POST("/requests/cancel", matchHandler.CancelMatchRequest)
		}

		// 운영용 조회
		v1.GET("/match/queues/:mapId", matchHandler.GetQueueDepth)
		v1.GET("/ws", wsHandler.HandleWebSocket)
	}

	return router
}
