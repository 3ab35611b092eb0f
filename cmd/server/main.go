package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/api"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/config"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/events"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/matchmaking"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/websocket"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/gateway"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/rankpoint"
)

func main() {
	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 로거 초기화
	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting CryWolf match server",
		"port", cfg.Port,
		"env", cfg.Env,
		"matchInterval", cfg.MatchInterval,
	)

	// 이벤트 발행용 Redis (선택)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", "error", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		logger.Info("Match event publishing enabled", "redis", opts.Addr)
	}
	publisher := events.NewPublisher(redisClient)

	// 외부 서비스 클라이언트
	rankClient := rankpoint.NewClient(cfg.RankServiceURL)
	gatewayClient := gateway.NewClient(cfg.GatewayURL)

	// 운영용 WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// 매칭 엔진 조립 및 시작
	serializer := matchmaking.NewSerializer()
	store := matchmaking.NewStore(cfg.MaxRetryCount)
	processor := matchmaking.NewProcessor(serializer, store, rankClient, gatewayClient, publisher, hub)
	engine := matchmaking.NewEngine(serializer, store, processor, cfg.MatchInterval)
	engine.Start()

	// 라우터 설정
	router := api.SetupRouter(cfg, engine, hub)

	// 서버 설정
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	logger.Info("Server started", "addr", srv.Addr)

	// 종료 시그널 대기
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// HTTP를 먼저 닫아 새 요청을 막은 뒤 매칭 엔진을 정리한다
	engine.Stop()
	hub.Stop()

	logger.Info("Server exited")
}
