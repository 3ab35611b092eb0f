package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
)

const eventChannel = "matchmaking:events"

// MatchEvent 매칭 라이프사이클 이벤트
type MatchEvent struct {
	Type        string    `json:"type"` // "match_created", "pair_requeued", "pair_dropped"
	MapID       int32     `json:"mapId"`
	MatchID     string    `json:"matchId,omitempty"`
	SheepUserID int64     `json:"sheepUserId"`
	WolfUserID  int64     `json:"wolfUserId"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher Redis Pub/Sub 기반 이벤트 발행자.
// 다른 백엔드 서비스(이벤트 집계, 운영 도구)가 구독한다. 발행 실패는 매칭에 영향을 주지 않는다.
type Publisher struct {
	client *redis.Client
}

// NewPublisher 이벤트 발행자 생성. client가 nil이면 발행이 비활성화된다.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 이벤트 발행 (fire-and-forget)
func (p *Publisher) Publish(ctx context.Context, event MatchEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, eventChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Debug("Published match event",
		"type", event.Type,
		"mapId", event.MapID,
		"matchId", event.MatchID,
	)

	return nil
}

// NotifyMatchCreated 매치 생성 알림
func (p *Publisher) NotifyMatchCreated(ctx context.Context, mapID int32, matchID string, sheepUserID, wolfUserID int64) {
	p.publishLogged(ctx, MatchEvent{
		Type:        "match_created",
		MapID:       mapID,
		MatchID:     matchID,
		SheepUserID: sheepUserID,
		WolfUserID:  wolfUserID,
	})
}

// NotifyPairRequeued 페어 재등록 알림
func (p *Publisher) NotifyPairRequeued(ctx context.Context, mapID int32, sheepUserID, wolfUserID int64) {
	p.publishLogged(ctx, MatchEvent{
		Type:        "pair_requeued",
		MapID:       mapID,
		SheepUserID: sheepUserID,
		WolfUserID:  wolfUserID,
	})
}

// NotifyPairDropped 페어 폐기 알림 (재시도 소진)
func (p *Publisher) NotifyPairDropped(ctx context.Context, mapID int32, sheepUserID, wolfUserID int64) {
	p.publishLogged(ctx, MatchEvent{
		Type:        "pair_dropped",
		MapID:       mapID,
		SheepUserID: sheepUserID,
		WolfUserID:  wolfUserID,
	})
}

func (p *Publisher) publishLogged(ctx context.Context, event MatchEvent) {
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish match event", "type", event.Type, "error", err)
	}
}
