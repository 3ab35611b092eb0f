package matchmaking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/events"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/models"
	"github.com/jwy0805/CryWolfApiServer-sub000/internal/websocket"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/rankpoint"
)

// RankClient 랭크 포인트 조회 클라이언트
type RankClient interface {
	Lookup(ctx context.Context, sheepUserID, wolfUserID int64) (*rankpoint.LookupResponse, error)
}

// GatewayClient 매치 결과 전달 클라이언트
type GatewayClient interface {
	Deliver(ctx context.Context, result *models.MatchResult) error
}

// Processor 확정된 페어를 매치 결과로 만들어 게이트웨이에 전달한다.
// 네트워크 호출은 Serializer 밖에서 일어나고, 상태를 바꿔야 하는 후속 처리는
// 다시 Serializer 잡으로 밀어 넣는다.
type Processor struct {
	serializer *Serializer
	store      *Store
	rank       RankClient
	gateway    GatewayClient
	publisher  *events.Publisher
	hub        *websocket.Hub
}

// NewProcessor Processor 생성. publisher와 hub는 nil 허용.
func NewProcessor(
	serializer *Serializer,
	store *Store,
	rank RankClient,
	gateway GatewayClient,
	publisher *events.Publisher,
	hub *websocket.Hub,
) *Processor {
	return &Processor{
		serializer: serializer,
		store:      store,
		rank:       rank,
		gateway:    gateway,
		publisher:  publisher,
		hub:        hub,
	}
}

// Process 확정 페어 처리
func (p *Processor) Process(ctx context.Context, pair models.Pair) {
	p.process(ctx, pair, false)
}

// ProcessTest 테스트 매치 경로. 일반 확정 주기를 거치지 않고 같은 맵의 반대 진영
// 헤드와 즉시 매칭한다. 상대가 없으면 자기 자신과 매칭한다 (단일 사용자 스모크 테스트).
// 이 경로의 오류는 로그만 남기고 재시도하지 않는다.
func (p *Processor) ProcessTest(req *models.MatchRequest) {
	p.serializer.Push(func() {
		opponent := p.store.TakeOpponent(req.MapID, req.Faction)
		if opponent == nil {
			opponent = req
		}

		var pair models.Pair
		if req.Faction == models.FactionSheep {
			pair = models.Pair{Sheep: req, Wolf: opponent}
		} else {
			pair = models.Pair{Sheep: opponent, Wolf: req}
		}

		go p.process(context.Background(), pair, true)
	})
}

func (p *Processor) process(ctx context.Context, pair models.Pair, testMatch bool) {
	points, err := p.rank.Lookup(ctx, pair.Sheep.UserID, pair.Wolf.UserID)
	if err != nil {
		if testMatch {
			logger.Warn("Rank point lookup failed for test match",
				"sheepUserId", pair.Sheep.UserID,
				"wolfUserId", pair.Wolf.UserID,
				"error", err)
			return
		}

		logger.Warn("Rank point lookup failed, scheduling retry",
			"sheepUserId", pair.Sheep.UserID,
			"wolfUserId", pair.Wolf.UserID,
			"error", err)
		p.retryPair(pair)
		return
	}

	result := p.buildResult(pair, points, testMatch)

	if err := p.gateway.Deliver(ctx, result); err != nil {
		// 전달 실패는 재시도 대상이 아니다. 랭크 조회 실패만 재시도한다.
		logger.Error("Failed to deliver match result",
			"matchId", result.MatchID,
			"mapId", result.MapID,
			"error", err)
	} else {
		p.publisher.NotifyMatchCreated(ctx, result.MapID, result.MatchID, pair.Sheep.UserID, pair.Wolf.UserID)
	}

	p.observeQueueDepth(pair.Sheep.MapID)
}

// retryPair 조회 실패 페어 복귀. 둘 다 재시도 한도 안일 때만 둘 다 큐로 돌아간다.
// 한쪽만 돌아가면 그 요청은 상대 없이 표류하므로 페어 단위로 처리한다.
func (p *Processor) retryPair(pair models.Pair) {
	p.serializer.Push(func() {
		sheepOK := p.store.IncrementRetry(pair.Sheep.Key())
		wolfOK := p.store.IncrementRetry(pair.Wolf.Key())

		if sheepOK && wolfOK {
			p.store.Requeue(pair.Sheep)
			p.store.Requeue(pair.Wolf)
			p.publisher.NotifyPairRequeued(context.Background(), pair.Sheep.MapID, pair.Sheep.UserID, pair.Wolf.UserID)
			logger.Info("Pair requeued after lookup failure",
				"mapId", pair.Sheep.MapID,
				"sheepUserId", pair.Sheep.UserID,
				"wolfUserId", pair.Wolf.UserID)
			return
		}

		p.store.Drop(pair.Sheep.Key())
		p.store.Drop(pair.Wolf.Key())
		p.publisher.NotifyPairDropped(context.Background(), pair.Sheep.MapID, pair.Sheep.UserID, pair.Wolf.UserID)
		logger.Warn("Pair dropped, retry limit exceeded",
			"mapId", pair.Sheep.MapID,
			"sheepUserId", pair.Sheep.UserID,
			"wolfUserId", pair.Wolf.UserID)
	})
}

// buildResult 매치 결과 페이로드 조립
func (p *Processor) buildResult(pair models.Pair, points *rankpoint.LookupResponse, testMatch bool) *models.MatchResult {
	return &models.MatchResult{
		MatchID:      uuid.New().String(),
		MapID:        pair.Sheep.MapID,
		Sheep:        playerFromRequest(pair.Sheep, points.SheepWinPoint, points.SheepLosePoint),
		Wolf:         playerFromRequest(pair.Wolf, points.WolfWinPoint, points.WolfLosePoint),
		AISimulation: pair.Sheep.IsAI && pair.Wolf.IsAI,
		TestMatch:    testMatch,
		MatchedAt:    time.Now(),
	}
}

func playerFromRequest(req *models.MatchRequest, winPoint, losePoint int) models.MatchPlayer {
	return models.MatchPlayer{
		UserID:       req.UserID,
		SessionID:    req.SessionID,
		UserName:     req.UserName,
		RankPoint:    req.RankPoint,
		WinPoint:     winPoint,
		LosePoint:    losePoint,
		CharacterID:  req.CharacterID,
		UnitIDs:      req.UnitIDs,
		Achievements: req.Achievements,
		IsAI:         req.IsAI,
	}
}

// observeQueueDepth 매치 처리 후 큐 길이 기록 (관측용)
func (p *Processor) observeQueueDepth(mapID int32) {
	p.serializer.Push(func() {
		sheepDepth, wolfDepth := p.store.QueueDepth(mapID)
		logger.Info("Queue depth",
			"mapId", mapID,
			"sheepDepth", sheepDepth,
			"wolfDepth", wolfDepth)

		if p.hub != nil {
			p.hub.BroadcastQueueDepth(mapID, sheepDepth, wolfDepth)
		}
	})
}
