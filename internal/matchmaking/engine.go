package matchmaking

import (
	"context"
	"sync"
	"time"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/models"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
)

// Engine 주기적으로 매칭을 돌리는 드라이버이자 요청 접수 창구
type Engine struct {
	serializer *Serializer
	store      *Store
	processor  *Processor
	interval   time.Duration
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// NewEngine Engine 생성
func NewEngine(serializer *Serializer, store *Store, processor *Processor, interval time.Duration) *Engine {
	return &Engine{
		serializer: serializer,
		store:      store,
		processor:  processor,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start 매칭 시스템 시작
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	logger.Info("Starting matchmaking engine", "interval", e.interval)

	e.serializer.Start()

	e.wg.Add(1)
	go e.matchLoop()
}

// Stop 매칭 시스템 중지. 진행 중인 매치 처리는 끝까지 수행된다.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()

	logger.Info("Stopping matchmaking engine")
	close(e.stopChan)
	e.wg.Wait()
	e.serializer.Stop()
	logger.Info("Matchmaking engine stopped")
}

// matchLoop 주기적 매칭 실행
func (e *Engine) matchLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.serializer.Push(e.confirmMatches)
		case <-e.stopChan:
			return
		}
	}
}

// confirmMatches 틱마다 Serializer 안에서 실행되는 매칭 확정 잡
func (e *Engine) confirmMatches() {
	pairs := e.store.ConfirmMatches()
	if len(pairs) == 0 {
		return
	}

	logger.Info("Matches confirmed", "count", len(pairs))

	for _, pair := range pairs {
		// 네트워크 처리는 Serializer 밖에서. 상태 변경이 필요한 후속 처리는
		// Processor가 다시 잡으로 밀어 넣는다.
		go e.processor.Process(context.Background(), pair)
	}
}

// AddMatchRequest 매칭 요청 접수. 테스트 요청은 큐를 거치지 않고 즉시 매칭된다.
func (e *Engine) AddMatchRequest(req *models.MatchRequest, isTest bool) {
	if isTest {
		e.processor.ProcessTest(req)
		return
	}

	e.serializer.Push(func() {
		if e.store.Enqueue(req) {
			logger.Debug("Match request enqueued",
				"userId", req.UserID,
				"sessionId", req.SessionID,
				"mapId", req.MapID,
				"faction", req.Faction,
				"rankPoint", req.RankPoint)
		} else {
			logger.Debug("Match request discarded",
				"userId", req.UserID,
				"sessionId", req.SessionID)
		}
	})
}

// CancelMatchRequest 매칭 취소 접수. 취소 자체는 비동기로 적용되고,
// 호출자에게는 접수 확인으로 userId만 돌려준다.
func (e *Engine) CancelMatchRequest(userID, sessionID int64) int64 {
	e.serializer.Push(func() {
		e.store.Cancel(userID, sessionID)
		logger.Debug("Match request canceled",
			"userId", userID,
			"sessionId", sessionID)
	})

	return userID
}

// QueueDepth 직렬화 워커를 거쳐 큐 길이 스냅샷 조회
func (e *Engine) QueueDepth(ctx context.Context, mapID int32) (sheepDepth, wolfDepth int, err error) {
	type depth struct {
		sheep int
		wolf  int
	}

	done := make(chan depth, 1)
	e.serializer.Push(func() {
		s, w := e.store.QueueDepth(mapID)
		done <- depth{sheep: s, wolf: w}
	})

	select {
	case d := <-done:
		return d.sheep, d.wolf, nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}
