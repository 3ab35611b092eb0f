package matchmaking

import (
	"container/heap"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/models"
)

// requestHeap 랭크 포인트 오름차순 최소 힙.
// 동일 랭크 포인트 간 순서는 보장하지 않는다 (heap은 stable하지 않음).
type requestHeap []*models.MatchRequest

func (h requestHeap) Len() int            { return len(h) }
func (h requestHeap) Less(i, j int) bool  { return h[i].RankPoint < h[j].RankPoint }
func (h requestHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *requestHeap) Push(x interface{}) { *h = append(*h, x.(*models.MatchRequest)) }

func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// mapPools 맵 하나에 대한 진영별 대기 큐
type mapPools struct {
	sheep requestHeap
	wolf  requestHeap
}

func (p *mapPools) queue(faction models.Faction) *requestHeap {
	if faction == models.FactionSheep {
		return &p.sheep
	}
	return &p.wolf
}

// Store 맵/진영별 우선순위 큐와 세션 추적 상태.
// 모든 메서드는 Serializer 잡 안에서만 호출해야 한다. 내부 락 없음.
type Store struct {
	pools map[int32]*mapPools

	// latestSession 사용자의 가장 최근 세션. 다른 세션의 요청은 전부 무효(stale).
	latestSession map[int64]int64
	// canceledSession 명시적으로 취소된 세션. 큐에서는 지우지 않고 디큐 시점에 걸러낸다.
	canceledSession map[int64]int64
	// retryCount 다운스트림 실패 재시도 횟수
	retryCount map[models.RequestKey]int
	// inQueue 현재 큐에 들어 있는 (userId, sessionId) 집합. 중복 등록 방지용.
	inQueue map[models.RequestKey]struct{}

	maxRetry int
}

// NewStore Store 생성
func NewStore(maxRetry int) *Store {
	return &Store{
		pools:           make(map[int32]*mapPools),
		latestSession:   make(map[int64]int64),
		canceledSession: make(map[int64]int64),
		retryCount:      make(map[models.RequestKey]int),
		inQueue:         make(map[models.RequestKey]struct{}),
		maxRetry:        maxRetry,
	}
}

// ensurePools 맵 id의 진영별 큐를 최초 사용 시 생성
func (s *Store) ensurePools(mapID int32) *mapPools {
	pools, ok := s.pools[mapID]
	if !ok {
		pools = &mapPools{}
		s.pools[mapID] = pools
	}
	return pools
}

// Enqueue 매칭 요청을 큐에 추가. 취소/중복된 요청이면 버리고 false를 반환한다.
func (s *Store) Enqueue(req *models.MatchRequest) bool {
	key := req.Key()

	// 최신 세션 갱신. 같은 사용자의 이전 세션 요청은 이 시점부터 stale.
	s.latestSession[req.UserID] = req.SessionID

	if canceled, ok := s.canceledSession[req.UserID]; ok {
		if canceled != req.SessionID {
			// 옛 세션에 대한 취소 기록은 더 이상 의미 없음
			delete(s.canceledSession, req.UserID)
		} else {
			// 이 세션은 이미 취소됨
			return false
		}
	}

	if _, exists := s.inQueue[key]; exists {
		return false
	}

	pools := s.ensurePools(req.MapID)
	heap.Push(pools.queue(req.Faction), req)
	s.inQueue[key] = struct{}{}

	return true
}

// Cancel 취소 기록. 큐를 뒤지지 않고 디큐 시점에 걸러낸다 (lazy deletion).
func (s *Store) Cancel(userID, sessionID int64) {
	key := models.RequestKey{UserID: userID, SessionID: sessionID}

	s.canceledSession[userID] = sessionID
	delete(s.retryCount, key)
	delete(s.inQueue, key)
}

// Requeue 다운스트림 실패로 반환된 요청을 재등록.
// 그 사이 취소되었거나 새 세션으로 대체되었으면 재등록하지 않는다.
func (s *Store) Requeue(req *models.MatchRequest) bool {
	key := req.Key()

	if s.latestSession[req.UserID] != req.SessionID {
		return false
	}
	if canceled, ok := s.canceledSession[req.UserID]; ok && canceled == req.SessionID {
		return false
	}
	if _, exists := s.inQueue[key]; exists {
		return false
	}

	pools := s.ensurePools(req.MapID)
	heap.Push(pools.queue(req.Faction), req)
	s.inQueue[key] = struct{}{}

	return true
}

// ConfirmMatches 모든 맵에서 성사 가능한 페어를 전부 확정해 반환.
// 양쪽 큐의 헤드가 모두 유효할 때만 페어가 만들어지고, 무효 엔트리는 이 과정에서 제거된다.
func (s *Store) ConfirmMatches() []models.Pair {
	var pairs []models.Pair

	for _, pools := range s.pools {
		for {
			sheep := s.peekLive(&pools.sheep)
			if sheep == nil {
				break
			}
			wolf := s.peekLive(&pools.wolf)
			if wolf == nil {
				break
			}

			heap.Pop(&pools.sheep)
			heap.Pop(&pools.wolf)
			delete(s.inQueue, sheep.Key())
			delete(s.inQueue, wolf.Key())

			pairs = append(pairs, models.Pair{Sheep: sheep, Wolf: wolf})
		}
	}

	return pairs
}

// TakeOpponent 테스트 매치용. 반대 진영 큐에서 유효한 헤드를 꺼내 반환한다.
func (s *Store) TakeOpponent(mapID int32, faction models.Faction) *models.MatchRequest {
	pools, ok := s.pools[mapID]
	if !ok {
		return nil
	}

	q := pools.queue(faction.Opposite())
	opponent := s.peekLive(q)
	if opponent == nil {
		return nil
	}

	heap.Pop(q)
	delete(s.inQueue, opponent.Key())

	return opponent
}

// peekLive 큐 헤드에서 stale/취소된 엔트리를 걷어내고 첫 유효 요청을 반환 (pop하지 않음)
func (s *Store) peekLive(q *requestHeap) *models.MatchRequest {
	for q.Len() > 0 {
		head := (*q)[0]
		key := head.Key()

		stale := s.latestSession[head.UserID] != head.SessionID
		canceled, hasCancel := s.canceledSession[head.UserID]
		isCanceled := hasCancel && canceled == head.SessionID

		if !stale && !isCanceled {
			return head
		}

		heap.Pop(q)
		delete(s.inQueue, key)
		delete(s.retryCount, key)
		if isCanceled {
			// 취소 기록이 소비되었으므로 제거
			delete(s.canceledSession, head.UserID)
		}
	}

	return nil
}

// IncrementRetry 재시도 횟수 증가. 상한을 넘으면 false (요청 폐기 대상).
func (s *Store) IncrementRetry(key models.RequestKey) bool {
	count := s.retryCount[key] + 1
	if count > s.maxRetry {
		return false
	}

	s.retryCount[key] = count
	return true
}

// Drop 재시도 소진 등으로 요청을 완전히 폐기
func (s *Store) Drop(key models.RequestKey) {
	delete(s.retryCount, key)
	delete(s.inQueue, key)
}

// QueueDepth 맵의 진영별 큐 길이. 아직 걷어내지 않은 무효 엔트리도 포함된다.
func (s *Store) QueueDepth(mapID int32) (sheepDepth, wolfDepth int) {
	pools, ok := s.pools[mapID]
	if !ok {
		return 0, 0
	}
	return pools.sheep.Len(), pools.wolf.Len()
}
