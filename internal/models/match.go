package models

type Faction string

const (
	FactionSheep Faction = "sheep"
	FactionWolf  Faction = "wolf"
)

// Opposite 반대 진영 반환
func (f Faction) Opposite() Faction {
	if f == FactionSheep {
		return FactionWolf
	}
	return FactionSheep
}

// Valid 진영 값 검증
func (f Faction) Valid() bool {
	return f == FactionSheep || f == FactionWolf
}

// MatchRequest 매칭 대기 요청
type MatchRequest struct {
	UserID       int64   `json:"userId" binding:"required"`
	SessionID    int64   `json:"sessionId" binding:"required"`
	Faction      Faction `json:"faction" binding:"required"`
	MapID        int32   `json:"mapId"`
	RankPoint    int     `json:"rankPoint"`
	UserName     string  `json:"userName"`
	CharacterID  int64   `json:"characterId"`
	UnitIDs      []int64 `json:"unitIds"`
	Achievements []int32 `json:"achievements"`
	IsAI         bool    `json:"isAI"`
}

// Key 큐 멤버십 및 재시도 추적용 키
func (r *MatchRequest) Key() RequestKey {
	return RequestKey{UserID: r.UserID, SessionID: r.SessionID}
}

// RequestKey (userId, sessionId) 쌍
type RequestKey struct {
	UserID    int64
	SessionID int64
}

// Pair 확정된 매칭 페어 (양 진영 요청 하나씩)
type Pair struct {
	Sheep *MatchRequest
	Wolf  *MatchRequest
}

// CancelRequest 매칭 취소 요청
type CancelRequest struct {
	UserID    int64 `json:"userId" binding:"required"`
	SessionID int64 `json:"sessionId" binding:"required"`
}
