package models

import "time"

// MatchPlayer 매치 결과에 포함되는 플레이어 정보
type MatchPlayer struct {
	UserID       int64   `json:"userId"`
	SessionID    int64   `json:"sessionId"`
	UserName     string  `json:"userName"`
	RankPoint    int     `json:"rankPoint"`
	WinPoint     int     `json:"winPoint"`
	LosePoint    int     `json:"losePoint"`
	CharacterID  int64   `json:"characterId"`
	UnitIDs      []int64 `json:"unitIds"`
	Achievements []int32 `json:"achievements"`
	IsAI         bool    `json:"isAI"`
}

// MatchResult 세션 게이트웨이로 전달되는 매치 결과
type MatchResult struct {
	MatchID      string      `json:"matchId"`
	MapID        int32       `json:"mapId"`
	Sheep        MatchPlayer `json:"sheep"`
	Wolf         MatchPlayer `json:"wolf"`
	AISimulation bool        `json:"aiSimulation"`
	TestMatch    bool        `json:"testMatch"`
	MatchedAt    time.Time   `json:"matchedAt"`
}
