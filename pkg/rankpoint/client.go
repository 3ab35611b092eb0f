package rankpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
)

// Client 랭크 포인트 서비스 HTTP 클라이언트
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 랭크 포인트 클라이언트 생성
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LookupRequest 랭크 포인트 조회 요청
type LookupRequest struct {
	SheepUserID int64 `json:"sheepUserId"`
	WolfUserID  int64 `json:"wolfUserId"`
}

// LookupResponse 진영별 승/패 포인트 증감
type LookupResponse struct {
	SheepWinPoint  int `json:"sheepWinPoint"`
	SheepLosePoint int `json:"sheepLosePoint"`
	WolfWinPoint   int `json:"wolfWinPoint"`
	WolfLosePoint  int `json:"wolfLosePoint"`
}

// Lookup 두 참가자의 승/패 랭크 포인트 증감 조회
func (c *Client) Lookup(ctx context.Context, sheepUserID, wolfUserID int64) (*LookupResponse, error) {
	body, err := json.Marshal(LookupRequest{
		SheepUserID: sheepUserID,
		WolfUserID:  wolfUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lookup request: %w", err)
	}

	url := c.baseURL + "/internal/rank-points"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rank point lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rank point service returned status %d: %s", resp.StatusCode, string(data))
	}

	var result LookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	logger.Debug("Rank point lookup completed",
		"sheepUserId", sheepUserID,
		"wolfUserId", wolfUserID,
		"sheepWin", result.SheepWinPoint,
		"wolfWin", result.WolfWinPoint,
	)

	return &result, nil
}
