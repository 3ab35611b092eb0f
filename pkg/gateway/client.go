package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/models"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
)

// Client 세션 게이트웨이 HTTP 클라이언트.
// 매치 결과를 소켓 서버로 전달한다. 응답 본문은 성공/실패 외에 사용하지 않는다.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 게이트웨이 클라이언트 생성
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Deliver 매치 결과 전달
func (c *Client) Deliver(ctx context.Context, result *models.MatchResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}

	url := c.baseURL + "/internal/match-results"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("match delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("session gateway returned status %d: %s", resp.StatusCode, string(data))
	}

	logger.Info("Match result delivered",
		"matchId", result.MatchID,
		"mapId", result.MapID,
		"sheepUserId", result.Sheep.UserID,
		"wolfUserId", result.Wolf.UserID,
	)

	return nil
}
