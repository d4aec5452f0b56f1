package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
)

const defaultTimeout = 5 * time.Second

// HTTPClient обращается к внешнему сервису предсказания часов.
// Ожидается POST {baseURL}/predict с WorkHistorySnapshot и ответ {"predictedHours": n}.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ repository.HoursPredictor = (*HTTPClient)(nil)

type predictResponse struct {
	PredictedHours *float64 `json:"predictedHours"`
}

func (c *HTTPClient) PredictHours(ctx context.Context, snapshot repository.WorkHistorySnapshot) (float64, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("predictor: baseURL не задан")
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("predictor: код ответа %d", resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("predictor: не удалось разобрать ответ: %w", err)
	}
	if result.PredictedHours == nil {
		return 0, fmt.Errorf("predictor: в ответе нет predictedHours")
	}
	return *result.PredictedHours, nil
}
