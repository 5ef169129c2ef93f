// Package enrich 对接外部动作数据源：API Ninjas 动作查询与 YouTube 教学视频封面。
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUpstream 上游接口返回错误，边界层映射为 502
var ErrUpstream = errors.New("上游接口错误")

// NinjasClient API Ninjas 客户端
type NinjasClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NinjasConfig 配置
type NinjasConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewNinjasClient 创建客户端
func NewNinjasClient(cfg *NinjasConfig) *NinjasClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.api-ninjas.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &NinjasClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Configured API Key 是否已配置
func (c *NinjasClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Exercise API Ninjas 返回的动作
type Exercise struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Muscle       string `json:"muscle"`
	Equipment    string `json:"equipment"`
	Difficulty   string `json:"difficulty"`
	Instructions string `json:"instructions"`
}

// ExerciseQuery 查询条件，空字段不传
type ExerciseQuery struct {
	Muscle     string
	Type       string
	Difficulty string
}

// Search 查询动作列表
func (c *NinjasClient) Search(ctx context.Context, query ExerciseQuery) ([]Exercise, error) {
	params := url.Values{}
	if query.Muscle != "" {
		params.Set("muscle", query.Muscle)
	}
	if query.Type != "" {
		params.Set("type", query.Type)
	}
	if query.Difficulty != "" {
		params.Set("difficulty", query.Difficulty)
	}

	endpoint := c.baseURL + "/v1/exercises"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: 状态码 %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}

	var exercises []Exercise
	if err := json.NewDecoder(resp.Body).Decode(&exercises); err != nil {
		return nil, fmt.Errorf("%w: 解析响应失败: %v", ErrUpstream, err)
	}

	return exercises, nil
}
