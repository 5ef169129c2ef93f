package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// YouTubeClient YouTube Data API 客户端，用于查找动作教学视频封面
type YouTubeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// YouTubeConfig 配置
type YouTubeConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewYouTubeClient 创建客户端
func NewYouTubeClient(cfg *YouTubeConfig) *YouTubeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &YouTubeClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Configured API Key 是否已配置
func (c *YouTubeClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// VideoHit 搜索命中的视频
type VideoHit struct {
	VideoID      string
	ThumbnailURL string
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Thumbnails struct {
				High    thumbnail `json:"high"`
				Medium  thumbnail `json:"medium"`
				Default thumbnail `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// FirstVideo 返回搜索词的第一个视频及其最高质量封面，未命中时返回 nil
func (c *YouTubeClient) FirstVideo(ctx context.Context, query string) (*VideoHit, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", c.apiKey)

	endpoint := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: 状态码 %d", ErrUpstream, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: 解析响应失败: %v", ErrUpstream, err)
	}

	if len(parsed.Items) == 0 {
		return nil, nil
	}

	item := parsed.Items[0]
	hit := &VideoHit{VideoID: item.ID.VideoID}
	switch {
	case item.Snippet.Thumbnails.High.URL != "":
		hit.ThumbnailURL = item.Snippet.Thumbnails.High.URL
	case item.Snippet.Thumbnails.Medium.URL != "":
		hit.ThumbnailURL = item.Snippet.Thumbnails.Medium.URL
	default:
		hit.ThumbnailURL = item.Snippet.Thumbnails.Default.URL
	}
	return hit, nil
}
