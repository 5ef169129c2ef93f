package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Enricher 为动作列表补充教学视频链接与封面。
// YouTube 查询失败或未配置时退化为搜索链接 + 占位图，不影响主流程。
type Enricher struct {
	youtube *YouTubeClient
}

// NewEnricher 创建 Enricher。youtube 可以为 nil。
func NewEnricher(youtube *YouTubeClient) *Enricher {
	return &Enricher{youtube: youtube}
}

// EnrichedExercise 补充了视频信息的动作，JSON 字段与移动端契约一致
type EnrichedExercise struct {
	Exercise
	YouTubeSearchURL string `json:"youtubeSearchUrl"`
	ThumbnailURL     string `json:"thumbnailUrl"`
	VideoID          string `json:"videoId,omitempty"`
}

// Enrich 逐个补充视频信息
func (e *Enricher) Enrich(ctx context.Context, exercises []Exercise) []EnrichedExercise {
	enriched := make([]EnrichedExercise, 0, len(exercises))

	for _, ex := range exercises {
		item := EnrichedExercise{Exercise: ex}

		searchQuery := fmt.Sprintf("%s %s exercise tutorial", ex.Name, ex.Muscle)
		item.YouTubeSearchURL = "https://www.youtube.com/results?search_query=" + url.QueryEscape(searchQuery)

		if e.youtube.Configured() {
			hit, err := e.youtube.FirstVideo(ctx, fmt.Sprintf("%s %s exercise", ex.Name, ex.Muscle))
			if err != nil {
				slog.Warn("查询教学视频失败", "exercise", ex.Name, "error", err)
			} else if hit != nil {
				item.VideoID = hit.VideoID
				item.ThumbnailURL = hit.ThumbnailURL
				item.YouTubeSearchURL = "https://www.youtube.com/watch?v=" + hit.VideoID
			}
		}

		if item.ThumbnailURL == "" {
			item.ThumbnailURL = "https://via.placeholder.com/400x300/1f2937/38bdf8?text=" + url.QueryEscape(ex.Name)
		}

		enriched = append(enriched, item)
	}

	return enriched
}
