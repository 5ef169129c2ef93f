// Package importer 从归一化 CSV（每行一个属性）导入动作库。
// CSV 来自第三方动作数据库导出：同一动作占多行，
// 以 id 聚合，attribute_name/attribute_value 描述类型、肌群、器械等。
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yuqie6/GymRack/internal/schema"
)

// ExerciseUpserter 导入器需要的最小仓储接口
type ExerciseUpserter interface {
	Upsert(ctx context.Context, exercise *schema.Exercise) (bool, error)
}

// Importer CSV 动作导入器
type Importer struct {
	repo ExerciseUpserter
}

// New 创建导入器
func New(repo ExerciseUpserter) *Importer {
	return &Importer{repo: repo}
}

// Summary 导入结果统计
type Summary struct {
	Parsed   int `json:"parsed"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// ImportFile 从文件导入
func (im *Importer) ImportFile(ctx context.Context, path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 CSV 文件失败: %w", err)
	}
	defer f.Close()

	return im.ImportReader(ctx, f)
}

// ImportReader 解析并逐条 Upsert
func (im *Importer) ImportReader(ctx context.Context, r io.Reader) (*Summary, error) {
	exercises, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Parsed: len(exercises)}
	for i := range exercises {
		ex := &exercises[i]
		if ex.Name == "" {
			summary.Skipped++
			continue
		}

		isNew, err := im.repo.Upsert(ctx, ex)
		if err != nil {
			slog.Error("写入动作失败", "name", ex.Name, "error", err)
			summary.Skipped++
			continue
		}
		if isNew {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}

	slog.Info("动作库导入完成",
		"parsed", summary.Parsed,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// rawExercise 聚合中间态
type rawExercise struct {
	name          string
	description   string
	videoURL      string
	thumbnailURL  string
	types         []string
	primary       []string
	secondary     []string
	equipment     []string
	mechanicsType string
}

// ParseCSV 解析归一化 CSV，按首次出现顺序返回去重后的动作
func ParseCSV(r io.Reader) ([]schema.Exercise, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 行宽不定，按 header 取列

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取 CSV 表头失败: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, names ...string) string {
		for _, name := range names {
			if idx, ok := col[name]; ok && idx < len(row) {
				if v := strings.TrimSpace(row[idx]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	byID := make(map[string]*rawExercise)
	var order []string

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 CSV 行失败: %w", err)
		}

		id := field(row, "id")
		if id == "" {
			continue
		}

		ex, ok := byID[id]
		if !ok {
			ex = &rawExercise{
				name:         field(row, "name_en", "name"),
				description:  field(row, "description_en", "description"),
				videoURL:     field(row, "full_video_url"),
				thumbnailURL: field(row, "full_video_image_url"),
			}
			byID[id] = ex
			order = append(order, id)
		}

		value := field(row, "attribute_value")
		switch field(row, "attribute_name") {
		case "TYPE":
			ex.types = appendUnique(ex.types, value)
		case "PRIMARY_MUSCLE":
			ex.primary = appendUnique(ex.primary, value)
		case "SECONDARY_MUSCLE":
			ex.secondary = appendUnique(ex.secondary, value)
		case "EQUIPMENT":
			ex.equipment = appendUnique(ex.equipment, value)
		case "MECHANICS_TYPE":
			if value != "" {
				ex.mechanicsType = value
			}
		}
	}

	exercises := make([]schema.Exercise, 0, len(order))
	for _, id := range order {
		ex := byID[id]

		muscles := append(append([]string{}, ex.primary...), ex.secondary...)

		exType := ""
		if len(ex.types) > 0 {
			exType = ex.types[0]
		}

		exercises = append(exercises, schema.Exercise{
			Name:         strings.TrimSpace(ex.name),
			Type:         exType,
			Muscle:       strings.ToLower(strings.Join(muscles, ", ")),
			Equipment:    strings.Join(ex.equipment, ", "),
			Difficulty:   deriveDifficulty(ex.mechanicsType, ex.types),
			Instructions: StripHTML(ex.description),
			VideoURL:     ex.videoURL,
			ThumbnailURL: ex.thumbnailURL,
		})
	}

	return exercises, nil
}

// deriveDifficulty 由力学类型/动作类型推导难度
func deriveDifficulty(mechanicsType string, types []string) string {
	switch mechanicsType {
	case "COMPOUND":
		return "intermediate"
	case "ISOLATION":
		return "beginner"
	}
	for _, t := range types {
		if t == "PLYOMETRICS" || t == "CROSSFIT" {
			return "expert"
		}
	}
	return "intermediate"
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
