package service

import (
	"fmt"
	"math"
	"strings"
)

// HealthMetricsRequest 身体指标计算入参
type HealthMetricsRequest struct {
	HeightCm float64
	WeightKg float64
	Age      int
	Gender   string
}

// HealthMetrics 计算结果
type HealthMetrics struct {
	BMI float64 `json:"bmi"` // 保留一位小数
	BMR int     `json:"bmr"` // 四舍五入到整数
}

// ComputeHealthMetrics 计算 BMI 与基础代谢率（Mifflin-St Jeor 公式）
func ComputeHealthMetrics(req HealthMetricsRequest) (*HealthMetrics, error) {
	if req.HeightCm <= 0 || req.WeightKg <= 0 || req.Age <= 0 || strings.TrimSpace(req.Gender) == "" {
		return nil, fmt.Errorf("%w: heightCm、weightKg、age、gender 均为必填", ErrInvalidInput)
	}

	heightM := req.HeightCm / 100
	bmi := req.WeightKg / (heightM * heightM)

	bmr := 10*req.WeightKg + 6.25*req.HeightCm - 5*float64(req.Age)
	switch strings.ToLower(strings.TrimSpace(req.Gender)) {
	case "male", "m":
		bmr += 5
	default:
		bmr -= 161
	}

	return &HealthMetrics{
		BMI: math.Round(bmi*10) / 10,
		BMR: int(math.Round(bmr)),
	}, nil
}
