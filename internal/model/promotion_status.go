package model

import (
	"fmt"
	"time"
)

// PromotionStatus 活动生命周期状态
type PromotionStatus string

const (
	PromotionStatusScheduled PromotionStatus = "scheduled" // 未开始
	PromotionStatusOngoing   PromotionStatus = "ongoing"   // 进行中
	PromotionStatusCompleted PromotionStatus = "completed" // 已结束
)

// ClassifyPromotion 根据起止时间判断活动状态
// start <= now <= end 视为进行中，两端都包含
// end < start 时结果无意义，由调用方保证
func ClassifyPromotion(start, end, now time.Time) PromotionStatus {
	if now.Before(start) {
		return PromotionStatusScheduled
	}
	if !now.After(end) {
		return PromotionStatusOngoing
	}
	return PromotionStatusCompleted
}

// ParsePromotionStatus 解析列表筛选参数
func ParsePromotionStatus(s string) (PromotionStatus, error) {
	switch PromotionStatus(s) {
	case PromotionStatusScheduled, PromotionStatusOngoing, PromotionStatusCompleted:
		return PromotionStatus(s), nil
	}
	return "", fmt.Errorf("unknown promotion status %q", s)
}

// Label 展示文案
func (s PromotionStatus) Label() string {
	switch s {
	case PromotionStatusScheduled:
		return "Scheduled"
	case PromotionStatusOngoing:
		return "Ongoing"
	case PromotionStatusCompleted:
		return "Completed"
	}
	return ""
}

// StatusBadge 列表徽标提示
type StatusBadge struct {
	Tone     string `json:"tone,omitempty"`
	Progress string `json:"progress"`
}

// Badge 返回状态对应的徽标样式
func (s PromotionStatus) Badge() StatusBadge {
	switch s {
	case PromotionStatusScheduled:
		return StatusBadge{Tone: "attention", Progress: "incomplete"}
	case PromotionStatusOngoing:
		return StatusBadge{Tone: "success", Progress: "partiallyComplete"}
	}
	return StatusBadge{Progress: "complete"}
}
