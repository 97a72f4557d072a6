package dto

import "time"

// StudentGroupKey 分组键
type StudentGroupKey struct {
	Year    string `json:"year"`
	Session string `json:"session"`
}

// GroupedStudent 分组内的学生摘要
type GroupedStudent struct {
	ID      string  `json:"_id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Roll    string  `json:"roll"`
	Phone   string  `json:"phone"`
	Avatar  *string `json:"avatar"`
	Session string  `json:"session"`
}

// StudentGroup 按 (year, session) 分组的学生
type StudentGroup struct {
	ID       StudentGroupKey  `json:"_id"`
	Students []GroupedStudent `json:"students"`
}

// PromotionResult 一次升年级任务的结果
type PromotionResult struct {
	RanAt            time.Time `json:"ranAt"`
	Removed          int64     `json:"removed"`
	PromotedToThird  int64     `json:"promotedToThird"`
	PromotedToSecond int64     `json:"promotedToSecond"`
}
