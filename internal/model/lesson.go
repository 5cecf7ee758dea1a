package model

import "time"

// swagger:model Lesson
type Lesson struct {
	BaseModel

	MoocID     uint   `gorm:"index;type:bigint unsigned" json:"moocId"`
	Title      string `gorm:"size:255;not null" json:"title"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel

	UserID      uint       `gorm:"uniqueIndex:uq_lesson_progress;type:bigint unsigned" json:"userId"`
	LessonID    uint       `gorm:"uniqueIndex:uq_lesson_progress;type:bigint unsigned" json:"lessonId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
