package model

import "time"

// Enrollment 学员在某课程内的报名与进度记录。
// CurrentMoocID 只会沿课程 OrderIndex 向前推进，由 ProgressionService 独占修改。
// swagger:model Enrollment
type Enrollment struct {
	BaseModel

	UserID   uint `gorm:"uniqueIndex:uq_enrollment;type:bigint unsigned" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:uq_enrollment;type:bigint unsigned" json:"courseId"`

	CurrentMoocID  uint       `gorm:"type:bigint unsigned" json:"currentMoocId"`
	MoocsCompleted int        `gorm:"default:0" json:"moocsCompleted"`
	Progress       float64    `gorm:"default:0" json:"progress"`
	OverallScore   float64    `gorm:"default:0" json:"overallScore"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
