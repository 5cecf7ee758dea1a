package model

// swagger:model Course
type Course struct {
	BaseModel

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (Course) TableName() string {
	return "courses"
}

// Mooc 课程内的一个可考核单元，按 OrderIndex 在课程内排序
// swagger:model Mooc
type Mooc struct {
	BaseModel

	CourseID   uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	Name       string `gorm:"size:255;not null" json:"name"`
	OrderIndex int    `gorm:"not null;default:0" json:"orderIndex"`
	// PassingScore 为 0 时使用配置中的默认及格线
	PassingScore int `gorm:"default:0" json:"passingScore"`
}

func (Mooc) TableName() string {
	return "moocs"
}
