package model

import "time"

// AttemptQuestion 冻结到 attempts 行上的抽题记录：题目ID + 当次下发的选项顺序
type AttemptQuestion struct {
	QuestionID  uint     `json:"questionId"`
	OptionOrder []string `json:"optionOrder"`
}

// AttemptAnswer 学员提交的单题作答
type AttemptAnswer struct {
	QuestionID    uint   `json:"questionId"`
	SelectedLabel string `json:"selectedLabel"`
}

// ExamAttempt 一次测验记录。
// Active 列配合 (user_id, mooc_id, active) 唯一索引实现"同一学员同一单元
// 至多一条未提交记录"：进行中为 true，提交后置 NULL（NULL 不参与唯一性判定），
// 并发创建会触发重复键冲突而不是产生第二条进行中记录。
// swagger:model ExamAttempt
type ExamAttempt struct {
	BaseModel

	UserID uint  `gorm:"uniqueIndex:uq_open_attempt;type:bigint unsigned" json:"userId"`
	MoocID uint  `gorm:"uniqueIndex:uq_open_attempt;type:bigint unsigned" json:"moocId"`
	Active *bool `gorm:"uniqueIndex:uq_open_attempt" json:"-"`

	StartedAt        time.Time  `json:"startedAt"`
	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	TimeTakenSeconds int        `gorm:"default:0" json:"timeTakenSeconds"`

	// Questions/Answers 为 JSON 列：[]AttemptQuestion / []AttemptAnswer
	Questions string `gorm:"type:json" json:"-"`
	Answers   string `gorm:"type:json" json:"-"`

	TotalQuestions int     `gorm:"default:0" json:"totalQuestions"`
	CorrectCount   int     `gorm:"default:0" json:"correctCount"`
	Score          float64 `gorm:"default:0" json:"score"`
	Passed         bool    `gorm:"default:false" json:"passed"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// Submitted 是否已进入终止态
func (a *ExamAttempt) Submitted() bool {
	return a.SubmittedAt != nil
}
