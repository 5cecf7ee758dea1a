package model

const (
	QuestionTypeSingleChoice = "single_choice"
	QuestionTypeMultiChoice  = "multi_choice"
	QuestionTypeFreeText     = "free_text"
)

const (
	QuestionDifficultyEasy   = "easy"
	QuestionDifficultyMedium = "medium"
	QuestionDifficultyHard   = "hard"
)

// swagger:model Question
type Question struct {
	BaseModel

	MoocID     uint             `gorm:"index;type:bigint unsigned" json:"moocId"`
	Stem       string           `gorm:"type:text;not null" json:"stem"`
	QType      string           `gorm:"size:50;default:'single_choice'" json:"qtype"`
	Difficulty string           `gorm:"size:50;default:'medium'" json:"difficulty"`
	Options    []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionOption 选项，IsCorrect 只在服务端参与判分，出题接口不会下发
// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel

	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Label      string `gorm:"size:8;not null" json:"label"`
	Content    string `gorm:"type:text" json:"content"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
