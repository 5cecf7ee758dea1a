package repository

import (
	"course_exam_backend/internal/model"

	"gorm.io/gorm"
)

// QuestionRepository 题库只读访问。判分答案只通过 AnswerKeys 暴露给服务层。
type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) FindByMooc(moocID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Preload("Options").Where("mooc_id = ?", moocID).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CountByMooc(moocID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("mooc_id = ?", moocID).Count(&count).Error
	return count, err
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []model.Question
	err := r.DB.Preload("Options").Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// AnswerKeys 返回每道题的正确选项标签。多个正确选项（多选题）不在自动判分
// 范围内，只返回单选题的唯一正确标签，缺失的键按答错处理。
func (r *QuestionRepository) AnswerKeys(db *gorm.DB, questionIDs []uint) (map[uint]string, error) {
	if len(questionIDs) == 0 {
		return map[uint]string{}, nil
	}

	var options []model.QuestionOption
	if err := db.Where("question_id IN ? AND is_correct = ?", questionIDs, true).Find(&options).Error; err != nil {
		return nil, err
	}

	keys := make(map[uint]string, len(questionIDs))
	ambiguous := make(map[uint]bool)
	for _, opt := range options {
		if _, seen := keys[opt.QuestionID]; seen {
			ambiguous[opt.QuestionID] = true
			continue
		}
		keys[opt.QuestionID] = opt.Label
	}
	for id := range ambiguous {
		delete(keys, id)
	}
	return keys, nil
}
