package repository

import (
	"course_exam_backend/internal/model"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) FindByID(id uint) (*model.ExamAttempt, error) {
	var a model.ExamAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOpenByUserAndMooc 返回进行中的尝试（没有则返回 gorm.ErrRecordNotFound）
func (r *AttemptRepository) FindOpenByUserAndMooc(userID, moocID uint) (*model.ExamAttempt, error) {
	var a model.ExamAttempt
	err := r.DB.Where("user_id = ? AND mooc_id = ? AND submitted_at IS NULL", userID, moocID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByUserAndMooc(userID, moocID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).Where("user_id = ? AND mooc_id = ?", userID, moocID).Count(&count).Error
	return count, err
}

// LastStartedAt 最近一次开考时间，用于冷却检查；无记录时返回零值
func (r *AttemptRepository) LastStartedAt(userID, moocID uint) (time.Time, error) {
	var a model.ExamAttempt
	err := r.DB.Where("user_id = ? AND mooc_id = ?", userID, moocID).
		Order("started_at DESC").First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return a.StartedAt, nil
}

func (r *AttemptRepository) ListByUserAndMooc(userID, moocID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Where("user_id = ? AND mooc_id = ?", userID, moocID).
		Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}

// HasPassedBefore 当前尝试之外是否已有通过记录，是进度重放的幂等依据
func (r *AttemptRepository) HasPassedBefore(db *gorm.DB, userID, moocID, excludeAttemptID uint) (bool, error) {
	var count int64
	err := db.Model(&model.ExamAttempt{}).
		Where("user_id = ? AND mooc_id = ? AND passed = ? AND id <> ?", userID, moocID, true, excludeAttemptID).
		Count(&count).Error
	return count > 0, err
}

// PreviouslyServedQuestionIDs 该学员在此单元历史尝试中见过的题目集合，
// 抽题时仅作标记，不做去重
func (r *AttemptRepository) PreviouslyServedQuestionIDs(userID, moocID uint) (map[uint]bool, error) {
	var attempts []model.ExamAttempt
	if err := r.DB.Select("questions").Where("user_id = ? AND mooc_id = ?", userID, moocID).Find(&attempts).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	for _, a := range attempts {
		for _, q := range parseAttemptQuestions(a.Questions) {
			seen[q.QuestionID] = true
		}
	}
	return seen, nil
}

// BestScore 历史最高分；无已提交记录时返回 nil
func (r *AttemptRepository) BestScore(userID, moocID uint) (*float64, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Select("score").
		Where("user_id = ? AND mooc_id = ? AND submitted_at IS NOT NULL", userID, moocID).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, nil
	}
	best := attempts[0].Score
	for _, a := range attempts[1:] {
		if a.Score > best {
			best = a.Score
		}
	}
	return &best, nil
}

func parseAttemptQuestions(raw string) []model.AttemptQuestion {
	if raw == "" {
		return nil
	}
	var questions []model.AttemptQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil
	}
	return questions
}
