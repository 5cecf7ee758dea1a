package repository

import (
	"course_exam_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var l model.Lesson
	if err := r.DB.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LessonRepository) CountByMooc(moocID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("mooc_id = ?", moocID).Count(&count).Error
	return count, err
}

func (r *LessonRepository) CountCompletedByMooc(userID, moocID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lessons.mooc_id = ? AND lesson_progress.completed = ?", userID, moocID, true).
		Count(&count).Error
	return count, err
}

// MarkCompleted 写入或更新课时完成记录，重复标记是无害的
func (r *LessonRepository) MarkCompleted(userID, lessonID uint) error {
	now := time.Now()

	var progress model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		progress = model.LessonProgress{
			UserID:      userID,
			LessonID:    lessonID,
			Completed:   true,
			CompletedAt: &now,
		}
		return r.DB.Create(&progress).Error
	}
	if err != nil {
		return err
	}
	if progress.Completed {
		return nil
	}
	progress.Completed = true
	progress.CompletedAt = &now
	return r.DB.Save(&progress).Error
}
