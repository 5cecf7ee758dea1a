package repository

import (
	"course_exam_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) FindByUserAndCourse(db *gorm.DB, userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PassedAverageScore 已通过单元的平均分：每个单元取最高通过分后求平均
func (r *EnrollmentRepository) PassedAverageScore(db *gorm.DB, userID, courseID uint) (float64, error) {
	var avg *float64
	err := db.Raw(`
		SELECT AVG(best) FROM (
			SELECT MAX(ea.score) AS best
			FROM exam_attempts ea
			JOIN moocs m ON m.id = ea.mooc_id
			WHERE ea.user_id = ? AND m.course_id = ? AND ea.passed = ? AND ea.deleted_at IS NULL
			GROUP BY ea.mooc_id
		) per_mooc
	`, userID, courseID, true).Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
