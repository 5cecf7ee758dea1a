package repository

import (
	"course_exam_backend/internal/model"

	"gorm.io/gorm"
)

type MoocRepository struct {
	DB *gorm.DB
}

func NewMoocRepository(db *gorm.DB) *MoocRepository {
	return &MoocRepository{DB: db}
}

func (r *MoocRepository) FindByID(id uint) (*model.Mooc, error) {
	var m model.Mooc
	if err := r.DB.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MoocRepository) ListByCourse(courseID uint) ([]model.Mooc, error) {
	var moocs []model.Mooc
	err := r.DB.Where("course_id = ?", courseID).Order("order_index ASC").Find(&moocs).Error
	return moocs, err
}

func (r *MoocRepository) CountByCourse(db *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := db.Model(&model.Mooc{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// NextInCourse 课程内排在 orderIndex 之后的第一个单元；没有则返回
// gorm.ErrRecordNotFound，表示这是最后一个单元
func (r *MoocRepository) NextInCourse(db *gorm.DB, courseID uint, orderIndex int) (*model.Mooc, error) {
	var m model.Mooc
	err := db.Where("course_id = ? AND order_index > ?", courseID, orderIndex).
		Order("order_index ASC").First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
