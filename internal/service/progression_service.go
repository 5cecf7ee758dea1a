package service

import (
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// ProgressionService 在测验通过后推进报名进度。必须与提交判分跑在同一个
// 事务里：进度更新失败会连带回滚提交记录，不会出现"已通过但进度落后"的中间态。
type ProgressionService struct {
	MoocRepo       *repository.MoocRepository
	EnrollmentRepo *repository.EnrollmentRepository
	AttemptRepo    *repository.AttemptRepository
}

func NewProgressionService(moocRepo *repository.MoocRepository, enrollmentRepo *repository.EnrollmentRepository, attemptRepo *repository.AttemptRepository) *ProgressionService {
	return &ProgressionService{
		MoocRepo:       moocRepo,
		EnrollmentRepo: enrollmentRepo,
		AttemptRepo:    attemptRepo,
	}
}

// ProgressionOutcome 推进结果，用于响应体和提交后的事件广播
type ProgressionOutcome struct {
	NextMoocUnlocked bool
	NextMoocID       uint
	CourseCompleted  bool
	AlreadyCounted   bool
}

// ApplyPassedAttempt 在调用方事务内执行。幂等：同一单元的重复通过
// （重试请求、二刷通过）不会重复累计完成数，也不会把指针往回拨。
func (s *ProgressionService) ApplyPassedAttempt(tx *gorm.DB, attempt *model.ExamAttempt, mooc *model.Mooc) (*ProgressionOutcome, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(tx, attempt.UserID, mooc.CourseID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}

	alreadyCounted, err := s.AttemptRepo.HasPassedBefore(tx, attempt.UserID, mooc.ID, attempt.ID)
	if err != nil {
		return nil, err
	}

	totalMoocs, err := s.MoocRepo.CountByCourse(tx, mooc.CourseID)
	if err != nil {
		return nil, err
	}

	outcome := &ProgressionOutcome{AlreadyCounted: alreadyCounted}

	if !alreadyCounted && enrollment.MoocsCompleted < int(totalMoocs) {
		enrollment.MoocsCompleted++
	}
	if totalMoocs > 0 {
		enrollment.Progress = float64(enrollment.MoocsCompleted) * 100 / float64(totalMoocs)
	}

	// 当前尝试已在本事务内落账，平均分包含本次成绩
	avg, err := s.EnrollmentRepo.PassedAverageScore(tx, attempt.UserID, mooc.CourseID)
	if err != nil {
		return nil, err
	}
	enrollment.OverallScore = avg

	next, err := s.MoocRepo.NextInCourse(tx, mooc.CourseID, mooc.OrderIndex)
	switch err {
	case nil:
		advanced, aerr := s.advancePointer(tx, enrollment, next)
		if aerr != nil {
			return nil, aerr
		}
		outcome.NextMoocUnlocked = advanced
		outcome.NextMoocID = next.ID
	case gorm.ErrRecordNotFound:
		// 最后一个单元：全部完成才算结课
		if enrollment.MoocsCompleted >= int(totalMoocs) && !enrollment.Completed {
			now := time.Now()
			enrollment.Completed = true
			enrollment.CompletedAt = &now
			enrollment.Progress = 100
			outcome.CourseCompleted = true
		}
	default:
		return nil, err
	}

	if err := tx.Save(enrollment).Error; err != nil {
		return nil, err
	}
	return outcome, nil
}

// advancePointer 只向前推进 current_mooc 指针，重复解锁是空操作
func (s *ProgressionService) advancePointer(tx *gorm.DB, enrollment *model.Enrollment, next *model.Mooc) (bool, error) {
	if enrollment.CurrentMoocID == next.ID {
		return false, nil
	}
	if enrollment.CurrentMoocID != 0 {
		var current model.Mooc
		if err := tx.First(&current, enrollment.CurrentMoocID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return false, err
		} else if err == nil && current.OrderIndex >= next.OrderIndex {
			return false, nil
		}
	}
	enrollment.CurrentMoocID = next.ID
	return true, nil
}
