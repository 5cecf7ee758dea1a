package service

import (
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"

	"gorm.io/gorm"
)

// 课程进度视图里单元的四种状态
const (
	MoocStatusLocked        = "locked"
	MoocStatusInProgress    = "in_progress"
	MoocStatusExamAvailable = "exam_available"
	MoocStatusCompleted     = "completed"
)

// LearningService 课时完成与课程进度视图。前置条件检查消费的
// lesson_progress 数据由它写入。
type LearningService struct {
	MoocRepo       *repository.MoocRepository
	LessonRepo     *repository.LessonRepository
	AttemptRepo    *repository.AttemptRepository
	EnrollmentRepo *repository.EnrollmentRepository
	DB             *gorm.DB
}

func NewLearningService(
	moocRepo *repository.MoocRepository,
	lessonRepo *repository.LessonRepository,
	attemptRepo *repository.AttemptRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	db *gorm.DB,
) *LearningService {
	return &LearningService{
		MoocRepo:       moocRepo,
		LessonRepo:     lessonRepo,
		AttemptRepo:    attemptRepo,
		EnrollmentRepo: enrollmentRepo,
		DB:             db,
	}
}

func (s *LearningService) CompleteLesson(userID, lessonID uint) error {
	if _, err := s.LessonRepo.FindByID(lessonID); err == gorm.ErrRecordNotFound {
		return util.ErrLessonNotFound
	} else if err != nil {
		return err
	}
	return s.LessonRepo.MarkCompleted(userID, lessonID)
}

type MoocProgress struct {
	MoocID           uint     `json:"moocId"`
	Name             string   `json:"name"`
	OrderIndex       int      `json:"orderIndex"`
	Status           string   `json:"status"`
	LessonsCompleted int      `json:"lessonsCompleted"`
	TotalLessons     int      `json:"totalLessons"`
	ExamPassed       bool     `json:"examPassed"`
	ExamScore        *float64 `json:"examScore,omitempty"`
}

type CourseProgress struct {
	CourseID             uint           `json:"courseId"`
	CurrentMoocID        uint           `json:"currentMoocId"`
	MoocsCompleted       int            `json:"moocsCompleted"`
	OverallProgress      float64        `json:"overallProgress"`
	OverallScore         float64        `json:"overallScore"`
	Completed            bool           `json:"completed"`
	CertificateAvailable bool           `json:"certificateAvailable"`
	Moocs                []MoocProgress `json:"moocs"`
}

// GetCourseProgress 报名快照 + 按课程顺序的逐单元状态。
// 解锁规则：第一个单元总是可进入，其后单元要求前面的都已完成。
func (s *LearningService) GetCourseProgress(userID, courseID uint) (*CourseProgress, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(s.DB, userID, courseID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}

	moocs, err := s.MoocRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}

	progress := &CourseProgress{
		CourseID:        courseID,
		CurrentMoocID:   enrollment.CurrentMoocID,
		MoocsCompleted:  enrollment.MoocsCompleted,
		OverallProgress: enrollment.Progress,
		OverallScore:    enrollment.OverallScore,
		Completed:       enrollment.Completed,
		Moocs:           make([]MoocProgress, 0, len(moocs)),
	}

	allPassed := len(moocs) > 0
	unlocked := 0
	for i, mooc := range moocs {
		totalLessons, err := s.LessonRepo.CountByMooc(mooc.ID)
		if err != nil {
			return nil, err
		}
		completedLessons, err := s.LessonRepo.CountCompletedByMooc(userID, mooc.ID)
		if err != nil {
			return nil, err
		}

		passed, best, err := s.passedWithBest(userID, mooc.ID)
		if err != nil {
			return nil, err
		}
		if !passed {
			allPassed = false
		}

		status := MoocStatusLocked
		if i == 0 || unlocked >= i {
			switch {
			case passed:
				status = MoocStatusCompleted
			case totalLessons > 0 && completedLessons >= totalLessons:
				status = MoocStatusExamAvailable
			default:
				status = MoocStatusInProgress
			}
		}
		if passed {
			unlocked = i + 1
		}

		progress.Moocs = append(progress.Moocs, MoocProgress{
			MoocID:           mooc.ID,
			Name:             mooc.Name,
			OrderIndex:       mooc.OrderIndex,
			Status:           status,
			LessonsCompleted: int(completedLessons),
			TotalLessons:     int(totalLessons),
			ExamPassed:       passed,
			ExamScore:        best,
		})
	}

	progress.CertificateAvailable = allPassed
	return progress, nil
}

func (s *LearningService) passedWithBest(userID, moocID uint) (bool, *float64, error) {
	var attempts []model.ExamAttempt
	err := s.DB.Select("score").
		Where("user_id = ? AND mooc_id = ? AND passed = ?", userID, moocID, true).
		Find(&attempts).Error
	if err != nil {
		return false, nil, err
	}
	if len(attempts) == 0 {
		return false, nil, nil
	}
	best := attempts[0].Score
	for _, a := range attempts[1:] {
		if a.Score > best {
			best = a.Score
		}
	}
	return true, &best, nil
}
