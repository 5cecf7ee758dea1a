package service

import (
	"testing"

	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLearningService(db *gorm.DB) *LearningService {
	return NewLearningService(
		repository.NewMoocRepository(db),
		repository.NewLessonRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewEnrollmentRepository(db),
		db,
	)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestLearningService(db)

	var lesson model.Lesson
	require.NoError(t, db.Where("mooc_id = ?", f.mooc1.ID).First(&lesson).Error)

	require.NoError(t, svc.CompleteLesson(f.userID, lesson.ID))
	require.NoError(t, svc.CompleteLesson(f.userID, lesson.ID))

	var count int64
	require.NoError(t, db.Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", f.userID, lesson.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCompleteLessonNotFound(t *testing.T) {
	db := openTestDB(t)
	seedCourse(t, db)
	svc := newTestLearningService(db)

	err := svc.CompleteLesson(1, 9999)
	require.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestGetCourseProgressFresh(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestLearningService(db)

	progress, err := svc.GetCourseProgress(f.userID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, f.mooc1.ID, progress.CurrentMoocID)
	assert.Equal(t, 0, progress.MoocsCompleted)
	assert.False(t, progress.Completed)
	assert.False(t, progress.CertificateAvailable)
	require.Len(t, progress.Moocs, 2)

	assert.Equal(t, MoocStatusInProgress, progress.Moocs[0].Status)
	assert.Equal(t, MoocStatusLocked, progress.Moocs[1].Status)
}

func TestGetCourseProgressExamAvailable(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestLearningService(db)
	completeAllLessons(t, db, f.userID, f.mooc1.ID)

	progress, err := svc.GetCourseProgress(f.userID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, MoocStatusExamAvailable, progress.Moocs[0].Status)
	assert.Equal(t, 1, progress.Moocs[0].LessonsCompleted)
	assert.Equal(t, MoocStatusLocked, progress.Moocs[1].Status)
}

func TestGetCourseProgressAfterPassing(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	learning := newTestLearningService(db)
	exam := newTestExamService(db, testPolicy())
	completeAllLessons(t, db, f.userID, f.mooc1.ID)

	started, err := exam.StartAttempt(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	_, err = exam.SubmitAttempt(f.userID, started.AttemptID, answersFor(t, db, started.AttemptID, 5))
	require.NoError(t, err)

	progress, err := learning.GetCourseProgress(f.userID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, f.mooc2.ID, progress.CurrentMoocID)
	assert.Equal(t, 1, progress.MoocsCompleted)
	assert.False(t, progress.CertificateAvailable)

	first := progress.Moocs[0]
	assert.Equal(t, MoocStatusCompleted, first.Status)
	assert.True(t, first.ExamPassed)
	require.NotNil(t, first.ExamScore)
	assert.InDelta(t, 100.0, *first.ExamScore, 0.001)

	// 通过第一个单元后第二个单元解锁
	assert.Equal(t, MoocStatusInProgress, progress.Moocs[1].Status)
}

func TestGetCourseProgressCertificate(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	learning := newTestLearningService(db)
	exam := newTestExamService(db, testPolicy())

	for _, mooc := range []model.Mooc{f.mooc1, f.mooc2} {
		completeAllLessons(t, db, f.userID, mooc.ID)
		started, err := exam.StartAttempt(f.userID, mooc.ID)
		require.NoError(t, err)
		_, err = exam.SubmitAttempt(f.userID, started.AttemptID, answersFor(t, db, started.AttemptID, 5))
		require.NoError(t, err)
	}

	progress, err := learning.GetCourseProgress(f.userID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.True(t, progress.CertificateAvailable)
	assert.Equal(t, MoocStatusCompleted, progress.Moocs[0].Status)
	assert.Equal(t, MoocStatusCompleted, progress.Moocs[1].Status)
}

func TestGetCourseProgressNotEnrolled(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestLearningService(db)

	_, err := svc.GetCourseProgress(f.userID+1, f.course.ID)
	require.ErrorIs(t, err, util.ErrNotEnrolled)
}
