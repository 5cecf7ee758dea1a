package service

import (
	"testing"
	"time"

	"course_exam_backend/internal/model"
	"course_exam_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attemptTimeOffset(i int) time.Time {
	return time.Now().Add(time.Duration(i-10) * time.Minute)
}

func TestGetExamInfoBeforeAnyAttempt(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestExamService(db, testPolicy())

	info, err := svc.GetExamInfo(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	assert.Equal(t, f.mooc1.ID, info.MoocID)
	assert.Equal(t, f.course.ID, info.CourseID)
	assert.Equal(t, 5, info.TotalQuestions)
	assert.Equal(t, 70, info.PassingScore)
	assert.Equal(t, 20, info.DurationMinutes)
	assert.False(t, info.CanTakeExam)
	assert.Equal(t, 0, info.PreviousAttempts)
	assert.Nil(t, info.BestScore)
	assert.Nil(t, info.LastAttemptAt)
}

func TestGetExamInfoCapsQuestionCount(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	policy := testPolicy()
	policy.SampleSize = 3
	svc := newTestExamService(db, policy)

	// 题库有 5 题，一次只抽 3 题
	info, err := svc.GetExamInfo(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, info.TotalQuestions)
}

func TestGetExamInfoAfterAttempts(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestExamService(db, testPolicy())
	completeAllLessons(t, db, f.userID, f.mooc1.ID)

	started, err := svc.StartAttempt(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(f.userID, started.AttemptID, answersFor(t, db, started.AttemptID, 3))
	require.NoError(t, err)

	started, err = svc.StartAttempt(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(f.userID, started.AttemptID, answersFor(t, db, started.AttemptID, 4))
	require.NoError(t, err)

	info, err := svc.GetExamInfo(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	assert.True(t, info.CanTakeExam)
	assert.Equal(t, 2, info.PreviousAttempts)
	require.NotNil(t, info.BestScore)
	assert.InDelta(t, 80.0, *info.BestScore, 0.001)
	require.NotNil(t, info.LastAttemptAt)
}

func TestGetExamInfoMoocNotFound(t *testing.T) {
	db := openTestDB(t)
	seedCourse(t, db)
	svc := newTestExamService(db, testPolicy())

	_, err := svc.GetExamInfo(1, 9999)
	require.ErrorIs(t, err, util.ErrMoocNotFound)
}

func TestGetAttemptResult(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestExamService(db, testPolicy())
	completeAllLessons(t, db, f.userID, f.mooc1.ID)

	started, err := svc.StartAttempt(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	submitted, err := svc.SubmitAttempt(f.userID, started.AttemptID, answersFor(t, db, started.AttemptID, 4))
	require.NoError(t, err)

	result, err := svc.GetAttemptResult(f.userID, started.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, submitted.Score, result.Score)
	assert.Equal(t, 4, result.CorrectCount)
	require.Len(t, result.Items, 5)
	require.NotNil(t, result.SubmittedAt)

	correct := 0
	for i, item := range result.Items {
		assert.Equal(t, "A", item.CorrectLabel)
		require.Len(t, item.Options, 4)

		// 复盘保持当次下发的选项顺序
		presented := started.Questions[i]
		assert.Equal(t, presented.QuestionID, item.QuestionID)
		for j, opt := range item.Options {
			assert.Equal(t, presented.Options[j].Label, opt.Label)
			assert.Equal(t, opt.Label == "A", opt.IsCorrect)
		}

		if item.IsCorrect {
			correct++
		}
	}
	assert.Equal(t, 4, correct)
}

func TestGetAttemptResultBeforeSubmission(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestExamService(db, testPolicy())
	completeAllLessons(t, db, f.userID, f.mooc1.ID)

	started, err := svc.StartAttempt(f.userID, f.mooc1.ID)
	require.NoError(t, err)

	_, err = svc.GetAttemptResult(f.userID, started.AttemptID)
	require.ErrorIs(t, err, util.ErrAttemptNotFinal)
}

func TestGetAttemptResultOwnership(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestExamService(db, testPolicy())
	completeAllLessons(t, db, f.userID, f.mooc1.ID)

	started, err := svc.StartAttempt(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(f.userID, started.AttemptID, nil)
	require.NoError(t, err)

	_, err = svc.GetAttemptResult(f.userID+1, started.AttemptID)
	require.ErrorIs(t, err, util.ErrAttemptForbidden)
}

func TestListAttemptsOrder(t *testing.T) {
	db := openTestDB(t)
	f := seedCourse(t, db)
	svc := newTestExamService(db, testPolicy())
	completeAllLessons(t, db, f.userID, f.mooc1.ID)

	var ids []uint
	for i := 0; i < 3; i++ {
		started, err := svc.StartAttempt(f.userID, f.mooc1.ID)
		require.NoError(t, err)
		_, err = svc.SubmitAttempt(f.userID, started.AttemptID, nil)
		require.NoError(t, err)
		ids = append(ids, started.AttemptID)

		// started_at 倒序需要可区分的时间戳
		require.NoError(t, db.Model(&model.ExamAttempt{}).
			Where("id = ?", started.AttemptID).
			Update("started_at", attemptTimeOffset(i)).Error)
	}

	attempts, err := svc.ListAttempts(f.userID, f.mooc1.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, ids[2], attempts[0].ID)
	assert.Equal(t, ids[0], attempts[2].ID)
}
