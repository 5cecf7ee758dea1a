package service

import (
	"testing"

	"course_exam_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionPool(n int) []model.Question {
	pool := make([]model.Question, n)
	for i := 0; i < n; i++ {
		id := uint(i + 1)
		pool[i] = model.Question{
			BaseModel: model.BaseModel{ID: id},
			Stem:      "q",
			Options: []model.QuestionOption{
				{QuestionID: id, Label: "A", IsCorrect: true},
				{QuestionID: id, Label: "B"},
				{QuestionID: id, Label: "C"},
				{QuestionID: id, Label: "D"},
			},
		}
	}
	return pool
}

func TestSampleSizeAndUniqueness(t *testing.T) {
	s := NewUniformSampler()
	pool := questionPool(20)

	sampled := s.Sample(pool, 10, nil)
	require.Len(t, sampled, 10)

	ids := make(map[uint]bool)
	for _, sq := range sampled {
		assert.False(t, ids[sq.Question.ID], "question %d sampled twice", sq.Question.ID)
		ids[sq.Question.ID] = true
	}
}

func TestSampleSmallPoolReturnsAll(t *testing.T) {
	s := NewUniformSampler()
	pool := questionPool(3)

	sampled := s.Sample(pool, 10, nil)
	require.Len(t, sampled, 3)
}

func TestSampleEmptyAndZero(t *testing.T) {
	s := NewUniformSampler()

	assert.Nil(t, s.Sample(nil, 10, nil))
	assert.Nil(t, s.Sample(questionPool(5), 0, nil))
}

func TestSampleOptionOrderIsPermutation(t *testing.T) {
	s := NewUniformSampler()
	pool := questionPool(5)

	for _, sq := range s.Sample(pool, 5, nil) {
		require.Len(t, sq.OptionOrder, 4)
		assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, sq.OptionOrder)
	}
}

func TestSampleMarksSeenQuestions(t *testing.T) {
	s := NewUniformSampler()
	pool := questionPool(4)
	seen := map[uint]bool{1: true, 3: true}

	for _, sq := range s.Sample(pool, 4, seen) {
		assert.Equal(t, seen[sq.Question.ID], sq.SeenBefore)
	}
}

func TestSampleDoesNotExcludeSeen(t *testing.T) {
	s := NewUniformSampler()
	pool := questionPool(5)
	seen := map[uint]bool{1: true, 2: true, 3: true, 4: true, 5: true}

	// 见过的题仍然参与抽取，SeenBefore 只是标记
	sampled := s.Sample(pool, 5, seen)
	require.Len(t, sampled, 5)
	for _, sq := range sampled {
		assert.True(t, sq.SeenBefore)
	}
}
