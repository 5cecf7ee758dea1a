package service

import (
	"testing"

	"course_exam_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func frozenQuestions(ids ...uint) []model.AttemptQuestion {
	out := make([]model.AttemptQuestion, len(ids))
	for i, id := range ids {
		out[i] = model.AttemptQuestion{QuestionID: id, OptionOrder: []string{"A", "B", "C", "D"}}
	}
	return out
}

func TestGradeAttempt(t *testing.T) {
	keys := map[uint]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "A"}

	tests := []struct {
		name         string
		frozen       []model.AttemptQuestion
		answers      []model.AttemptAnswer
		passingScore int
		wantScore    float64
		wantCorrect  int
		wantPassed   bool
	}{
		{
			name:   "all correct",
			frozen: frozenQuestions(1, 2, 3, 4, 5),
			answers: []model.AttemptAnswer{
				{QuestionID: 1, SelectedLabel: "A"},
				{QuestionID: 2, SelectedLabel: "B"},
				{QuestionID: 3, SelectedLabel: "C"},
				{QuestionID: 4, SelectedLabel: "D"},
				{QuestionID: 5, SelectedLabel: "A"},
			},
			passingScore: 70,
			wantScore:    100,
			wantCorrect:  5,
			wantPassed:   true,
		},
		{
			name:   "four of five passes at seventy",
			frozen: frozenQuestions(1, 2, 3, 4, 5),
			answers: []model.AttemptAnswer{
				{QuestionID: 1, SelectedLabel: "A"},
				{QuestionID: 2, SelectedLabel: "B"},
				{QuestionID: 3, SelectedLabel: "C"},
				{QuestionID: 4, SelectedLabel: "A"},
				{QuestionID: 5, SelectedLabel: "A"},
			},
			passingScore: 70,
			wantScore:    80,
			wantCorrect:  4,
			wantPassed:   true,
		},
		{
			name:   "exactly at threshold passes",
			frozen: frozenQuestions(1, 2, 3, 4, 5),
			answers: []model.AttemptAnswer{
				{QuestionID: 1, SelectedLabel: "A"},
				{QuestionID: 2, SelectedLabel: "B"},
				{QuestionID: 3, SelectedLabel: "C"},
				{QuestionID: 4, SelectedLabel: "D"},
			},
			passingScore: 80,
			wantScore:    80,
			wantCorrect:  4,
			wantPassed:   true,
		},
		{
			name:   "just below threshold fails",
			frozen: frozenQuestions(1, 2, 3, 4, 5),
			answers: []model.AttemptAnswer{
				{QuestionID: 1, SelectedLabel: "A"},
				{QuestionID: 2, SelectedLabel: "B"},
				{QuestionID: 3, SelectedLabel: "C"},
			},
			passingScore: 70,
			wantScore:    60,
			wantCorrect:  3,
			wantPassed:   false,
		},
		{
			name:         "unanswered questions count as wrong",
			frozen:       frozenQuestions(1, 2, 3, 4, 5),
			answers:      []model.AttemptAnswer{{QuestionID: 1, SelectedLabel: "A"}},
			passingScore: 70,
			wantScore:    20,
			wantCorrect:  1,
			wantPassed:   false,
		},
		{
			name:         "no answers at all",
			frozen:       frozenQuestions(1, 2),
			answers:      nil,
			passingScore: 70,
			wantScore:    0,
			wantCorrect:  0,
			wantPassed:   false,
		},
		{
			name:   "answer outside frozen list is ignored",
			frozen: frozenQuestions(1, 2),
			answers: []model.AttemptAnswer{
				{QuestionID: 1, SelectedLabel: "A"},
				{QuestionID: 99, SelectedLabel: "A"},
			},
			passingScore: 70,
			wantScore:    50,
			wantCorrect:  1,
			wantPassed:   false,
		},
		{
			name:   "first answer wins on duplicates",
			frozen: frozenQuestions(1, 2),
			answers: []model.AttemptAnswer{
				{QuestionID: 1, SelectedLabel: "B"},
				{QuestionID: 1, SelectedLabel: "A"},
				{QuestionID: 2, SelectedLabel: "B"},
			},
			passingScore: 50,
			wantScore:    50,
			wantCorrect:  1,
			wantPassed:   true,
		},
		{
			name:         "question without answer key counts as wrong",
			frozen:       frozenQuestions(1, 7),
			answers:      []model.AttemptAnswer{{QuestionID: 1, SelectedLabel: "A"}, {QuestionID: 7, SelectedLabel: "A"}},
			passingScore: 70,
			wantScore:    50,
			wantCorrect:  1,
			wantPassed:   false,
		},
		{
			name:         "empty selection is not a correct answer",
			frozen:       frozenQuestions(1),
			answers:      []model.AttemptAnswer{{QuestionID: 1, SelectedLabel: ""}},
			passingScore: 70,
			wantScore:    0,
			wantCorrect:  0,
			wantPassed:   false,
		},
		{
			name:         "empty frozen list scores zero without dividing",
			frozen:       nil,
			answers:      []model.AttemptAnswer{{QuestionID: 1, SelectedLabel: "A"}},
			passingScore: 70,
			wantScore:    0,
			wantCorrect:  0,
			wantPassed:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GradeAttempt(tc.frozen, tc.answers, keys, tc.passingScore)
			assert.Equal(t, tc.wantCorrect, got.CorrectCount)
			assert.InDelta(t, tc.wantScore, got.Score, 0.001)
			assert.Equal(t, tc.wantPassed, got.Passed)
			assert.Equal(t, len(tc.frozen), got.TotalQuestions)
		})
	}
}

func TestGradeAttemptDeterministic(t *testing.T) {
	frozen := frozenQuestions(1, 2, 3)
	answers := []model.AttemptAnswer{
		{QuestionID: 1, SelectedLabel: "A"},
		{QuestionID: 2, SelectedLabel: "C"},
	}
	keys := map[uint]string{1: "A", 2: "B", 3: "C"}

	first := GradeAttempt(frozen, answers, keys, 70)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GradeAttempt(frozen, answers, keys, 70))
	}
}
