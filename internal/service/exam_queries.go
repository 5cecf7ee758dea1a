package service

import (
	"encoding/json"
	"time"

	"course_exam_backend/internal/model"
	"course_exam_backend/internal/util"

	"gorm.io/gorm"
)

// ExamInfo 考前信息页数据
type ExamInfo struct {
	MoocID           uint       `json:"moocId"`
	MoocName         string     `json:"moocName"`
	CourseID         uint       `json:"courseId"`
	TotalQuestions   int        `json:"totalQuestions"`
	DurationMinutes  int        `json:"durationMinutes"`
	PassingScore     int        `json:"passingScore"`
	CanTakeExam      bool       `json:"canTakeExam"`
	LessonsCompleted int        `json:"lessonsCompleted"`
	TotalLessons     int        `json:"totalLessons"`
	PreviousAttempts int        `json:"previousAttempts"`
	BestScore        *float64   `json:"bestScore,omitempty"`
	LastAttemptAt    *time.Time `json:"lastAttemptAt,omitempty"`
}

func (s *ExamService) GetExamInfo(userID, moocID uint) (*ExamInfo, error) {
	policy := s.Policy()

	mooc, err := s.MoocRepo.FindByID(moocID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrMoocNotFound
	}
	if err != nil {
		return nil, err
	}

	questionCount, err := s.QuestionRepo.CountByMooc(mooc.ID)
	if err != nil {
		return nil, err
	}
	totalQuestions := int(questionCount)
	if totalQuestions > policy.SampleSize {
		totalQuestions = policy.SampleSize
	}

	totalLessons, err := s.LessonRepo.CountByMooc(mooc.ID)
	if err != nil {
		return nil, err
	}
	completedLessons, err := s.LessonRepo.CountCompletedByMooc(userID, mooc.ID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListByUserAndMooc(userID, mooc.ID)
	if err != nil {
		return nil, err
	}
	best, err := s.AttemptRepo.BestScore(userID, mooc.ID)
	if err != nil {
		return nil, err
	}

	var lastAttemptAt *time.Time
	for _, a := range attempts {
		if a.SubmittedAt != nil {
			lastAttemptAt = a.SubmittedAt
			break
		}
	}

	return &ExamInfo{
		MoocID:           mooc.ID,
		MoocName:         mooc.Name,
		CourseID:         mooc.CourseID,
		TotalQuestions:   totalQuestions,
		DurationMinutes:  policy.DurationMinutes,
		PassingScore:     s.passingScore(mooc, policy),
		CanTakeExam:      totalLessons > 0 && completedLessons >= totalLessons,
		LessonsCompleted: int(completedLessons),
		TotalLessons:     int(totalLessons),
		PreviousAttempts: len(attempts),
		BestScore:        best,
		LastAttemptAt:    lastAttemptAt,
	}, nil
}

// ReviewOption 复盘视图里的选项，此时可以带上正确标记
type ReviewOption struct {
	Label     string `json:"label"`
	Content   string `json:"content"`
	IsCorrect bool   `json:"isCorrect"`
}

type AttemptResultItem struct {
	QuestionID    uint           `json:"questionId"`
	Stem          string         `json:"stem"`
	Difficulty    string         `json:"difficulty"`
	SelectedLabel string         `json:"selectedLabel"`
	CorrectLabel  string         `json:"correctLabel"`
	IsCorrect     bool           `json:"isCorrect"`
	Options       []ReviewOption `json:"options"`
}

type AttemptResult struct {
	AttemptID        uint                `json:"attemptId"`
	MoocID           uint                `json:"moocId"`
	Score            float64             `json:"score"`
	CorrectCount     int                 `json:"correctCount"`
	TotalQuestions   int                 `json:"totalQuestions"`
	Passed           bool                `json:"passed"`
	StartedAt        time.Time           `json:"startedAt"`
	SubmittedAt      *time.Time          `json:"submittedAt"`
	TimeTakenSeconds int                 `json:"timeTakenSeconds"`
	Items            []AttemptResultItem `json:"items"`
}

// GetAttemptResult 已提交尝试的逐题复盘，仅限本人，保持当次下发的选项顺序
func (s *ExamService) GetAttemptResult(userID, attemptID uint) (*AttemptResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrAttemptForbidden
	}
	if !attempt.Submitted() {
		return nil, util.ErrAttemptNotFinal
	}

	frozen := parseFrozenQuestions(attempt.Questions)
	ids := make([]uint, len(frozen))
	for i, q := range frozen {
		ids[i] = q.QuestionID
	}

	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var answers []model.AttemptAnswer
	if attempt.Answers != "" {
		if err := json.Unmarshal([]byte(attempt.Answers), &answers); err != nil {
			return nil, util.ErrCorruptAttempt
		}
	}
	selected := make(map[uint]string, len(answers))
	for _, a := range answers {
		if _, dup := selected[a.QuestionID]; dup {
			continue
		}
		selected[a.QuestionID] = a.SelectedLabel
	}

	items := make([]AttemptResultItem, 0, len(frozen))
	for _, fq := range frozen {
		q, ok := byID[fq.QuestionID]
		if !ok {
			continue
		}

		var correctLabel string
		optionMap := make(map[string]model.QuestionOption, len(q.Options))
		for _, opt := range q.Options {
			optionMap[opt.Label] = opt
			if opt.IsCorrect && correctLabel == "" {
				correctLabel = opt.Label
			}
		}

		options := make([]ReviewOption, 0, len(fq.OptionOrder))
		for _, label := range fq.OptionOrder {
			opt := optionMap[label]
			options = append(options, ReviewOption{
				Label:     label,
				Content:   opt.Content,
				IsCorrect: opt.IsCorrect,
			})
		}

		sel := selected[fq.QuestionID]
		items = append(items, AttemptResultItem{
			QuestionID:    fq.QuestionID,
			Stem:          q.Stem,
			Difficulty:    q.Difficulty,
			SelectedLabel: sel,
			CorrectLabel:  correctLabel,
			IsCorrect:     correctLabel != "" && sel == correctLabel,
			Options:       options,
		})
	}

	return &AttemptResult{
		AttemptID:        attempt.ID,
		MoocID:           attempt.MoocID,
		Score:            attempt.Score,
		CorrectCount:     attempt.CorrectCount,
		TotalQuestions:   attempt.TotalQuestions,
		Passed:           attempt.Passed,
		StartedAt:        attempt.StartedAt,
		SubmittedAt:      attempt.SubmittedAt,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		Items:            items,
	}, nil
}

// ListAttempts 学员在某单元的历史尝试，按开考时间倒序
func (s *ExamService) ListAttempts(userID, moocID uint) ([]model.ExamAttempt, error) {
	return s.AttemptRepo.ListByUserAndMooc(userID, moocID)
}
