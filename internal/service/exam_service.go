package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"course_exam_backend/internal/config"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"
	"course_exam_backend/pkg/logger"
	"course_exam_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExamService 测验生命周期的入口：资格检查、抽题开考、提交判分、进度推进。
// 提交与进度更新在同一个数据库事务内完成。
type ExamService struct {
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.AttemptRepository
	MoocRepo     *repository.MoocRepository
	LessonRepo   *repository.LessonRepository
	Progression  *ProgressionService
	Sampler      Sampler
	Notifier     *Notifier
	DB           *gorm.DB

	mu     sync.RWMutex
	policy config.ExamConfig
}

func NewExamService(
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	moocRepo *repository.MoocRepository,
	lessonRepo *repository.LessonRepository,
	progression *ProgressionService,
	sampler Sampler,
	notifier *Notifier,
	db *gorm.DB,
	policy config.ExamConfig,
) *ExamService {
	policy.ApplyDefaults()
	return &ExamService{
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		MoocRepo:     moocRepo,
		LessonRepo:   lessonRepo,
		Progression:  progression,
		Sampler:      sampler,
		Notifier:     notifier,
		DB:           db,
		policy:       policy,
	}
}

func (s *ExamService) Policy() config.ExamConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// UpdatePolicy 配置热更新回调（见 pkg/configwatcher）
func (s *ExamService) UpdatePolicy(policy config.ExamConfig) {
	policy.ApplyDefaults()
	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()
}

func (s *ExamService) passingScore(mooc *model.Mooc, policy config.ExamConfig) int {
	if mooc.PassingScore > 0 {
		return mooc.PassingScore
	}
	return policy.DefaultPassingScore
}

// CheckEligibility 开考前置检查，按序短路：课时未完成 → 有进行中的尝试 →
// 次数用尽 → 冷却未到。纯读，不产生副作用。
func (s *ExamService) CheckEligibility(userID, moocID uint) (*EligibilityDenial, error) {
	policy := s.Policy()

	totalLessons, err := s.LessonRepo.CountByMooc(moocID)
	if err != nil {
		return nil, err
	}
	completedLessons, err := s.LessonRepo.CountCompletedByMooc(userID, moocID)
	if err != nil {
		return nil, err
	}
	if totalLessons == 0 || completedLessons < totalLessons {
		return &EligibilityDenial{Reason: DenyPrerequisiteIncomplete}, nil
	}

	open, err := s.AttemptRepo.FindOpenByUserAndMooc(userID, moocID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if open != nil {
		return &EligibilityDenial{Reason: DenyAttemptInProgress, AttemptID: open.ID}, nil
	}

	if policy.AttemptLimit > 0 {
		count, err := s.AttemptRepo.CountByUserAndMooc(userID, moocID)
		if err != nil {
			return nil, err
		}
		if count >= int64(policy.AttemptLimit) {
			return &EligibilityDenial{Reason: DenyAttemptLimitExceeded}, nil
		}
	}

	if policy.CooldownSeconds > 0 {
		last, err := s.AttemptRepo.LastStartedAt(userID, moocID)
		if err != nil {
			return nil, err
		}
		if !last.IsZero() {
			elapsed := time.Since(last)
			if elapsed < policy.Cooldown() {
				return &EligibilityDenial{
					Reason:            DenyCooldownActive,
					RetryAfterSeconds: int((policy.Cooldown() - elapsed).Seconds()) + 1,
				}, nil
			}
		}
	}

	return nil, nil
}

// PresentedOption 下发给学员的选项，不含 is_correct
type PresentedOption struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

type PresentedQuestion struct {
	QuestionID uint              `json:"questionId"`
	Stem       string            `json:"stem"`
	QType      string            `json:"qtype"`
	Difficulty string            `json:"difficulty"`
	SeenBefore bool              `json:"seenBefore"`
	Options    []PresentedOption `json:"options"`
}

type StartAttemptResult struct {
	AttemptID       uint                `json:"attemptId"`
	StartedAt       time.Time           `json:"startedAt"`
	ExpiresAt       time.Time           `json:"expiresAt"`
	DurationMinutes int                 `json:"durationMinutes"`
	TotalQuestions  int                 `json:"totalQuestions"`
	Questions       []PresentedQuestion `json:"questions"`
}

// StartAttempt 抽题并创建进行中的尝试。"同一学员同一单元至多一条进行中记录"
// 由 (user_id, mooc_id, active) 唯一索引兜底：资格检查通过后仍被并发抢先时，
// 插入会命中重复键，这里把它翻译成 AttemptInProgress 而不是失败。
func (s *ExamService) StartAttempt(userID, moocID uint) (*StartAttemptResult, error) {
	policy := s.Policy()

	mooc, err := s.MoocRepo.FindByID(moocID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrMoocNotFound
	}
	if err != nil {
		return nil, err
	}

	denial, err := s.CheckEligibility(userID, mooc.ID)
	if err != nil {
		return nil, err
	}
	if denial != nil {
		monitoring.AttemptDenied.WithLabelValues(denial.Reason).Inc()
		return nil, denial
	}

	pool, err := s.QuestionRepo.FindByMooc(mooc.ID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, util.ErrNoQuestions
	}

	seen, err := s.AttemptRepo.PreviouslyServedQuestionIDs(userID, mooc.ID)
	if err != nil {
		return nil, err
	}

	sampled := s.Sampler.Sample(pool, policy.SampleSize, seen)

	frozen := make([]model.AttemptQuestion, len(sampled))
	for i, sq := range sampled {
		frozen[i] = model.AttemptQuestion{
			QuestionID:  sq.Question.ID,
			OptionOrder: sq.OptionOrder,
		}
	}
	frozenJSON, err := json.Marshal(frozen)
	if err != nil {
		return nil, err
	}

	active := true
	attempt := &model.ExamAttempt{
		UserID:         userID,
		MoocID:         mooc.ID,
		Active:         &active,
		StartedAt:      time.Now(),
		Questions:      string(frozenJSON),
		TotalQuestions: len(frozen),
	}
	if err := s.DB.Create(attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			open, ferr := s.AttemptRepo.FindOpenByUserAndMooc(userID, mooc.ID)
			if ferr != nil {
				return nil, ferr
			}
			monitoring.AttemptDenied.WithLabelValues(DenyAttemptInProgress).Inc()
			return nil, &EligibilityDenial{Reason: DenyAttemptInProgress, AttemptID: open.ID}
		}
		return nil, err
	}

	monitoring.AttemptStarted.Inc()
	logger.Log.Info("Exam attempt started",
		zap.Uint("userId", userID),
		zap.Uint("moocId", mooc.ID),
		zap.Uint("attemptId", attempt.ID))

	return &StartAttemptResult{
		AttemptID:       attempt.ID,
		StartedAt:       attempt.StartedAt,
		ExpiresAt:       attempt.StartedAt.Add(policy.Duration()),
		DurationMinutes: policy.DurationMinutes,
		TotalQuestions:  len(sampled),
		Questions:       presentQuestions(sampled),
	}, nil
}

// presentQuestions 按抽题顺序整理下发结构，剥离答案信息
func presentQuestions(sampled []SampledQuestion) []PresentedQuestion {
	out := make([]PresentedQuestion, len(sampled))
	for i, sq := range sampled {
		contentByLabel := make(map[string]string, len(sq.Question.Options))
		for _, opt := range sq.Question.Options {
			contentByLabel[opt.Label] = opt.Content
		}

		options := make([]PresentedOption, len(sq.OptionOrder))
		for j, label := range sq.OptionOrder {
			options[j] = PresentedOption{Label: label, Content: contentByLabel[label]}
		}

		out[i] = PresentedQuestion{
			QuestionID: sq.Question.ID,
			Stem:       sq.Question.Stem,
			QType:      sq.Question.QType,
			Difficulty: sq.Question.Difficulty,
			SeenBefore: sq.SeenBefore,
			Options:    options,
		}
	}
	return out
}

type SubmitResult struct {
	AttemptID        uint    `json:"attemptId"`
	Score            float64 `json:"score"`
	Passed           bool    `json:"passed"`
	CorrectCount     int     `json:"correctCount"`
	TotalQuestions   int     `json:"totalQuestions"`
	TimeTakenSeconds int     `json:"timeTakenSeconds"`
	NextMoocUnlocked bool    `json:"nextMoocUnlocked"`
	CourseCompleted  bool    `json:"courseCompleted"`
}

// SubmitAttempt 提交判分。判分、落账、进度推进在同一事务内，要么全部生效要么
// 全部回滚；提交是单向迁移，并发或重试提交由带条件的 UPDATE 串行化，
// 后到者收到 ErrAlreadySubmitted 且不会覆盖先到者的成绩。
func (s *ExamService) SubmitAttempt(userID, attemptID uint, answers []model.AttemptAnswer) (*SubmitResult, error) {
	policy := s.Policy()

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
	if attempt.Submitted() {
		return nil, util.ErrAlreadySubmitted
	}

	now := time.Now()
	if policy.DurationMinutes > 0 && now.After(attempt.StartedAt.Add(policy.Duration())) {
		return nil, s.expireAttempt(attempt, now)
	}

	mooc, err := s.MoocRepo.FindByID(attempt.MoocID)
	if err != nil {
		return nil, err
	}

	frozen := parseFrozenQuestions(attempt.Questions)
	if len(frozen) == 0 {
		// 不变量被破坏：绝不带着空题单算出一个貌似合理的分数
		logger.Log.Error("Attempt has empty or corrupted question snapshot",
			zap.Uint("attemptId", attempt.ID),
			zap.Uint("userId", userID))
		return nil, util.ErrCorruptAttempt
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	var grade GradeResult
	var outcome *ProgressionOutcome

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, len(frozen))
		for i, q := range frozen {
			ids[i] = q.QuestionID
		}
		keys, kerr := s.QuestionRepo.AnswerKeys(tx, ids)
		if kerr != nil {
			return kerr
		}

		grade = GradeAttempt(frozen, answers, keys, s.passingScore(mooc, policy))

		timeTaken := int(now.Sub(attempt.StartedAt).Seconds())
		res := tx.Model(&model.ExamAttempt{}).
			Where("id = ? AND submitted_at IS NULL", attempt.ID).
			Updates(map[string]interface{}{
				"submitted_at":       now,
				"time_taken_seconds": timeTaken,
				"answers":            string(answersJSON),
				"total_questions":    grade.TotalQuestions,
				"correct_count":      grade.CorrectCount,
				"score":              grade.Score,
				"passed":             grade.Passed,
				"active":             nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAlreadySubmitted
		}

		attempt.SubmittedAt = &now
		attempt.TimeTakenSeconds = timeTaken
		attempt.CorrectCount = grade.CorrectCount
		attempt.Score = grade.Score
		attempt.Passed = grade.Passed
		attempt.Active = nil

		if grade.Passed {
			var perr error
			outcome, perr = s.Progression.ApplyPassedAttempt(tx, attempt, mooc)
			if perr != nil {
				return perr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if grade.Passed {
		monitoring.AttemptSubmitted.WithLabelValues("passed").Inc()
	} else {
		monitoring.AttemptSubmitted.WithLabelValues("failed").Inc()
	}

	result := &SubmitResult{
		AttemptID:        attempt.ID,
		Score:            grade.Score,
		Passed:           grade.Passed,
		CorrectCount:     grade.CorrectCount,
		TotalQuestions:   grade.TotalQuestions,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
	}

	if outcome != nil {
		result.NextMoocUnlocked = outcome.NextMoocUnlocked
		result.CourseCompleted = outcome.CourseCompleted
		if outcome.NextMoocUnlocked {
			s.Notifier.MoocUnlocked(userID, mooc.CourseID, outcome.NextMoocID)
		}
		if outcome.CourseCompleted {
			s.Notifier.CourseCompleted(userID, mooc.CourseID)
		}
	}

	logger.Log.Info("Exam attempt submitted",
		zap.Uint("attemptId", attempt.ID),
		zap.Float64("score", grade.Score),
		zap.Bool("passed", grade.Passed))

	return result, nil
}

// expireAttempt 超时提交：关单计 0 分不通过，提交窗口一旦错过不再打开
func (s *ExamService) expireAttempt(attempt *model.ExamAttempt, now time.Time) error {
	res := s.DB.Model(&model.ExamAttempt{}).
		Where("id = ? AND submitted_at IS NULL", attempt.ID).
		Updates(map[string]interface{}{
			"submitted_at":       now,
			"time_taken_seconds": int(now.Sub(attempt.StartedAt).Seconds()),
			"score":              0,
			"correct_count":      0,
			"passed":             false,
			"active":             nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAlreadySubmitted
	}
	monitoring.AttemptSubmitted.WithLabelValues("expired").Inc()
	return util.ErrAttemptExpired
}

func parseFrozenQuestions(raw string) []model.AttemptQuestion {
	if raw == "" {
		return nil
	}
	var frozen []model.AttemptQuestion
	if err := json.Unmarshal([]byte(raw), &frozen); err != nil {
		return nil
	}
	return frozen
}
