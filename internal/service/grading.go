package service

import "course_exam_backend/internal/model"

// GradeResult 判分结果，对同样的冻结题单和答案输入必然得到同样的输出
type GradeResult struct {
	Score          float64
	CorrectCount   int
	TotalQuestions int
	Passed         bool
}

// GradeAttempt 对照服务端答案判分。规则：
//   - 以冻结题单为准，未作答计 0 分而不是报错
//   - 答案引用了题单之外的题目时忽略该条
//   - 同一题多条作答时取第一条
//   - keys 中没有答案的题（多选、主观题或脏数据）按答错处理
//   - 题单为空时直接判 0 分不通过，不做除法
func GradeAttempt(frozen []model.AttemptQuestion, answers []model.AttemptAnswer, keys map[uint]string, passingScore int) GradeResult {
	result := GradeResult{TotalQuestions: len(frozen)}
	if len(frozen) == 0 {
		return result
	}

	selected := make(map[uint]string, len(answers))
	for _, a := range answers {
		if _, dup := selected[a.QuestionID]; dup {
			continue
		}
		selected[a.QuestionID] = a.SelectedLabel
	}

	for _, q := range frozen {
		key, ok := keys[q.QuestionID]
		if !ok {
			continue
		}
		if picked, answered := selected[q.QuestionID]; answered && picked != "" && picked == key {
			result.CorrectCount++
		}
	}

	result.Score = float64(result.CorrectCount) / float64(result.TotalQuestions) * 100
	result.Passed = result.Score >= float64(passingScore)
	return result
}
