package service

import (
	"math/rand"

	"course_exam_backend/internal/model"
)

// SampledQuestion 一次抽题结果：题目本体、当次下发的选项顺序、
// 以及该学员此前是否见过这道题（仅作提示，不参与去重）
type SampledQuestion struct {
	Question    model.Question
	OptionOrder []string
	SeenBefore  bool
}

// Sampler 抽题策略。当前实现为均匀随机，接口化是为了让策略
// 调整（如按难度分层）不影响调用方。
type Sampler interface {
	Sample(pool []model.Question, n int, seen map[uint]bool) []SampledQuestion
}

type uniformSampler struct{}

func NewUniformSampler() Sampler {
	return &uniformSampler{}
}

// Sample 无放回均匀抽取 n 题；候选不足 n 时全部返回，是否可接受由调用方决定。
// 题目顺序与每题选项顺序均做 Fisher–Yates 洗牌，不依赖数据库的随机排序。
func (s *uniformSampler) Sample(pool []model.Question, n int, seen map[uint]bool) []SampledQuestion {
	if n <= 0 || len(pool) == 0 {
		return nil
	}

	indexes := make([]int, len(pool))
	for i := range indexes {
		indexes[i] = i
	}
	rand.Shuffle(len(indexes), func(i, j int) {
		indexes[i], indexes[j] = indexes[j], indexes[i]
	})

	if n > len(indexes) {
		n = len(indexes)
	}

	sampled := make([]SampledQuestion, 0, n)
	for _, idx := range indexes[:n] {
		q := pool[idx]

		labels := make([]string, len(q.Options))
		for i, opt := range q.Options {
			labels[i] = opt.Label
		}
		rand.Shuffle(len(labels), func(i, j int) {
			labels[i], labels[j] = labels[j], labels[i]
		})

		sampled = append(sampled, SampledQuestion{
			Question:    q,
			OptionOrder: labels,
			SeenBefore:  seen[q.ID],
		})
	}
	return sampled
}
