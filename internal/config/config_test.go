package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExamConfigApplyDefaults(t *testing.T) {
	var e ExamConfig
	e.ApplyDefaults()

	assert.Equal(t, 10, e.SampleSize)
	assert.Equal(t, 70, e.DefaultPassingScore)
	assert.Equal(t, 0, e.AttemptLimit)
	assert.Equal(t, 0, e.CooldownSeconds)
	assert.Equal(t, 20, e.DurationMinutes)
	assert.Equal(t, "progress.events", e.EventChannel)
}

func TestExamConfigKeepsExplicitValues(t *testing.T) {
	e := ExamConfig{
		SampleSize:          5,
		DefaultPassingScore: 80,
		AttemptLimit:        3,
		CooldownSeconds:     600,
		DurationMinutes:     45,
		EventChannel:        "exam.events",
	}
	e.ApplyDefaults()

	assert.Equal(t, 5, e.SampleSize)
	assert.Equal(t, 80, e.DefaultPassingScore)
	assert.Equal(t, 3, e.AttemptLimit)
	assert.Equal(t, 600, e.CooldownSeconds)
	assert.Equal(t, 45, e.DurationMinutes)
	assert.Equal(t, "exam.events", e.EventChannel)
}

func TestExamConfigDurations(t *testing.T) {
	e := ExamConfig{CooldownSeconds: 300, DurationMinutes: 20}
	assert.Equal(t, 5*time.Minute, e.Cooldown())
	assert.Equal(t, 20*time.Minute, e.Duration())
}

func TestRateLimitWindowFallback(t *testing.T) {
	var r RateLimitConfig
	assert.Equal(t, time.Minute, r.Window())

	r.WindowMinutes = 5
	assert.Equal(t, 5*time.Minute, r.Window())
}
