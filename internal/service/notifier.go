package service

import (
	"context"
	"course_exam_backend/pkg/logger"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventMoocUnlocked    = "mooc_unlocked"
	EventCourseCompleted = "course_completed"
)

// ProgressEvent 发给通知/界面等下游子系统的进度事件
type ProgressEvent struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	UserID     uint      `json:"userId"`
	CourseID   uint      `json:"courseId"`
	MoocID     uint      `json:"moocId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Notifier 通过 Redis 频道广播进度事件。发布失败只记日志，
// 不影响已提交的测验事务。
type Notifier struct {
	rdb     *redis.Client
	channel string
}

func NewNotifier(rdb *redis.Client, channel string) *Notifier {
	return &Notifier{rdb: rdb, channel: channel}
}

func (n *Notifier) MoocUnlocked(userID, courseID, moocID uint) {
	n.publish(ProgressEvent{
		EventID:    uuid.New().String(),
		Type:       EventMoocUnlocked,
		UserID:     userID,
		CourseID:   courseID,
		MoocID:     moocID,
		OccurredAt: time.Now(),
	})
}

func (n *Notifier) CourseCompleted(userID, courseID uint) {
	n.publish(ProgressEvent{
		EventID:    uuid.New().String(),
		Type:       EventCourseCompleted,
		UserID:     userID,
		CourseID:   courseID,
		OccurredAt: time.Now(),
	})
}

func (n *Notifier) publish(event ProgressEvent) {
	if n == nil || n.rdb == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to marshal progress event", zap.Error(err))
		return
	}

	if err := n.rdb.Publish(context.Background(), n.channel, payload).Err(); err != nil {
		logger.Log.Warn("Failed to publish progress event",
			zap.String("type", event.Type),
			zap.Uint("userId", event.UserID),
			zap.Error(err))
	}
}
