package util

import "errors"

var (
	ErrMoocNotFound       = errors.New("mooc not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrAttemptForbidden   = errors.New("attempt belongs to another learner")
	ErrAlreadySubmitted   = errors.New("attempt already submitted")
	ErrAttemptExpired     = errors.New("attempt time limit exceeded")
	ErrAttemptNotFinal    = errors.New("attempt not yet submitted")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrNoQuestions        = errors.New("no questions available for this mooc")
	ErrCorruptAttempt     = errors.New("attempt question snapshot is corrupted")
)
