package service

import "fmt"

// 开考前置检查的拒绝原因，按检查顺序排列
const (
	DenyPrerequisiteIncomplete = "PrerequisiteIncomplete"
	DenyAttemptInProgress      = "AttemptInProgress"
	DenyAttemptLimitExceeded   = "AttemptLimitExceeded"
	DenyCooldownActive         = "CooldownActive"
)

// EligibilityDenial 策略性拒绝。属于预期的业务结果而非故障，
// 调用方应引导学员采取对应动作（补课时、继续已有尝试、等待冷却）。
type EligibilityDenial struct {
	Reason            string `json:"reason"`
	AttemptID         uint   `json:"attemptId,omitempty"`         // AttemptInProgress 时为进行中尝试的ID，可据此恢复
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"` // CooldownActive 时有效
}

func (d *EligibilityDenial) Error() string {
	return fmt.Sprintf("attempt denied: %s", d.Reason)
}
