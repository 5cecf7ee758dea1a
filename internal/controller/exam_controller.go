package controller

import (
	"errors"
	"strconv"

	"course_exam_backend/internal/model"
	"course_exam_backend/internal/service"
	"course_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// SubmitAttemptRequest 提交答卷请求
// swagger:model SubmitAttemptRequest
type SubmitAttemptRequest struct {
	Answers []model.AttemptAnswer `json:"answers" binding:"required"`
}

// GetExamInfo godoc
// @Summary 获取单元考试信息
// @Description 返回考试规则与当前用户的可考状态
// @Tags 考试
// @Produce  json
// @Param   moocId path int true "单元 ID"
// @Success 200 {object} util.Response{data=service.ExamInfo}
// @Failure 404 {object} util.Response "单元不存在"
// @Router /api/moocs/{moocId}/exam [get]
func (c *ExamController) GetExamInfo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	moocID, err := parseUintParam(ctx, "moocId")
	if err != nil {
		util.BadRequest(ctx, "无效的单元 ID")
		return
	}

	info, err := c.ExamService.GetExamInfo(claims.UserID, moocID)
	if err != nil {
		if errors.Is(err, util.ErrMoocNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, info)
}

// StartAttempt godoc
// @Summary 开始一次考试
// @Description 校验资格后抽取题目并创建进行中的答卷
// @Tags 考试
// @Produce  json
// @Param   moocId path int true "单元 ID"
// @Success 201 {object} util.Response{data=service.StartAttemptResult}
// @Failure 404 {object} util.Response "单元不存在"
// @Failure 409 {object} util.Response{data=service.EligibilityDenial} "资格校验未通过"
// @Failure 422 {object} util.Response "题库为空"
// @Router /api/moocs/{moocId}/exam/attempts [post]
func (c *ExamController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	moocID, err := parseUintParam(ctx, "moocId")
	if err != nil {
		util.BadRequest(ctx, "无效的单元 ID")
		return
	}

	started, err := c.ExamService.StartAttempt(claims.UserID, moocID)
	if err != nil {
		var denial *service.EligibilityDenial
		switch {
		case errors.As(err, &denial):
			util.Conflict(ctx, denialMessage(denial), denial)
		case errors.Is(err, util.ErrMoocNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrNoQuestions):
			util.Error(ctx, 422, "该单元题库为空")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, started)
}

// SubmitAttempt godoc
// @Summary 提交答卷
// @Description 判分、关闭答卷并结算课程进度
// @Tags 考试
// @Accept  json
// @Produce  json
// @Param   attemptId path int true "答卷 ID"
// @Param   body body SubmitAttemptRequest true "作答内容"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response "答卷不存在"
// @Failure 409 {object} util.Response "答卷已提交"
// @Failure 410 {object} util.Response "答卷已超时"
// @Router /api/exam/attempts/{attemptId}/submit [post]
func (c *ExamController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, err := parseUintParam(ctx, "attemptId")
	if err != nil {
		util.BadRequest(ctx, "无效的答卷 ID")
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ExamService.SubmitAttempt(claims.UserID, attemptID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAttemptForbidden):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAlreadySubmitted):
			util.Conflict(ctx, "答卷已提交", nil)
		case errors.Is(err, util.ErrAttemptExpired):
			util.Error(ctx, 410, "答卷已超时，按 0 分关闭")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// GetAttemptResult godoc
// @Summary 查看答卷结果
// @Description 已提交答卷的逐题回顾，含正确选项与作答
// @Tags 考试
// @Produce  json
// @Param   attemptId path int true "答卷 ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 404 {object} util.Response "答卷不存在"
// @Failure 409 {object} util.Response "答卷尚未提交"
// @Router /api/exam/attempts/{attemptId}/result [get]
func (c *ExamController) GetAttemptResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, err := parseUintParam(ctx, "attemptId")
	if err != nil {
		util.BadRequest(ctx, "无效的答卷 ID")
		return
	}

	result, err := c.ExamService.GetAttemptResult(claims.UserID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAttemptForbidden):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAttemptNotFinal):
			util.Conflict(ctx, "答卷尚未提交", nil)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// ListAttempts godoc
// @Summary 答卷历史
// @Description 当前用户在某单元的历史答卷，按开始时间倒序
// @Tags 考试
// @Produce  json
// @Param   moocId path int true "单元 ID"
// @Success 200 {object} util.Response{data=[]model.ExamAttempt}
// @Router /api/moocs/{moocId}/exam/attempts [get]
func (c *ExamController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	moocID, err := parseUintParam(ctx, "moocId")
	if err != nil {
		util.BadRequest(ctx, "无效的单元 ID")
		return
	}

	attempts, err := c.ExamService.ListAttempts(claims.UserID, moocID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

func denialMessage(d *service.EligibilityDenial) string {
	switch d.Reason {
	case service.DenyPrerequisiteIncomplete:
		return "该单元课时尚未全部完成"
	case service.DenyAttemptInProgress:
		return "存在进行中的答卷，请先完成或提交"
	case service.DenyAttemptLimitExceeded:
		return "已达到该单元的最大考试次数"
	case service.DenyCooldownActive:
		return "考试冷却中，请稍后再试"
	default:
		return "暂时无法开始考试"
	}
}

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
