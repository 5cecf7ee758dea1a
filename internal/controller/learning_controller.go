package controller

import (
	"errors"

	"course_exam_backend/internal/service"
	"course_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// CompleteLesson godoc
// @Summary 标记课时完成
// @Description 记录学员完成某课时，重复调用幂等
// @Tags 学习
// @Produce  json
// @Param   lessonId path int true "课时 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/lessons/{lessonId}/complete [post]
func (c *LearningController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, err := parseUintParam(ctx, "lessonId")
	if err != nil {
		util.BadRequest(ctx, "无效的课时 ID")
		return
	}

	if err := c.LearningService.CompleteLesson(claims.UserID, lessonID); err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"completed": true})
}

// GetCourseProgress godoc
// @Summary 课程进度总览
// @Description 报名快照与逐单元的解锁、课时、考试状态
// @Tags 学习
// @Produce  json
// @Param   courseId path int true "课程 ID"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Failure 403 {object} util.Response "尚未报名"
// @Router /api/courses/{courseId}/progress [get]
func (c *LearningController) GetCourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, err := parseUintParam(ctx, "courseId")
	if err != nil {
		util.BadRequest(ctx, "无效的课程 ID")
		return
	}

	progress, err := c.LearningService.GetCourseProgress(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}
