package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/services"
)

type CourseHandler struct {
	courseService *services.CourseService
	logger        *zap.Logger
}

func NewCourseHandler(courseService *services.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logger.With(zap.String("handler", "course")),
	}
}

func (ch *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := ch.courseService.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (ch *CourseHandler) GetCourse(c *gin.Context) {
	course, err := ch.courseService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (ch *CourseHandler) CreateCourse(c *gin.Context) {
	var input services.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	course, err := ch.courseService.CreateCourse(c.Request.Context(), callerWallet(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (ch *CourseHandler) UpdateCourse(c *gin.Context) {
	var input services.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	course, err := ch.courseService.UpdateCourse(c.Request.Context(), callerWallet(c), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (ch *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := ch.courseService.DeleteCourse(c.Request.Context(), callerWallet(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
