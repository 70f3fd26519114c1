package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"course-api/constant"
	"course-api/dto"
	"course-api/service"
)

func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.Catalog.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// CourseDetail serves both /courses/:courseId (first lesson selected) and
// /courses/:courseId/lessons/:lessonId. An unknown lesson id redirects to
// the course's first lesson instead of erroring.
func (h *Handler) CourseDetail(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ctx := c.Request.Context()
	course, err := h.Catalog.GetCourse(ctx, courseID)
	if err != nil {
		respondError(c, err)
		return
	}

	lessons, err := h.Catalog.ListLessons(ctx, courseID)
	if err != nil {
		respondError(c, err)
		return
	}

	var currentID *uuid.UUID
	if raw := c.Param("lessonId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"redirect": fmt.Sprintf("/courses/%s", courseID)})
			return
		}
		currentID = &id
	}

	resp := dto.CourseDetailResponse{Course: *course, Lessons: lessons}
	nav, ok := service.Navigate(lessons, currentID)
	if !ok && currentID != nil && len(lessons) > 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"redirect": fmt.Sprintf("/courses/%s/%s", courseID, lessons[0].ID),
		})
		return
	}
	if ok {
		resp.Lesson = nav.Current
		resp.Previous = nav.Previous
		resp.Next = nav.Next
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.Admin.CreateCourse(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Admin.UpdateCourse(c.Request.Context(), courseID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// DeleteCourse requires confirm=true; a course delete takes its lessons
// with it.
func (h *Handler) DeleteCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	confirmed := c.Query("confirm") == "true"
	if err := h.Admin.DeleteCourse(c.Request.Context(), courseID, confirmed); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) ReorderCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := dto.Validate(req); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.Admin.ReorderCourse(ctx, courseID, constant.MoveDirection(req.Direction)); err != nil {
		respondError(c, err)
		return
	}

	courses, err := h.Catalog.ListCourses(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	courses, err := h.Catalog.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_count": len(courses)})
}
