package main

import (
	"net/http"

	"aula/models"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the identity set by jwtAuthMiddleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// createSubjectHandler creates a subject owned by the authenticated user.
func (s *Server) createSubjectHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "user not found"})
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	// prevent duplicate subject names
	var existing models.Subject
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "subject already exists"})
		return
	}
	subject := models.Subject{Name: req.Name, Description: req.Description, CreatedBy: userID}
	if err := s.db.Create(&subject).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "subject already exists"})
			return
		}
		s.internalError(c, "create subject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": subject.ID})
}

// listSubjectsHandler lists recent subjects.
func (s *Server) listSubjectsHandler(c *gin.Context) {
	var items []models.Subject
	if err := s.db.Order("id desc").Limit(200).Find(&items).Error; err != nil {
		s.internalError(c, "list subjects", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getSubjectHandler(c *gin.Context) {
	id := c.Param("id")
	var subject models.Subject
	if err := s.db.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "subject not found"})
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (s *Server) updateSubjectHandler(c *gin.Context) {
	id := c.Param("id")
	var subject models.Subject
	if err := s.db.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "subject not found"})
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	// partial update: empty fields are left unchanged, so a description
	// cannot be cleared, only replaced
	if req.Name != "" {
		subject.Name = req.Name
	}
	if req.Description != "" {
		subject.Description = req.Description
	}
	if err := s.db.Save(&subject).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "subject already exists"})
			return
		}
		s.internalError(c, "update subject", err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (s *Server) deleteSubjectHandler(c *gin.Context) {
	id := c.Param("id")
	var subject models.Subject
	if err := s.db.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "subject not found"})
		return
	}
	if err := s.db.Delete(&subject).Error; err != nil {
		s.internalError(c, "delete subject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subject deleted"})
}

// enrollHandler enrolls the authenticated user as a student of the subject.
func (s *Server) enrollHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "user not found"})
		return
	}
	id := c.Param("id")
	var subject models.Subject
	if err := s.db.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "subject not found"})
		return
	}
	var existing models.Enrollment
	if err := s.db.Where("subject_id = ? AND student_id = ?", subject.ID, userID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "already enrolled"})
		return
	}
	enrollment := models.Enrollment{SubjectID: subject.ID, StudentID: userID}
	if err := s.db.Create(&enrollment).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "already enrolled"})
			return
		}
		s.internalError(c, "enroll", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": enrollment.ID})
}

func (s *Server) withdrawHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "user not found"})
		return
	}
	id := c.Param("id")
	var enrollment models.Enrollment
	if err := s.db.Where("subject_id = ? AND student_id = ?", id, userID).First(&enrollment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "enrollment not found"})
		return
	}
	if err := s.db.Delete(&enrollment).Error; err != nil {
		s.internalError(c, "withdraw", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "withdrawn"})
}

// listStudentsHandler returns the students enrolled in a subject.
func (s *Server) listStudentsHandler(c *gin.Context) {
	id := c.Param("id")
	var subject models.Subject
	if err := s.db.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "subject not found"})
		return
	}
	var students []models.User
	err := s.db.
		Joins("JOIN enrollments ON enrollments.student_id = users.id").
		Where("enrollments.subject_id = ?", subject.ID).
		Order("users.id").
		Find(&students).Error
	if err != nil {
		s.internalError(c, "list students", err)
		return
	}
	out := make([]gin.H, 0, len(students))
	for i := range students {
		out = append(out, publicUser(&students[i]))
	}
	c.JSON(http.StatusOK, out)
}
