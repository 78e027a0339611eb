package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/doc2pod/doc2pod-backend/models"
)

type ProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type SetProjectDocumentsInput struct {
	DocumentIDs []uuid.UUID `json:"document_ids" binding:"required"`
}

// POST /api/projects
func CreateProject(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var input ProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	project := models.Project{
		ID:          uuid.New(),
		UserID:      uid,
		Name:        name,
		Description: trimmedOrNil(input.Description),
	}
	if err := db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GET /api/projects
func GetProjects(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var projects []models.Project
	if err := db.Where("user_id = ?", uid).Order("created_at DESC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GET /api/projects/:id
// Returns the project together with its linked documents.
func GetProjectDetail(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := db.First(&project, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var links []models.ProjectDocument
	if err := db.Where("project_id = ?", project.ID).Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project documents"})
		return
	}

	documents := []models.Document{}
	if len(links) > 0 {
		ids := make([]uuid.UUID, 0, len(links))
		for _, link := range links {
			ids = append(ids, link.DocumentID)
		}
		if err := db.Where("id IN ? AND user_id = ?", ids, uid).Find(&documents).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          project.ID,
		"user_id":     project.UserID,
		"name":        project.Name,
		"description": project.Description,
		"created_at":  project.CreatedAt,
		"updated_at":  project.UpdatedAt,
		"documents":   documents,
	})
}

// PUT /api/projects/:id
func UpdateProject(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := db.First(&project, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var input ProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = trimmedOrNil(input.Description)
	}

	if len(updates) > 0 {
		if err := db.Model(&project).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
			return
		}
	}

	c.JSON(http.StatusOK, project)
}

// DELETE /api/projects/:id
func DeleteProject(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := db.First(&project, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if err := db.Delete(&models.ProjectDocument{}, "project_id = ?", project.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project links"})
		return
	}
	if err := db.Delete(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/projects/:id/documents
// Replaces the project's document set wholesale: existing links are deleted,
// then the submitted set is inserted. Not a diff/merge, and not atomic — a
// failure between the two steps can leave the set empty.
func SetProjectDocuments(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := db.First(&project, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var input SetProjectDocumentsInput
	if err := c.ShouldBindJSON(&input); err != nil || len(input.DocumentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_ids array is required"})
		return
	}

	var count int64
	if err := db.Model(&models.Document{}).
		Where("id IN ? AND user_id = ?", input.DocumentIDs, uid).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify documents"})
		return
	}
	if count != int64(len(input.DocumentIDs)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "One or more documents not found or access denied"})
		return
	}

	if err := db.Delete(&models.ProjectDocument{}, "project_id = ?", project.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace project documents"})
		return
	}

	links := make([]models.ProjectDocument, 0, len(input.DocumentIDs))
	for _, docID := range input.DocumentIDs {
		links = append(links, models.ProjectDocument{ProjectID: project.ID, DocumentID: docID})
	}
	if err := db.Create(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
