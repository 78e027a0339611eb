package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/doc2pod/doc2pod-backend/controllers"
	"github.com/doc2pod/doc2pod-backend/middleware"
	"github.com/doc2pod/doc2pod-backend/services"
)

func SetupRouter(r *gin.Engine, db *gorm.DB, storage services.ObjectStorage, writer services.ScriptWriter) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(db))

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db), middleware.DepsMiddleware(storage, writer))

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/documents/upload", controllers.UploadDocument)
		authed.GET("/documents", controllers.GetDocuments)
		authed.POST("/documents/:id/reprocess", controllers.ReprocessDocument)
		authed.DELETE("/documents/:id", controllers.DeleteDocument)

		authed.POST("/projects", controllers.CreateProject)
		authed.GET("/projects", controllers.GetProjects)
		authed.GET("/projects/:id", controllers.GetProjectDetail)
		authed.PUT("/projects/:id", controllers.UpdateProject)
		authed.DELETE("/projects/:id", controllers.DeleteProject)
		authed.POST("/projects/:id/documents", controllers.SetProjectDocuments)

		authed.POST("/podcasts/generate", controllers.GeneratePodcast)
		authed.GET("/podcasts", controllers.GetPodcasts)
		authed.GET("/podcasts/:id", controllers.GetPodcastDetail)
		authed.GET("/podcasts/:id/status", controllers.GetPodcastStatus)
		authed.POST("/podcasts/:id/audio", controllers.SynthesizePodcastAudio)
		authed.DELETE("/podcasts/:id", controllers.DeletePodcast)
	}

	return r
}
