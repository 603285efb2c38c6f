package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/promptdeck/promptdeck/docs"
	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/modules/handler"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
	"github.com/promptdeck/promptdeck/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config *config.Config
	Log    *zap.Logger

	UserService service.UserService
	AuthService service.AuthService

	AuthHandler    *handler.AuthHandler
	ProjectHandler *handler.ProjectHandler
	PromptHandler  *handler.PromptHandler
	FileHandler    *handler.FileHandler
	RunHandler     *handler.RunHandler
	StreamHandler  *handler.StreamHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(middleware.Recovery(d.Log))

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.RequestLogger(d.Log))

	if len(d.Config.HTTP.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = d.Config.HTTP.CORSOrigins
		// Cookie auth needs credentialed CORS.
		corsCfg.AllowCredentials = true
		corsCfg.AddAllowHeaders("Authorization")
		r.Use(cors.New(corsCfg))
	}

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// public
	r.POST("/users", d.AuthHandler.Register)
	r.POST("/login", d.AuthHandler.Login)
	r.POST("/logout", d.AuthHandler.Logout)

	auth := r.Group("")
	auth.Use(middleware.Auth(d.UserService, d.AuthService, d.Config.Auth.CookieName))
	{
		projects := auth.Group("/projects")
		{
			projects.POST("", d.ProjectHandler.Create)
			projects.GET("", d.ProjectHandler.List)
			projects.GET("/:project_id", d.ProjectHandler.Get)
			projects.POST("/:project_id/generate_name", d.ProjectHandler.GenerateName)

			projects.GET("/:project_id/prompts", d.PromptHandler.ListByProject)

			projects.POST("/:project_id/files", d.FileHandler.Upload)
			projects.GET("/:project_id/files", d.FileHandler.List)

			projects.POST("/:project_id/send_prompt", d.RunHandler.SendPrompt)
			projects.POST("/:project_id/messages", d.RunHandler.SendMessage)
			projects.GET("/:project_id/messages", d.RunHandler.GetMessages)
			projects.GET("/:project_id/messages/stream", d.StreamHandler.StreamMessage)
		}

		prompts := auth.Group("/prompts")
		{
			prompts.POST("", d.PromptHandler.Create)
			prompts.GET("/:prompt_id", d.PromptHandler.Get)
			prompts.PUT("/:prompt_id", d.PromptHandler.Update)
			prompts.DELETE("/:prompt_id", d.PromptHandler.Delete)
			prompts.POST("/:prompt_id/run", d.RunHandler.Run)
			prompts.GET("/:prompt_id/runs", d.PromptHandler.ListRuns)
		}

		auth.GET("/analytics/projects/:project_id", d.RunHandler.Analytics)
	}

	return r
}
