package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-session-service/internal/auth"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
)

const serviceName = "exam-session-service"

type HandlerManager struct {
	sessionHandler *SessionHandler
	resultHandler  *ResultHandler
	userHandler    *UserHandler
	catalogHandler *CatalogHandler
	guard          *auth.Guard
}

func NewHandlerManager(
	sessionService services.SessionService,
	resultService services.ResultService,
	authAPI AuthAPI,
	usersAPI UsersAPI,
	catalog CatalogAPIs,
	guard *auth.Guard,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(sessionService, logger),
		resultHandler:  NewResultHandler(resultService, logger),
		userHandler:    NewUserHandler(authAPI, usersAPI, validator, logger),
		catalogHandler: NewCatalogHandler(catalog, validator, logger),
		guard:          guard,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")

	// Login and signup stay reachable without a token.
	v1.POST("/user/login", hm.userHandler.Login)
	v1.POST("/user/signup", hm.userHandler.Signup)
	v1.POST("/user/token", hm.userHandler.ExchangeToken)

	protected := v1.Group("", hm.guard.RequireAuth())
	{
		protected.GET("/users/me", hm.userHandler.GetCurrentUser)

		sessions := protected.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.AbandonSession)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)
			sessions.GET("/:id/submissions", hm.sessionHandler.GetSubmissions)

			sessions.DELETE("/:id/responses", hm.sessionHandler.ClearAllResponses)
			sessions.GET("/:id/responses/:qid", hm.sessionHandler.GetResponse)
			sessions.PUT("/:id/responses/:qid", hm.sessionHandler.SetResponse)
			sessions.DELETE("/:id/responses/:qid", hm.sessionHandler.ClearResponse)
			sessions.POST("/:id/responses/:qid/options/:oid", hm.sessionHandler.ToggleOption)

			sessions.DELETE("/:id/review", hm.sessionHandler.ClearReview)
			sessions.PUT("/:id/review/:qid", hm.sessionHandler.AddToReview)
			sessions.DELETE("/:id/review/:qid", hm.sessionHandler.RemoveFromReview)

			sessions.PUT("/:id/timer", hm.sessionHandler.SetTimeLimit)
			sessions.POST("/:id/timer/start", hm.sessionHandler.StartTimer)
			sessions.POST("/:id/timer/stop", hm.sessionHandler.StopTimer)
			sessions.POST("/:id/timer/reset", hm.sessionHandler.ResetTimer)
		}

		attempts := protected.Group("/attempts")
		{
			attempts.GET("/latest", hm.resultHandler.GetLatestAttempts)
			attempts.GET("/:id", hm.resultHandler.LoadResults)
			attempts.DELETE("/:id", hm.resultHandler.ResetResults)
			attempts.GET("/:id/overall", hm.resultHandler.GetOverall)
			attempts.GET("/:id/info", hm.resultHandler.GetTestInfo)
			attempts.GET("/:id/analysis", hm.resultHandler.GetAnalysis)
			attempts.GET("/:id/answers", hm.resultHandler.GetAnswers)
			attempts.GET("/:id/export", hm.resultHandler.ExportAnswers)
		}

		tests := protected.Group("/tests")
		{
			tests.GET("", hm.catalogHandler.ListTests)
			tests.GET("/:id/info", hm.catalogHandler.GetTestInfo)
			tests.GET("/:id/parts", hm.catalogHandler.GetTestParts)
		}

		protected.GET("/skills", hm.catalogHandler.ListSkills)
		protected.GET("/skills/code/:code", hm.catalogHandler.GetSkillByCode)
		protected.GET("/test-categories", hm.catalogHandler.ListTestCategories)

		admin := protected.Group("", hm.guard.RequireRole(models.RoleAdmin))
		{
			admin.GET("/questions", hm.catalogHandler.ListQuestions)
			admin.GET("/questions/:id", hm.catalogHandler.GetQuestion)
			admin.GET("/question-sets", hm.catalogHandler.ListQuestionSets)
			admin.GET("/question-sets/:id", hm.catalogHandler.GetQuestionSet)
			admin.GET("/question-categories", hm.catalogHandler.ListQuestionCategories)
			admin.GET("/question-types", hm.catalogHandler.ListQuestionTypes)
			admin.GET("/parts", hm.catalogHandler.ListParts)
			admin.GET("/test-categories/exists/:field/:value", hm.catalogHandler.TestCategoryExists)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
