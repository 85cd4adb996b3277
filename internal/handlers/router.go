package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
)

type HandlerManager struct {
	examHandler     *ExamHandler
	questionHandler *QuestionHandler
	resultHandler   *ResultHandler
	orderHandler    *OrderHandler
	couponHandler   *CouponHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	cronSecret string,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler:     NewExamHandler(serviceManager.Exam(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), serviceManager.ImportExport(), logger),
		resultHandler:   NewResultHandler(serviceManager.Result(), logger),
		orderHandler:    NewOrderHandler(serviceManager.Order(), cronSecret, logger),
		couponHandler:   NewCouponHandler(serviceManager.Coupon(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Exam routes
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.GET("/code/:code", hm.examHandler.GetExamByCode)
			exams.PUT("/:id", hm.examHandler.UpdateExam)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)
			exams.POST("/:id/publish", hm.examHandler.PublishExam)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)

			questions.GET("/exam/:examId", hm.questionHandler.GetExamQuestions)
			questions.GET("/exam/:examId/sample", hm.questionHandler.GetSampleQuestions)
			questions.POST("/exam/:examId/import", hm.questionHandler.ImportQuestions)
			questions.GET("/exam/:examId/export", hm.questionHandler.ExportQuestions)
		}

		// Result routes
		results := v1.Group("/results")
		{
			results.POST("/save", hm.resultHandler.SaveResult)
			results.GET("", hm.resultHandler.ListResults)
			results.GET("/:id", hm.resultHandler.GetResult)
		}

		// Order routes
		orders := v1.Group("/orders")
		{
			orders.POST("/checkout", hm.orderHandler.Checkout)
			orders.GET("", hm.orderHandler.ListOrders)
			orders.GET("/:id", hm.orderHandler.GetOrder)
		}

		// Coupon routes
		coupons := v1.Group("/coupons")
		{
			coupons.POST("/validate", hm.couponHandler.ValidateCoupon)
			coupons.POST("", hm.couponHandler.CreateCoupon)
			coupons.GET("", hm.couponHandler.ListCoupons)
			coupons.GET("/:id", hm.couponHandler.GetCoupon)
			coupons.PUT("/:id", hm.couponHandler.UpdateCoupon)
			coupons.DELETE("/:id", hm.couponHandler.DeleteCoupon)
		}

		// Scheduled maintenance, secret-guarded. GET and POST both work so
		// external schedulers of either kind can call it.
		cron := v1.Group("/cron")
		{
			cron.GET("/expire-orders", hm.orderHandler.ExpireOrders)
			cron.POST("/expire-orders", hm.orderHandler.ExpireOrders)
		}
	}
}
