package services

import (
	"github.com/prepkart/prepkart-api/internal/cache"
	"github.com/prepkart/prepkart-api/internal/events"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

// ServiceManager exposes every domain service behind one wiring point.
type ServiceManager interface {
	Exam() ExamService
	Question() QuestionService
	Result() ResultService
	Order() OrderService
	Coupon() CouponService
	ImportExport() ImportExportService
}

type serviceManager struct {
	exam         ExamService
	question     QuestionService
	result       ResultService
	order        OrderService
	coupon       CouponService
	importExport ImportExportService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	payments PaymentService,
	logger utils.Logger,
	v *validator.Validator,
) ServiceManager {
	coupon := NewCouponService(repo, publisher, logger, v)

	return &serviceManager{
		exam:         NewExamService(repo, logger, v),
		question:     NewQuestionService(repo, cacheService, logger, v),
		result:       NewResultService(repo, publisher, logger, v),
		order:        NewOrderService(repo, coupon, payments, publisher, logger, v),
		coupon:       coupon,
		importExport: NewImportExportService(repo, logger, v),
	}
}

func (m *serviceManager) Exam() ExamService                 { return m.exam }
func (m *serviceManager) Question() QuestionService         { return m.question }
func (m *serviceManager) Result() ResultService             { return m.result }
func (m *serviceManager) Order() OrderService               { return m.order }
func (m *serviceManager) Coupon() CouponService             { return m.coupon }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
