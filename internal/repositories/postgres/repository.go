package postgres

import (
	"gorm.io/gorm"

	"github.com/prepkart/prepkart-api/internal/repositories"
)

// GormRepository bundles the Postgres-backed repositories behind the
// repositories.Repository facade.
type GormRepository struct {
	exam     repositories.ExamRepository
	question repositories.QuestionRepository
	result   repositories.ResultRepository
	order    repositories.OrderRepository
	coupon   repositories.CouponRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &GormRepository{
		exam:     NewExamPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		result:   NewResultPostgreSQL(db),
		order:    NewOrderPostgreSQL(db),
		coupon:   NewCouponPostgreSQL(db),
	}
}

func (r *GormRepository) Exam() repositories.ExamRepository         { return r.exam }
func (r *GormRepository) Question() repositories.QuestionRepository { return r.question }
func (r *GormRepository) Result() repositories.ResultRepository     { return r.result }
func (r *GormRepository) Order() repositories.OrderRepository       { return r.order }
func (r *GormRepository) Coupon() repositories.CouponRepository     { return r.coupon }
