package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
)

// fakeRepo is an in-memory repositories.Repository for service tests.
type fakeRepo struct {
	exams     *fakeExamRepo
	questions *fakeQuestionRepo
	results   *fakeResultRepo
	orders    *fakeOrderRepo
	coupons   *fakeCouponRepo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		exams:     &fakeExamRepo{byID: map[uint]*models.Exam{}},
		questions: &fakeQuestionRepo{byID: map[uint]*models.Question{}},
		results:   &fakeResultRepo{},
		orders:    &fakeOrderRepo{byID: map[uint]*models.Order{}, replaceErr: map[uint]error{}},
		coupons:   &fakeCouponRepo{byID: map[uint]*models.Coupon{}},
	}
}

func (f *fakeRepo) Exam() repositories.ExamRepository         { return f.exams }
func (f *fakeRepo) Question() repositories.QuestionRepository { return f.questions }
func (f *fakeRepo) Result() repositories.ResultRepository     { return f.results }
func (f *fakeRepo) Order() repositories.OrderRepository       { return f.orders }
func (f *fakeRepo) Coupon() repositories.CouponRepository     { return f.coupons }

// ===== exams =====

type fakeExamRepo struct {
	byID       map[uint]*models.Exam
	nextID     uint
	hasResults map[uint]bool
}

func (f *fakeExamRepo) Create(_ context.Context, exam *models.Exam) error {
	for _, e := range f.byID {
		if e.ExamCode == exam.ExamCode {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	exam.ID = f.nextID
	f.byID[exam.ID] = exam
	return nil
}

func (f *fakeExamRepo) GetByID(_ context.Context, id uint) (*models.Exam, error) {
	exam, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (f *fakeExamRepo) GetByCode(_ context.Context, code string) (*models.Exam, error) {
	for _, exam := range f.byID {
		if exam.ExamCode == code {
			return exam, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExamRepo) Update(_ context.Context, exam *models.Exam) error {
	if _, ok := f.byID[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.byID[exam.ID] = exam
	return nil
}

func (f *fakeExamRepo) Delete(_ context.Context, id uint) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeExamRepo) List(_ context.Context, _ repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var out []*models.Exam
	for _, exam := range f.byID {
		out = append(out, exam)
	}
	return out, int64(len(out)), nil
}

func (f *fakeExamRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, exam := range f.byID {
		if exam.ExamCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeExamRepo) HasResults(_ context.Context, id uint) (bool, error) {
	return f.hasResults[id], nil
}

// ===== questions =====

type fakeQuestionRepo struct {
	byID   map[uint]*models.Question
	nextID uint
}

func (f *fakeQuestionRepo) Create(_ context.Context, question *models.Question) error {
	f.nextID++
	question.ID = f.nextID
	f.byID[question.ID] = question
	return nil
}

func (f *fakeQuestionRepo) CreateBatch(ctx context.Context, questions []*models.Question) error {
	for _, q := range questions {
		if err := f.Create(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQuestionRepo) GetByID(_ context.Context, id uint) (*models.Question, error) {
	question, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (f *fakeQuestionRepo) Update(_ context.Context, question *models.Question) error {
	if _, ok := f.byID[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.byID[question.ID] = question
	return nil
}

func (f *fakeQuestionRepo) Delete(_ context.Context, id uint) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeQuestionRepo) GetByExam(_ context.Context, examID uint, filters repositories.QuestionFilters) ([]*models.Question, error) {
	out := []*models.Question{}
	for _, q := range f.byID {
		if q.ExamID != examID {
			continue
		}
		if filters.Status != nil && q.Status != *filters.Status {
			continue
		}
		if filters.IsSample != nil && q.IsSample != *filters.IsSample {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeQuestionRepo) ExistsByCode(_ context.Context, examID uint, code string) (bool, error) {
	for _, q := range f.byID {
		if q.ExamID == examID && q.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeQuestionRepo) CountByExam(_ context.Context, examID uint, status *models.QuestionStatus) (int64, error) {
	var count int64
	for _, q := range f.byID {
		if q.ExamID == examID && (status == nil || q.Status == *status) {
			count++
		}
	}
	return count, nil
}

// ===== results =====

type fakeResultRepo struct {
	results []*models.Result
	nextID  uint

	// staleMax, when set, makes MaxAttempt report an outdated value, the
	// way a concurrent submission racing for the same slot would see it.
	staleMax *int
}

func (f *fakeResultRepo) Create(_ context.Context, result *models.Result) error {
	for _, r := range f.results {
		if r.StudentID == result.StudentID && r.ExamCode == result.ExamCode && r.Attempt == result.Attempt {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	result.ID = f.nextID
	f.results = append(f.results, result)
	return nil
}

func (f *fakeResultRepo) GetByID(_ context.Context, id uint) (*models.Result, error) {
	for _, r := range f.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeResultRepo) GetByStudent(_ context.Context, studentID string) ([]*models.Result, error) {
	out := []*models.Result{}
	for _, r := range f.results {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResultRepo) GetByStudentAndExam(_ context.Context, studentID, examCode string) ([]*models.Result, error) {
	out := []*models.Result{}
	for _, r := range f.results {
		if r.StudentID == studentID && r.ExamCode == examCode {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResultRepo) MaxAttempt(_ context.Context, studentID, examCode string) (int, error) {
	if f.staleMax != nil {
		return *f.staleMax, nil
	}
	max := 0
	for _, r := range f.results {
		if r.StudentID == studentID && r.ExamCode == examCode && r.Attempt > max {
			max = r.Attempt
		}
	}
	return max, nil
}

func (f *fakeResultRepo) CountByExam(_ context.Context, examID uint) (int64, error) {
	var count int64
	for _, r := range f.results {
		if r.ExamID == examID {
			count++
		}
	}
	return count, nil
}

// ===== orders =====

type fakeOrderRepo struct {
	byID   map[uint]*models.Order
	nextID uint

	// replaceErr injects a failure for a given order's array rewrite.
	replaceErr map[uint]error
}

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	f.byID[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uint) (*models.Order, error) {
	order, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) GetByReference(_ context.Context, reference string) (*models.Order, error) {
	for _, order := range f.byID {
		if order.Reference == reference {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) Update(_ context.Context, order *models.Order) error {
	if _, ok := f.byID[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.byID[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id uint) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeOrderRepo) GetByStudent(_ context.Context, studentID string) ([]*models.Order, error) {
	out := []*models.Order{}
	for _, order := range f.byID {
		if order.StudentID == studentID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) FindWithUnexpiredItems(_ context.Context) ([]*models.Order, error) {
	out := []*models.Order{}
	for _, order := range f.byID {
		var items []models.CourseItem
		if err := json.Unmarshal(order.CourseDetails, &items); err != nil {
			continue
		}
		for _, item := range items {
			if !item.IsExpired {
				out = append(out, order)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ReplaceCourseDetails(_ context.Context, orderID uint, details datatypes.JSON) error {
	if err := f.replaceErr[orderID]; err != nil {
		return err
	}
	order, ok := f.byID[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.CourseDetails = details
	return nil
}

func (f *fakeOrderRepo) FindPDFOrdersOlderThan(_ context.Context, studentID string, cutoff time.Time) ([]*models.Order, error) {
	out := []*models.Order{}
	for _, order := range f.byID {
		if order.StudentID != studentID || !order.CreatedAt.Before(cutoff) {
			continue
		}
		var items []models.CourseItem
		if err := json.Unmarshal(order.CourseDetails, &items); err != nil {
			continue
		}
		pdfOnly := len(items) > 0
		for _, item := range items {
			if item.ItemType == "engine" {
				pdfOnly = false
				break
			}
		}
		if pdfOnly {
			out = append(out, order)
		}
	}
	return out, nil
}

// ===== coupons =====

type fakeCouponRepo struct {
	byID   map[uint]*models.Coupon
	nextID uint
}

func (f *fakeCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	for _, c := range f.byID {
		if c.Code == coupon.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	coupon.ID = f.nextID
	f.byID[coupon.ID] = coupon
	return nil
}

func (f *fakeCouponRepo) GetByID(_ context.Context, id uint) (*models.Coupon, error) {
	coupon, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return coupon, nil
}

func (f *fakeCouponRepo) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, coupon := range f.byID {
		if coupon.Code == code {
			return coupon, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) Update(_ context.Context, coupon *models.Coupon) error {
	if _, ok := f.byID[coupon.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.byID[coupon.ID] = coupon
	return nil
}

func (f *fakeCouponRepo) Delete(_ context.Context, id uint) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeCouponRepo) List(_ context.Context, _ repositories.CouponFilters) ([]*models.Coupon, int64, error) {
	var out []*models.Coupon
	for _, coupon := range f.byID {
		out = append(out, coupon)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCouponRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, coupon := range f.byID {
		if coupon.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCouponRepo) IncrementUsage(_ context.Context, id uint) (bool, error) {
	coupon, ok := f.byID[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if coupon.UsedCount >= coupon.MaxUseLimit {
		return false, nil
	}
	coupon.UsedCount++
	return true, nil
}

// ===== payments =====

type fakePaymentService struct {
	fail bool
}

func (f *fakePaymentService) CreateTransaction(order *models.Order, _ CustomerInfo) (string, string, error) {
	if f.fail {
		return "", "", fmt.Errorf("%w: gateway rejected", ErrUpstreamFailure)
	}
	return "tok-" + order.Reference, "https://pay.example.com/" + order.Reference, nil
}
