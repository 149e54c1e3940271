package stores

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"scolarite-backend/database"
	"scolarite-backend/models"
)

const paymentsCollection = "payments"

// PaymentLedger owns the materialized per-student-per-month payment
// records. It is the only writer of StudentPayment rows; the fee
// configuration is a read-only input whose later edits never flow back into
// records already materialized.
type PaymentLedger struct {
	mu       sync.RWMutex
	store    database.Store
	fees     *FeeConfigStore
	payments []models.StudentPayment

	now func() time.Time // swapped in tests
}

func NewPaymentLedger(store database.Store, fees *FeeConfigStore) *PaymentLedger {
	return &PaymentLedger{store: store, fees: fees, now: time.Now}
}

// Load hydrates the cache from storage. Call once at startup and again
// after a data import.
func (l *PaymentLedger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	payments := []models.StudentPayment{}
	if err := l.store.LoadCollection(paymentsCollection, &payments); err != nil {
		return err
	}
	l.payments = payments
	return nil
}

// CreateStudentPayment materializes the (student, month) ledger line,
// snapshotting the class's current monthly fee permanently. (student, month)
// is unique: an already-materialized record is returned as-is instead of
// creating a duplicate.
func (l *PaymentLedger) CreateStudentPayment(studentID, classID, month string) (models.StudentPayment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.payments {
		if p.StudentID == studentID && p.Month == month {
			return p.Clone(), nil
		}
	}

	var monthlyFee float64
	if cf, ok := l.fees.GetClassFees(classID); ok {
		monthlyFee = cf.MonthlyFee
	}

	yearStr, _, _ := strings.Cut(month, "-")
	year, _ := strconv.Atoi(yearStr)

	p := models.StudentPayment{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		Month:          month,
		Year:           year,
		ClassID:        classID,
		MonthlyFee:     monthlyFee,
		Services:       datatypes.JSONSlice[models.PaymentServiceLine]{},
		AdditionalFees: datatypes.JSONSlice[models.AdditionalFee]{},
		CreatedAt:      l.now(),
	}
	p.Recalculate()

	if err := l.store.SaveDoc(paymentsCollection, p.ID, &p); err != nil {
		return models.StudentPayment{}, err
	}
	l.payments = append(l.payments, p)
	return p.Clone(), nil
}

// AddServiceToPayment snapshots a catalog service onto the record and
// recomputes totals. An unknown service id is a silent no-op; callers are
// expected to de-duplicate repeated adds themselves.
func (l *PaymentLedger) AddServiceToPayment(paymentID, serviceID string) error {
	svc, ok := l.fees.GetService(serviceID)
	if !ok {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.indexOf(paymentID)
	if err != nil {
		return err
	}
	upd := l.payments[i].Clone()
	upd.Services = append(upd.Services, models.PaymentServiceLine{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Price:       svc.Price,
		IsPaid:      false,
	})
	return l.commit(i, &upd)
}

// PaymentPatch carries directly overwritable StudentPayment fields; nil
// means "leave as is". Derived fields are not settable; they are
// recomputed after the merge.
type PaymentPatch struct {
	MonthlyFee     *float64                  `json:"monthlyFee"`
	PaidAmount     *float64                  `json:"paidAmount"`
	Services       *[]models.PaymentServiceLine `json:"services"`
	AdditionalFees *[]models.AdditionalFee   `json:"additionalFees"`
	PaymentDate    *time.Time                `json:"paymentDate"`
}

// UpdateStudentPayment merges the given fields, then unconditionally
// recomputes totalAmount, remainingAmount and isPaid. This recomputation is
// the single source of truth and runs after every mutation path.
func (l *PaymentLedger) UpdateStudentPayment(paymentID string, patch PaymentPatch) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.indexOf(paymentID)
	if err != nil {
		return err
	}
	upd := l.payments[i].Clone()
	if patch.MonthlyFee != nil {
		upd.MonthlyFee = *patch.MonthlyFee
	}
	if patch.PaidAmount != nil {
		upd.PaidAmount = *patch.PaidAmount
	}
	if patch.Services != nil {
		upd.Services = append(datatypes.JSONSlice[models.PaymentServiceLine]{}, *patch.Services...)
	}
	if patch.AdditionalFees != nil {
		upd.AdditionalFees = append(datatypes.JSONSlice[models.AdditionalFee]{}, *patch.AdditionalFees...)
	}
	if patch.PaymentDate != nil {
		d := *patch.PaymentDate
		upd.PaymentDate = &d
	}
	return l.commit(i, &upd)
}

// AddAdditionalFee attaches an ad-hoc one-off charge and returns its id.
func (l *PaymentLedger) AddAdditionalFee(paymentID, name string, amount float64) (string, error) {
	if !validAmount(amount) {
		return "", database.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.indexOf(paymentID)
	if err != nil {
		return "", err
	}
	fee := models.AdditionalFee{
		ID:     uuid.NewString(),
		Name:   name,
		Amount: amount,
	}
	upd := l.payments[i].Clone()
	upd.AdditionalFees = append(upd.AdditionalFees, fee)
	if err := l.commit(i, &upd); err != nil {
		return "", err
	}
	return fee.ID, nil
}

// RecordPayment adds a cash receipt to the record: amount must be strictly
// positive, paidAmount accumulates, paymentDate is stamped, totals
// recompute. Partial payments and overpayment are both fine; remaining can
// go negative and isPaid stays true.
func (l *PaymentLedger) RecordPayment(paymentID string, amount float64) (models.StudentPayment, error) {
	if amount <= 0 || !validAmount(amount) {
		return models.StudentPayment{}, database.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.indexOf(paymentID)
	if err != nil {
		return models.StudentPayment{}, err
	}
	upd := l.payments[i].Clone()
	upd.PaidAmount += amount
	now := l.now()
	upd.PaymentDate = &now
	if err := l.commit(i, &upd); err != nil {
		return models.StudentPayment{}, err
	}
	return upd.Clone(), nil
}

// GetPayment returns one record by id.
func (l *PaymentLedger) GetPayment(id string) (models.StudentPayment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.payments {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.StudentPayment{}, false
}

// GetPaymentsByClassAndMonth returns the class's records for one month in
// insertion order.
func (l *PaymentLedger) GetPaymentsByClassAndMonth(classID, month string) []models.StudentPayment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []models.StudentPayment{}
	for _, p := range l.payments {
		if p.ClassID == classID && p.Month == month {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (l *PaymentLedger) ListPayments() []models.StudentPayment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.StudentPayment, 0, len(l.payments))
	for _, p := range l.payments {
		out = append(out, p.Clone())
	}
	return out
}

// GetClassFees is a read-only passthrough to the fee configuration.
func (l *PaymentLedger) GetClassFees(classID string) (models.ClassFeeConfig, bool) {
	return l.fees.GetClassFees(classID)
}

// indexOf resolves a payment id under the write lock.
func (l *PaymentLedger) indexOf(paymentID string) (int, error) {
	for i := range l.payments {
		if l.payments[i].ID == paymentID {
			return i, nil
		}
	}
	return 0, database.ErrNotFound
}

// commit recomputes derived fields in place, persists, and only then
// replaces the cached record. Persistence failure leaves the cache
// untouched; callers read the recomputed fields back through upd.
func (l *PaymentLedger) commit(i int, upd *models.StudentPayment) error {
	upd.Recalculate()
	if err := l.store.SaveDoc(paymentsCollection, upd.ID, upd); err != nil {
		return err
	}
	l.payments[i] = *upd
	return nil
}
