// Package reconciliation implements the physical-count reconciliation
// workflow: a counting session per day that moves through an approval
// gate before its variances are applied to live stock.
package reconciliation

import (
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"

	"github.com/shopspring/decimal"
)

// Status is the session lifecycle state.
//
//	in_progress -> pending_approval -> approved -> completed
//	in_progress -> pending_approval -> rejected
type Status string

const (
	StatusInProgress      Status = "in_progress"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusCompleted       Status = "completed"
)

// Active reports whether the session still blocks opening another one
// for the same day.
func (s Status) Active() bool {
	return s == StatusInProgress || s == StatusPendingApproval || s == StatusApproved
}

// Item is one product's line in a counting session. SystemStock is the
// snapshot taken when the line was added; Variance fields are derived
// when the physical count is recorded.
type Item struct {
	ID            id.ID       `db:"id" json:"id"`
	SessionID     id.ID       `db:"session_id" json:"sessionId"`
	ProductID     id.ID       `db:"product_id" json:"productId"`
	SystemStock   int64       `db:"system_stock" json:"systemStock"`
	PhysicalStock *int64      `db:"physical_stock" json:"physicalStock,omitempty"`
	Variance      int64       `db:"variance" json:"variance"`
	VarianceValue types.Money `db:"variance_value" json:"varianceValue"`
	UnitCost      types.Money `db:"unit_cost" json:"unitCost"`
	CountedBy     string      `db:"counted_by" json:"countedBy,omitempty"`
	CountedAt     *time.Time  `db:"counted_at" json:"countedAt,omitempty"`
	Applied       bool        `db:"applied" json:"applied"`
	ApplyError    string      `db:"apply_error" json:"applyError,omitempty"`
}

// Counted reports whether a physical count has been recorded.
func (it *Item) Counted() bool { return it.PhysicalStock != nil }

// SetCount records the physical count and derives the variance.
func (it *Item) SetCount(physical int64, countedBy string, at time.Time) {
	it.PhysicalStock = &physical
	it.Variance = physical - it.SystemStock
	it.VarianceValue = it.UnitCost.Mul(decimal.NewFromInt(it.Variance))
	it.CountedBy = countedBy
	t := at.UTC()
	it.CountedAt = &t
}

// Session is one reconciliation run for a business day.
type Session struct {
	ID          id.ID     `db:"id" json:"id"`
	Number      string    `db:"session_number" json:"number"`
	Date        time.Time `db:"session_date" json:"date"`
	Status      Status    `db:"status" json:"status"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submittedAt,omitempty"`
	ApprovedBy  string    `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	RejectedBy  string    `db:"rejected_by" json:"rejectedBy,omitempty"`
	RejectedAt  *time.Time `db:"rejected_at" json:"rejectedAt,omitempty"`
	RejectReason string   `db:"reject_reason" json:"rejectReason,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`

	// Derived totals, recalculated whenever items change.
	TotalItems         int         `db:"total_items" json:"totalItems"`
	CountedItems       int         `db:"counted_items" json:"countedItems"`
	ItemsWithVariance  int         `db:"items_with_variance" json:"itemsWithVariance"`
	TotalVarianceQty   int64       `db:"total_variance_qty" json:"totalVarianceQty"`
	TotalVarianceValue types.Money `db:"total_variance_value" json:"totalVarianceValue"`

	Items []Item `db:"-" json:"items,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewSession creates an in-progress counting session for the day.
func NewSession(number string, day time.Time, createdBy, notes string) Session {
	now := time.Now().UTC()
	return Session{
		ID:                 id.New(),
		Number:             number,
		Date:               types.DayOf(day),
		Status:             StatusInProgress,
		Notes:              notes,
		CreatedBy:          createdBy,
		TotalVarianceValue: types.ZeroMoney(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// RecalcTotals rederives the session totals from its items.
func (s *Session) RecalcTotals() {
	s.TotalItems = len(s.Items)
	s.CountedItems = 0
	s.ItemsWithVariance = 0
	s.TotalVarianceQty = 0
	s.TotalVarianceValue = types.ZeroMoney()
	for i := range s.Items {
		it := &s.Items[i]
		if !it.Counted() {
			continue
		}
		s.CountedItems++
		if it.Variance != 0 {
			s.ItemsWithVariance++
		}
		s.TotalVarianceQty += it.Variance
		s.TotalVarianceValue = s.TotalVarianceValue.Add(it.VarianceValue)
	}
}

// Item returns the session item for a product, or nil.
func (s *Session) Item(productID id.ID) *Item {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}

// State guards. Counting is only allowed while the session is in
// progress; approval decisions only while pending; adjustments apply
// only once, after approval.

func (s *Session) CanRecordCount() error {
	if s.Status != StatusInProgress {
		return apperror.NewInvalidState("record count", string(StatusInProgress), string(s.Status))
	}
	return nil
}

func (s *Session) CanSubmit() error {
	if s.Status != StatusInProgress {
		return apperror.NewInvalidState("submit for approval", string(StatusInProgress), string(s.Status))
	}
	return nil
}

func (s *Session) CanApprove() error {
	if s.Status != StatusPendingApproval {
		return apperror.NewInvalidState("approve", string(StatusPendingApproval), string(s.Status))
	}
	return nil
}

func (s *Session) CanReject() error {
	if s.Status != StatusPendingApproval {
		return apperror.NewInvalidState("reject", string(StatusPendingApproval), string(s.Status))
	}
	return nil
}

func (s *Session) CanApply() error {
	if s.Status != StatusApproved {
		return apperror.NewInvalidState("apply adjustments", string(StatusApproved), string(s.Status))
	}
	return nil
}
