// Package inward provides the stock receipt document boundary.
package inward

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/numerator"
	"liquorpos/internal/core/tx"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/reference"

	"github.com/shopspring/decimal"
)

// Line is one product line of a receipt.
type Line struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitCost  types.Money `json:"unitCost"`
	Total     types.Money `json:"total"`
}

// Receipt is a posted stock inward document.
type Receipt struct {
	ID        id.ID       `db:"id" json:"id"`
	Number    string      `db:"receipt_number" json:"number"`
	Date      time.Time   `db:"receipt_date" json:"date"`
	Supplier  string      `db:"supplier" json:"supplier,omitempty"`
	Lines     []Line      `db:"-" json:"lines"`
	TotalCost types.Money `db:"total_cost" json:"totalCost"`
	CreatedBy string      `db:"created_by" json:"createdBy"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// Repository persists inward receipts.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error)
	ListByDay(ctx context.Context, day time.Time) ([]Receipt, error)
}

// Service posts stock receipts through the daily stock engine.
type Service struct {
	repo    Repository
	engine  *ledger.Engine
	numbers numerator.Generator
	txm     tx.Manager
}

func NewService(repo Repository, engine *ledger.Engine, numbers numerator.Generator, txm tx.Manager) *Service {
	return &Service{repo: repo, engine: engine, numbers: numbers, txm: txm}
}

// LineInput is one requested receipt line.
type LineInput struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitCost  types.Money `json:"unitCost"`
}

// Create posts a receipt dated at the given time. All lines and the
// document land in one transaction.
func (s *Service) Create(ctx context.Context, at time.Time, supplier string, lines []LineInput) (*Receipt, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("receipt must have at least one line")
	}

	number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig("INW"), &numerator.Options{Strategy: numerator.StrategyCached}, at)
	if err != nil {
		return nil, err
	}

	doc := Receipt{
		ID:        id.New(),
		Number:    number,
		Date:      at,
		Supplier:  supplier,
		TotalCost: types.ZeroMoney(),
		CreatedBy: appctx.ActorName(ctx),
		CreatedAt: time.Now().UTC(),
	}
	ref := reference.New(reference.KindStockInward, doc.ID)

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, in := range lines {
			if _, err := s.engine.RecordInward(ctx, in.ProductID, at, in.Quantity, in.UnitCost, ref); err != nil {
				return err
			}
			line := Line{
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitCost:  in.UnitCost,
				Total:     in.UnitCost.Mul(decimal.NewFromInt(in.Quantity)),
			}
			doc.Lines = append(doc.Lines, line)
			doc.TotalCost = doc.TotalCost.Add(line.Total)
		}
		return s.repo.Create(ctx, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error) {
	return s.repo.GetByID(ctx, receiptID)
}

func (s *Service) ListByDay(ctx context.Context, day time.Time) ([]Receipt, error) {
	return s.repo.ListByDay(ctx, types.DayOf(day))
}
