// Package sale provides the sales document boundary. A sale posts its
// lines through the daily stock engine, which owns the ledger, live
// stock, movement and audit effects.
package sale

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/numerator"
	"liquorpos/internal/core/tx"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/reference"

	"github.com/shopspring/decimal"
)

// Line is one product line of a sale.
type Line struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Total     types.Money `json:"total"`
}

// Sale is a posted sales document.
type Sale struct {
	ID          id.ID       `db:"id" json:"id"`
	Number      string      `db:"sale_number" json:"number"`
	Date        time.Time   `db:"sale_date" json:"date"`
	Lines       []Line      `db:"-" json:"lines"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	CreatedBy   string      `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// Repository persists sale documents.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	ListByDay(ctx context.Context, day time.Time) ([]Sale, error)
}

// Service posts sales.
type Service struct {
	repo     Repository
	products product.Repository
	engine   *ledger.Engine
	numbers  numerator.Generator
	txm      tx.Manager
}

func NewService(repo Repository, products product.Repository, engine *ledger.Engine, numbers numerator.Generator, txm tx.Manager) *Service {
	return &Service{repo: repo, products: products, engine: engine, numbers: numbers, txm: txm}
}

// LineInput is one requested sale line. Zero UnitPrice means the
// product's selling price.
type LineInput struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
}

// Create posts a sale dated at the given time. Availability is checked
// against live stock before posting, and the whole sale posts in one
// transaction: either every line lands in the ledger and the document
// persists, or nothing does.
func (s *Service) Create(ctx context.Context, at time.Time, lines []LineInput) (*Sale, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("sale must have at least one line")
	}

	for _, in := range lines {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if p.CurrentStock < in.Quantity {
			return nil, apperror.NewInsufficientStock(in.ProductID.String(), in.Quantity, p.CurrentStock)
		}
	}

	number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig("SAL"), &numerator.Options{Strategy: numerator.StrategyCached}, at)
	if err != nil {
		return nil, err
	}

	doc := Sale{
		ID:          id.New(),
		Number:      number,
		Date:        at,
		TotalAmount: types.ZeroMoney(),
		CreatedBy:   appctx.ActorName(ctx),
		CreatedAt:   time.Now().UTC(),
	}
	ref := reference.New(reference.KindSale, doc.ID)

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, in := range lines {
			price := in.UnitPrice
			if price.IsZero() {
				p, err := s.products.GetByID(ctx, in.ProductID)
				if err != nil {
					return err
				}
				price = p.SellingPrice
			}
			if _, err := s.engine.RecordSale(ctx, in.ProductID, at, in.Quantity, price, ref); err != nil {
				return err
			}
			line := Line{
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: price,
				Total:     price.Mul(decimal.NewFromInt(in.Quantity)),
			}
			doc.Lines = append(doc.Lines, line)
			doc.TotalAmount = doc.TotalAmount.Add(line.Total)
		}
		return s.repo.Create(ctx, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

func (s *Service) ListByDay(ctx context.Context, day time.Time) ([]Sale, error) {
	return s.repo.ListByDay(ctx, types.DayOf(day))
}
