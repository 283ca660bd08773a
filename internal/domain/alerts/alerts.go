// Package alerts evaluates low-stock alert rules against the product
// catalog. Rules are CEL expressions over the product's stock fields,
// so operators can tune alerting without a redeploy:
//
//	active && current_stock <= min_stock
//	active && current_stock <= min_stock * 2 && category == "spirits"
package alerts

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/pkg/logger"

	"github.com/google/cel-go/cel"
)

// DefaultRule fires when an active product is at or below its minimum.
const DefaultRule = "active && current_stock <= min_stock"

// Alert is one product that matched the rule.
type Alert struct {
	ProductID    id.ID     `json:"productId"`
	ProductName  string    `json:"productName"`
	SKU          string    `json:"sku"`
	CurrentStock int64     `json:"currentStock"`
	MinStock     int64     `json:"minStock"`
	RaisedAt     time.Time `json:"raisedAt"`
}

// Rule is a compiled alert expression.
type Rule struct {
	expr    string
	program cel.Program
}

// Compile parses and type-checks a rule expression. The expression must
// evaluate to a boolean.
func Compile(expr string) (*Rule, error) {
	env, err := cel.NewEnv(
		cel.Variable("current_stock", cel.IntType),
		cel.Variable("min_stock", cel.IntType),
		cel.Variable("active", cel.BoolType),
		cel.Variable("category", cel.StringType),
	)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid alert rule: " + issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewValidation("alert rule must evaluate to a boolean")
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &Rule{expr: expr, program: program}, nil
}

// String returns the rule's source expression.
func (r *Rule) String() string { return r.expr }

// Matches evaluates the rule against one product.
func (r *Rule) Matches(p *product.Product, categoryName string) (bool, error) {
	out, _, err := r.program.Eval(map[string]any{
		"current_stock": p.CurrentStock,
		"min_stock":     p.MinStock,
		"active":        p.Active,
		"category":      categoryName,
	})
	if err != nil {
		return false, apperror.NewInternal(err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewValidation("alert rule did not produce a boolean")
	}
	return b, nil
}

// Service scans the catalog with a compiled rule.
type Service struct {
	products   product.Repository
	categories CategoryNamer
	rule       *Rule
	log        *logger.Logger
}

// CategoryNamer resolves a category id to its display name. Empty
// string for unknown or nil ids.
type CategoryNamer interface {
	CategoryName(ctx context.Context, categoryID id.ID) string
}

func NewService(products product.Repository, categories CategoryNamer, rule *Rule, log *logger.Logger) *Service {
	return &Service{
		products:   products,
		categories: categories,
		rule:       rule,
		log:        log.WithComponent("alerts"),
	}
}

// Check evaluates the rule over all active products and returns the
// matching alerts. Evaluation errors on individual products are logged
// and skipped.
func (s *Service) Check(ctx context.Context) ([]Alert, error) {
	prods, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var out []Alert
	for i := range prods {
		p := &prods[i]
		categoryName := ""
		if s.categories != nil {
			categoryName = s.categories.CategoryName(ctx, p.CategoryID)
		}
		match, err := s.rule.Matches(p, categoryName)
		if err != nil {
			logger.Warn(ctx, "alert rule evaluation failed", "product_id", p.ID, "error", err)
			continue
		}
		if match {
			out = append(out, Alert{
				ProductID:    p.ID,
				ProductName:  p.Name,
				SKU:          p.SKU,
				CurrentStock: p.CurrentStock,
				MinStock:     p.MinStock,
				RaisedAt:     now,
			})
		}
	}
	return out, nil
}
