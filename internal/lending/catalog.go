// Package lending holds the loan product catalog, the eligibility rules and
// the amortization math.
package lending

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// Reference catalog product IDs
const (
	ProductEmergency  = "emergency"
	ProductProductive = "productive"
)

// Catalog is an immutable set of loan products
type Catalog struct {
	products map[string]models.LoanProduct
}

// NewCatalog indexes products by ID.
func NewCatalog(products ...models.LoanProduct) *Catalog {
	c := &Catalog{products: make(map[string]models.LoanProduct, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// DefaultCatalog returns the reference products.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		models.LoanProduct{
			ID:                  ProductEmergency,
			Name:                "Emergency Loan",
			InterestRate:        0.10,
			MaxAmount:           decimal.NewFromInt(10000),
			TermMonths:          6,
			MinEmploymentMonths: 3,
			MinCreditScore:      400,
		},
		models.LoanProduct{
			ID:                  ProductProductive,
			Name:                "Productive Asset Loan",
			InterestRate:        0.12,
			MaxAmount:           decimal.NewFromInt(50000),
			TermMonths:          12,
			MinEmploymentMonths: 12,
			MinCreditScore:      500,
		},
	)
}

// Get looks a product up by ID.
func (c *Catalog) Get(id string) (models.LoanProduct, error) {
	p, ok := c.products[id]
	if !ok {
		return models.LoanProduct{}, fmt.Errorf("loan product %q: %w", id, models.ErrNotFound)
	}
	return p, nil
}

// List returns all products ordered by ID.
func (c *Catalog) List() []models.LoanProduct {
	out := make([]models.LoanProduct, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
