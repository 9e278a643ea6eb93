package expenses

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// CategorySummary is the spending of one category. Percentage is the
// category's share of spending across categories with a positive net total;
// categories netting zero or less (refunds) report 0.
type CategorySummary struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary is the per-category breakdown of a user's expenses.
type Summary struct {
	Total      float64           `json:"total"`
	Count      int               `json:"count"`
	Categories []CategorySummary `json:"categories"`
}

type categoryAcc struct {
	total decimal.Decimal
	count int
}

// Summarize aggregates username's expenses by category, largest total first.
// Sums are computed in decimal so that 0.1+0.2 reports as 0.3.
func (s *Service) Summarize(ctx context.Context, username string) (*Summary, error) {
	expenses, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*categoryAcc)
	total := decimal.Zero
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		acc, ok := byCategory[e.Category]
		if !ok {
			acc = &categoryAcc{}
			byCategory[e.Category] = acc
		}
		acc.total = acc.total.Add(amount)
		acc.count++
		total = total.Add(amount)
	}

	spent := decimal.Zero
	for _, acc := range byCategory {
		if acc.total.IsPositive() {
			spent = spent.Add(acc.total)
		}
	}

	hundred := decimal.NewFromInt(100)
	categories := make([]CategorySummary, 0, len(byCategory))
	for name, acc := range byCategory {
		percentage := decimal.Zero
		if acc.total.IsPositive() {
			percentage = acc.total.Div(spent).Mul(hundred).Round(2)
		}
		categories = append(categories, CategorySummary{
			Category:   name,
			Total:      acc.total.InexactFloat64(),
			Count:      acc.count,
			Percentage: percentage.InexactFloat64(),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Total != categories[j].Total {
			return categories[i].Total > categories[j].Total
		}
		return categories[i].Category < categories[j].Category
	})

	return &Summary{
		Total:      total.InexactFloat64(),
		Count:      len(expenses),
		Categories: categories,
	}, nil
}
