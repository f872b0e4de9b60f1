package transaction

import (
	"context"
	"time"

	"comercio/pkg/numerator"
)

// Invoice numbers are gap-free accounting identifiers, so the strict
// numerator strategy is used.
const NumeratorStrategy = numerator.StrategyStrict

// Numbering assigns invoice numbers from the shared numerator,
// partitioned per (kind, branch).
type Numbering struct {
	gen numerator.Generator
}

// NewNumbering creates a numbering adapter over the numerator.
func NewNumbering(gen numerator.Generator) *Numbering {
	return &Numbering{gen: gen}
}

// NextInvoiceNumber implements NumberGenerator.
func (n *Numbering) NextInvoiceNumber(ctx context.Context, kind Kind, branchID string) (string, error) {
	prefix := "SAL"
	if kind == KindPurchase {
		prefix = "PUR"
	}
	cfg := numerator.DefaultConfig(prefix).WithScope(branchID)
	return n.gen.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
}

var _ NumberGenerator = (*Numbering)(nil)
