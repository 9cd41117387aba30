package models

import (
	"fmt"
	"strings"
)

// Allocation is one symbol's weight (percent) in an optimized portfolio.
type Allocation struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// PortfolioMetrics summarizes the optimized portfolio's expected behavior.
type PortfolioMetrics struct {
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// OptimizeRequest is the payload for the mean-variance optimizer.
type OptimizeRequest struct {
	Symbols []string `json:"symbols"`
}

// Validate checks the request client-side. The optimizer needs at least two
// symbols to build a covariance matrix.
func (r *OptimizeRequest) Validate() error {
	var clean []string
	for _, s := range r.Symbols {
		if strings.TrimSpace(s) != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) < 2 {
		return fmt.Errorf("at least 2 symbols are required (got %d)", len(clean))
	}
	return nil
}

// OptimizationResult is the optimizer's response: max-Sharpe weights plus the
// AI doctor's narrative review.
type OptimizationResult struct {
	Allocation []Allocation     `json:"allocation"`
	Metrics    PortfolioMetrics `json:"metrics"`
	DoctorNote string           `json:"doctor_note,omitempty"`
}

// ToMarkdown renders the optimization result as a readable markdown document.
func (r *OptimizationResult) ToMarkdown() string {
	var b strings.Builder

	b.WriteString("# Portfolio Optimization\n\n")

	if len(r.Allocation) == 0 {
		b.WriteString("No allocation produced.\n\n")
	} else {
		b.WriteString("## Allocation\n\n")
		for _, a := range r.Allocation {
			b.WriteString(fmt.Sprintf("- **%s** — %.1f%%\n", a.Symbol, a.Weight))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Metrics\n\n")
	b.WriteString(fmt.Sprintf("- Expected return: %.2f%%\n", r.Metrics.ExpectedReturn*100))
	b.WriteString(fmt.Sprintf("- Volatility: %.2f%%\n", r.Metrics.Volatility*100))
	b.WriteString(fmt.Sprintf("- Sharpe ratio: %.2f\n", r.Metrics.SharpeRatio))

	if r.DoctorNote != "" {
		b.WriteString("\n## Doctor's Note\n\n")
		b.WriteString(r.DoctorNote)
		b.WriteString("\n")
	}

	return b.String()
}
