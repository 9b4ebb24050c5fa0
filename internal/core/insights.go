package core

import "fmt"

// Insight levels drive styling in the dashboard template.
const (
	InsightOK      = "ok"
	InsightInfo    = "info"
	InsightWarning = "warning"
)

// Insight is a single rule-based tip shown on the dashboard.
type Insight struct {
	Level string
	Text  string
}

// concentrationThreshold is the share of total spending (or portfolio
// value) above which a single category or ticker triggers a warning.
const concentrationThreshold = 50

// BuildInsights runs the fixed rule sequence over precomputed
// aggregates. breakdown must be ordered by descending amount.
func BuildInsights(s Summary, breakdown []CategoryAmount, positions []PortfolioPosition) []Insight {
	var tips []Insight

	if len(breakdown) > 0 {
		var total int64
		for _, c := range breakdown {
			total += c.Amount.Cents
		}
		if total <= 0 {
			total = 1
		}
		top := breakdown[0]
		share := int((top.Amount.Cents*100 + total/2) / total)
		if share >= concentrationThreshold {
			tips = append(tips, Insight{
				Level: InsightWarning,
				Text:  fmt.Sprintf("High concentration in %s (%d%% of spending).", top.Name, share),
			})
		} else {
			tips = append(tips, Insight{
				Level: InsightOK,
				Text:  fmt.Sprintf("Balanced spending. Largest is %s (%d%%).", top.Name, share),
			})
		}
	}

	if s.Income.Cents > 0 {
		tips = append(tips, Insight{
			Level: InsightInfo,
			Text:  fmt.Sprintf("Savings rate this period: %d%%.", SavingsRate(s)),
		})
	}

	if s.Balance.Cents < 0 {
		tips = append(tips, Insight{
			Level: InsightWarning,
			Text:  "Balance is negative. Reduce discretionary spending this week.",
		})
	}

	if top, share, ok := TopPosition(positions); ok && share >= concentrationThreshold && len(positions) > 1 {
		tips = append(tips, Insight{
			Level: InsightWarning,
			Text:  fmt.Sprintf("Portfolio is concentrated: %s holds %d%% of total value.", top.Ticker, share),
		})
	}

	if len(tips) == 0 {
		tips = []Insight{{Level: InsightInfo, Text: "Add a few transactions to unlock insights."}}
	}
	return tips
}
