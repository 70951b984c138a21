// Package insight reduces the final analysis set into a comparative
// market report: a deterministic markdown table that needs no model
// call, and a narrative report generated through the gateway.
package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insighter-hq/researcher/internal/gateway"
	"github.com/insighter-hq/researcher/internal/model"
)

// Aggregator produces market insight reports.
type Aggregator struct {
	gw  *gateway.Gateway
	log *zap.Logger
}

// New creates an Aggregator.
func New(gw *gateway.Gateway) *Aggregator {
	return &Aggregator{
		gw:  gw,
		log: zap.L().With(zap.String("component", "insight")),
	}
}

// Generate returns the market insights report for the company set. When
// the narrative model call fails, the deterministic table is returned
// wrapped in an explanatory note; the result is never empty.
func (a *Aggregator) Generate(ctx context.Context, companies []*model.CompanyAnalysis) string {
	if len(companies) == 0 {
		return "Not enough data to generate insights."
	}

	table := ComparisonTable(companies)

	text, err := a.gw.Complete(ctx, reportPrompt(companies))
	if err != nil {
		a.log.Warn("insight narrative failed, returning table only", zap.Error(err))
		return tableOnlyReport(table)
	}
	if strings.TrimSpace(text) == "" {
		return tableOnlyReport(table)
	}
	return text
}

// ComparisonTable builds the markdown comparison table. Output is
// byte-stable for identical input.
func ComparisonTable(companies []*model.CompanyAnalysis) string {
	var b strings.Builder
	b.WriteString("| Company Name | Location | EST. Revenue | Est. Employees | Relevance |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range companies {
		loc := "Unknown"
		if len(c.Locations) > 0 {
			loc = c.Locations[0]
		}
		emp := c.EmployeeCountEstimate
		if emp == "" {
			emp = "Unknown"
		}
		rev := c.EstimatedRevenue
		if rev == "" {
			rev = "Unknown"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d/100 |\n", c.CompanyName, loc, rev, emp, c.RelevanceScore)
	}
	return strings.TrimRight(b.String(), "\n")
}

func reportPrompt(companies []*model.CompanyAnalysis) string {
	summaries := make([]string, 0, len(companies))
	for _, c := range companies {
		goals := "None"
		if len(c.StrategicGoals) > 0 {
			limit := len(c.StrategicGoals)
			if limit > 2 {
				limit = 2
			}
			goals = strings.Join(c.StrategicGoals[:limit], ", ")
		}
		rev := c.EstimatedRevenue
		if rev == "" {
			rev = "Unknown"
		}
		summaries = append(summaries, fmt.Sprintf("- %s: %s. Revenue: %s. Goals: %s", c.CompanyName, c.Summary, rev, goals))
	}

	return fmt.Sprintf(`Synthesize a Comprehensive Market Research Report based on these analyzed companies:

%s

Output a professional markdown report in this format:
# Market Landscape
[Key trends, commonalities, and financial health of the sector]

# Competitive Analysis
[Market leaders vs emerging players based on revenue/size]

# Strategic Opportunities
[Gaps or potential engagement areas based on company goals]

# Financial Benchmarks
[INSERT MARKDOWN TABLE HERE]

**Benchmark Table Instructions**:
Create a markdown table comparing all companies on:
| Company Name | Est. Revenue | Location | Key Strategic Focus | Relevance Score |

Keep it concise.`, strings.Join(summaries, "\n"))
}

func tableOnlyReport(table string) string {
	return fmt.Sprintf(`# Market Analysis (Auto-Generated)

The report narrative could not be generated at this time. However, here is the comparative data:

## Financial Benchmark Table
%s`, table)
}
