package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a run report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	sb.WriteString(fmt.Sprintf("Config: `%s`\n\n", r.ConfigID))
	sb.WriteString(fmt.Sprintf("Pair: %s vs %s | Window: %d .. %d (ms)\n\n",
		r.TargetSymbol, r.ReferenceSymbol, r.StartMs, r.EndMs))

	sb.WriteString("## Results\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Setups | %d |\n", r.Total))
	sb.WriteString(fmt.Sprintf("| Filled | %d |\n", r.Filled))
	sb.WriteString(fmt.Sprintf("| Wins | %d |\n", r.Wins))
	sb.WriteString(fmt.Sprintf("| Losses | %d |\n", r.Losses))
	sb.WriteString(fmt.Sprintf("| Expired | %d |\n", r.Expired))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", r.WinRate))
	sb.WriteString(fmt.Sprintf("| Total PnL | %.4f |\n", r.TotalPnL))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Wins | %d |\n", r.MaxConsecutiveWins))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Losses | %d |\n", r.MaxConsecutiveLosses))
	sb.WriteString("\n")

	sb.WriteString("## Trades\n\n")
	if len(r.Setups) > 0 {
		sb.WriteString("| Asset | Direction | State | Entry | Stop | Target | PnL |\n")
		sb.WriteString("|-------|-----------|-------|-------|------|--------|-----|\n")
		for _, s := range r.Setups {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.4f | %.4f | %.4f | %.4f |\n",
				s.Asset, s.SweepDirection, s.State,
				s.EntryPrice, s.StopPrice, s.TargetPrice, s.PnL))
		}
	} else {
		sb.WriteString("No setups completed.\n")
	}
	sb.WriteString("\n")

	if len(r.SweepSummaries) > 0 {
		sb.WriteString("## Sweep Rankings\n\n")
		sb.WriteString("| Config | Score | Filled | WinRate | PnL |\n")
		sb.WriteString("|--------|-------|--------|---------|-----|\n")
		for _, s := range r.SweepSummaries {
			sb.WriteString(fmt.Sprintf("| `%s` | %.2f | %d | %.4f | %.4f |\n",
				s.ConfigID, s.Score, s.Filled, s.WinRate, s.TotalPnL))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
