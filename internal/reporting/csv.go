package reporting

import (
	"fmt"
	"strings"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/sweep"
)

// RenderTradesCSV renders completed setups as a CSV string. The column
// set is stable; downstream tooling parses it by name.
func RenderTradesCSV(setups []*domain.TradeSetup) string {
	var sb strings.Builder

	sb.WriteString("asset,sweep_direction,ppi_time,sweep_time,bos_time,fill_time,outcome_time,")
	sb.WriteString("entry_price,stop_price,target_price,state,pnl\n")

	for _, s := range setups {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%d,%d,%.6f,%.6f,%.6f,%s,%.6f\n",
			s.Asset,
			s.SweepDirection,
			s.PPITimeMs,
			s.SweepTimeMs,
			s.BOSTimeMs,
			s.FillTimeMs,
			s.OutcomeTimeMs,
			s.EntryPrice,
			s.StopPrice,
			s.TargetPrice,
			s.State,
			s.PnL,
		))
	}

	return sb.String()
}

// RenderSweepCSV renders ranked sweep summaries as a CSV string.
func RenderSweepCSV(summaries []sweep.Summary) string {
	var sb strings.Builder

	sb.WriteString("config_id,score,total,filled,wins,losses,expired,win_rate,total_pnl,")
	sb.WriteString("max_consecutive_wins,max_consecutive_losses\n")

	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("%s,%.4f,%d,%d,%d,%d,%d,%.6f,%.6f,%d,%d\n",
			s.ConfigID,
			s.Score,
			s.Total,
			s.Filled,
			s.Wins,
			s.Losses,
			s.Expired,
			s.WinRate,
			s.TotalPnL,
			s.MaxConsecutiveWins,
			s.MaxConsecutiveLosses,
		))
	}

	return sb.String()
}
