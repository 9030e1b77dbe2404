package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/model"
)

const barWidth = 20

// Bar draws a fixed-width meter for a 0-100 percentage.
func Bar(pct float64, width int) string {
	if width <= 0 {
		width = barWidth
	}
	if pct < 0 || pct != pct {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct/100*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatDelta renders a change in score with an arrow, or "" for nil.
func FormatDelta(delta *int) string {
	if delta == nil {
		return ""
	}
	switch {
	case *delta > 0:
		return SuccessStyle.Render(fmt.Sprintf("%s %d", UpIcon, *delta))
	case *delta < 0:
		return ErrorStyle.Render(fmt.Sprintf("%s %d", DownIcon, -*delta))
	default:
		return SubtleStyle.Render("no change")
	}
}

// RenderScoreCard renders a full score breakdown for the terminal.
func RenderScoreCard(userID string, r health.Result) string {
	var b strings.Builder

	headline := LevelStyle(r.Level).Render(fmt.Sprintf("%d / %d", r.Total, health.MaxScore))
	level := LevelStyle(r.Level).Render(fmt.Sprintf("Level %d · %s", r.Level, r.LevelTitle))
	b.WriteString(headline + "  " + level)
	if delta := FormatDelta(r.Delta()); delta != "" {
		b.WriteString("  " + delta)
	}
	b.WriteString("\n")

	for _, p := range r.Pillars() {
		b.WriteString("\n")
		b.WriteString(BoldStyle.Render(fmt.Sprintf("%-12s %3d / %d", pillarLabel(p.Name), p.Score, p.Max)))
		b.WriteString("\n")
		for _, f := range p.SubFactors {
			pct := PercentStyle(f.Percentage)
			fmt.Fprintf(&b, "  %-22s %s %s  %s\n",
				f.Name.Label(),
				pct.Render(Bar(f.Percentage, barWidth)),
				pct.Render(fmt.Sprintf("%3d/%-3d", f.Score, f.Max)),
				SubtleStyle.Render(f.Detail))
		}
	}

	if len(r.Tips) > 0 {
		b.WriteString("\n")
		b.WriteString(BoldStyle.Render(TipIcon + " Where to gain points"))
		b.WriteString("\n")
		for _, tip := range r.Tips {
			fmt.Fprintf(&b, "  %s %s\n    %s\n",
				InfoStyle.Render(fmt.Sprintf("+%d", tip.Opportunity)),
				tip.Title,
				SubtleStyle.Render(tip.Message))
		}
	}

	if missing := r.Completeness.Missing(); len(missing) > 0 {
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render("Missing data: " + strings.Join(missing, ", ")))
	}

	return RenderBox(ChartIcon+" Financial Health Score · "+userID, strings.TrimRight(b.String(), "\n"))
}

func pillarLabel(p health.PillarName) string {
	switch p {
	case health.PillarTrajectory:
		return "Trajectory"
	case health.PillarBehavior:
		return "Behavior"
	case health.PillarPosition:
		return "Position"
	}
	return string(p)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a single line of block characters scaled to the
// 0-1000 score range.
func Sparkline(values []int) string {
	runes := make([]rune, len(values))
	top := len(sparkRunes) - 1
	for i, v := range values {
		if v < 0 {
			v = 0
		}
		if v > health.MaxScore {
			v = health.MaxScore
		}
		runes[i] = sparkRunes[v*top/health.MaxScore]
	}
	return string(runes)
}

// RenderHistory renders stored scores, given newest first, as a trend line
// followed by one row per day.
func RenderHistory(userID string, records []model.ScoreHistoryRecord) string {
	if len(records) == 0 {
		return FormatInfo("No score history for " + userID + " yet. Run: spice score --user " + userID)
	}

	totals := make([]int, len(records))
	for i, rec := range records {
		totals[len(records)-1-i] = rec.Total
	}

	var b strings.Builder
	b.WriteString(ProgressStyle.Render(Sparkline(totals)))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-10s  %5s  %-20s  %4s  %4s  %4s  %6s", "Date", "Score", "Level", "Traj", "Beh", "Pos", "Change")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i, rec := range records {
		change := ""
		if i+1 < len(records) {
			delta := rec.Total - records[i+1].Total
			change = FormatDelta(&delta)
		}
		fmt.Fprintf(&b, "%-10s  %s  %-20s  %4d  %4d  %4d  %s\n",
			rec.ScoredDate,
			LevelStyle(rec.Level).Render(fmt.Sprintf("%5d", rec.Total)),
			rec.LevelTitle,
			rec.Trajectory, rec.Behavior, rec.Position,
			change)
	}

	return RenderBox(ChartIcon+" Score history · "+userID, strings.TrimRight(b.String(), "\n"))
}

// RenderDebts lists debts as the scorer sees them.
func RenderDebts(debts []health.NormalizedDebt) string {
	if len(debts) == 0 {
		return FormatInfo("No debts on record.")
	}

	rows := make([]string, 0, len(debts)+1)
	rows = append(rows, TableHeaderStyle.Render(fmt.Sprintf("%-20s  %-24s  %10s  %9s  %-9s  %6s", "Name", "Scored as", "Balance", "Payment", "Source", "Weight")))
	for _, d := range debts {
		scoredAs := string(d.Type)
		if d.Reclassified {
			scoredAs += WarningStyle.Render(" (was " + string(d.StoredType) + ")")
		}
		source := string(d.PaymentSource)
		if d.PaymentSource != health.PaymentActual {
			source = SubtleStyle.Render(source)
		}
		name := d.Name
		if d.InCollections {
			name = ErrorStyle.Render(name + " !")
		}
		rows = append(rows, fmt.Sprintf("%-20s  %-24s  %10.2f  %9.2f  %-9s  %6.1f",
			name, scoredAs, d.Balance, d.MonthlyPayment, source, health.VelocityWeight(d.Type)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
