// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Stage counts, relance badge and dormant prospects at a glance
package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

// DormantDays is how long a prospect may go without any action before the
// dashboard lists it.
const DormantDays = 30

type DashboardStats struct {
	Stages         []StageCount
	TotalProspects int
	Relances       []crm.Alert
	Dormant        []DormantProspect
}

type StageCount struct {
	Stage models.Stage
	Count int
}

type DormantProspect struct {
	Name      string
	DaysSince int
}

// DashboardFromBoard derives the dashboard from board columns and the
// current relances.
func DashboardFromBoard(cols []crm.Column, alerts []crm.Alert, now time.Time) *DashboardStats {
	stats := &DashboardStats{Relances: alerts}
	for _, col := range cols {
		stats.Stages = append(stats.Stages, StageCount{Stage: col.Stage, Count: len(col.Prospects)})
		stats.TotalProspects += len(col.Prospects)
		if col.Stage.Terminal() {
			continue
		}
		for _, p := range col.Prospects {
			if days := crm.DaysElapsed(p.LastActionDate, now); days > DormantDays {
				stats.Dormant = append(stats.Dormant, DormantProspect{Name: p.CompanyName, DaysSince: days})
			}
		}
	}
	return stats
}

func RenderDashboard(stats *DashboardStats, plain bool) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  PROSPECTA PIPELINE\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE\n")
	renderStages(&out, stats.Stages, plain)
	out.WriteString("\n")

	out.WriteString(fmt.Sprintf("  %d prospects\n\n", stats.TotalProspects))

	if len(stats.Relances) > 0 || len(stats.Dormant) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.Relances) > 0 {
			out.WriteString(fmt.Sprintf("  ⏰ %d samples waiting for feedback\n", len(stats.Relances)))
		}
		if len(stats.Dormant) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d prospects - no action in %d+ days\n", len(stats.Dormant), DormantDays))
		}
	}
	return out.String()
}

func renderStages(out *strings.Builder, stages []StageCount, plain bool) {
	maxCount := 1
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	for _, s := range stages {
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		label := s.Stage.Label()
		if plain {
			label = s.Stage.PlainLabel()
		}
		out.WriteString(fmt.Sprintf("  %-22s %s  %2d\n", label, bar, s.Count))
	}
}
