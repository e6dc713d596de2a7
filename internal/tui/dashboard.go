package tui

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskboard/internal/metrics"
	"github.com/sadopc/taskboard/internal/task"
)

type dashboardModel struct {
	width  int
	height int

	window  metrics.Window
	summary metrics.Summary
	series  []metrics.Bucket

	chart barchart.Model
}

func newDashboardModel(w metrics.Window) dashboardModel {
	return dashboardModel{
		window: w,
		chart:  barchart.New(60, 12),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *dashboardModel) cycleWindow() {
	d.window = d.window.Next()
}

// load recomputes the summary and series. Overdue depends on now, so
// this also runs on every tick.
func (d *dashboardModel) load(tasks []task.Task, now time.Time, loc *time.Location) {
	d.summary = metrics.Summarize(tasks, now)
	d.series = metrics.Series(tasks, d.window, now, loc)
	d.buildChart()
}

func (d *dashboardModel) buildChart() {
	chartWidth := d.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if d.height > 30 {
		chartHeight = 16
	}

	d.chart = barchart.New(chartWidth, chartHeight)

	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	bars := make([]barchart.BarData, 0, len(d.series))
	for _, b := range d.series {
		bars = append(bars, barchart.BarData{
			Label: b.Day.Format("01-02"),
			Values: []barchart.BarValue{{
				Name:  b.Label(),
				Value: float64(b.Count),
				Style: barStyle,
			}},
		})
	}

	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		summaryCard("Total", d.summary.Total, colorHighlight),
		summaryCard("In Progress", d.summary.InProgress, colorSecondary),
		summaryCard("Done", d.summary.Done, colorSuccess),
		summaryCard("Overdue", d.summary.Overdue, colorError),
	)

	var windowTabs []string
	for _, win := range metrics.Windows {
		if win == d.window {
			windowTabs = append(windowTabs, activeTabStyle.Render(string(win)))
		} else {
			windowTabs = append(windowTabs, inactiveTabStyle.Render(string(win)))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Tasks per day"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, windowTabs...),
	)

	chart := mutedStyle.Render("  No tasks yet")
	if len(d.series) > 0 {
		first, last := d.series[0], d.series[len(d.series)-1]
		chart = lipgloss.JoinVertical(lipgloss.Left,
			d.chart.View(),
			mutedStyle.Render(fmt.Sprintf("  %s — %s  (%d days with tasks)", first.Label(), last.Label(), len(d.series))),
		)
	}

	nav := mutedStyle.Render("  w: cycle window")

	return lipgloss.JoinVertical(lipgloss.Left,
		cards,
		panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", chart, "", nav)),
	)
}

func summaryCard(label string, n int, c lipgloss.Color) string {
	value := lipgloss.NewStyle().Bold(true).Foreground(c).Render(fmt.Sprintf("%d", n))
	return panelStyle.Width(18).Render(lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), value))
}
