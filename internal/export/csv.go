package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/taskboard/internal/task"
)

// ToCSV writes one row per task. Timestamps are RFC3339 in loc; a nil loc
// means time.Local.
func ToCSV(tasks []task.Task, now time.Time, loc *time.Location, path string) error {
	loc = orLocal(loc)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Text", "Description", "Status", "Start", "End", "Planned", "Overdue"}); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.Text,
			t.Description,
			t.Status.Label(),
			t.StartAt.In(loc).Format(time.RFC3339),
			t.EndAt.In(loc).Format(time.RFC3339),
			formatDuration(int64(t.EndAt.Sub(t.StartAt).Seconds())),
			fmt.Sprintf("%t", task.IsOverdue(t, now)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatDuration renders seconds as HH:MM:SS. Negative spans (an end set
// before the start) keep their sign.
func formatDuration(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
