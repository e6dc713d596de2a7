package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/taskboard/internal/task"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID          int64  `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	PlannedSec  int64  `json:"planned_seconds"`
	Planned     string `json:"planned"`
	Overdue     bool   `json:"overdue"`
}

func ToJSON(tasks []task.Task, now time.Time, loc *time.Location, path string) error {
	loc = orLocal(loc)
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		secs := int64(t.EndAt.Sub(t.StartAt).Seconds())
		export.Tasks = append(export.Tasks, jsonTask{
			ID:          t.ID,
			Text:        t.Text,
			Description: t.Description,
			Status:      string(t.Status),
			StartAt:     t.StartAt.In(loc).Format(time.RFC3339),
			EndAt:       t.EndAt.In(loc).Format(time.RFC3339),
			PlannedSec:  secs,
			Planned:     formatDuration(secs),
			Overdue:     task.IsOverdue(t, now),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
