package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/taskboard/internal/task"
)

// Format is a supported export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DefaultPath returns ~/taskboard-YYYYMMDD-HHMMSS.<format>.
func DefaultPath(f Format, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, Filename(f, now)), nil
}

func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("taskboard-%s.%s", now.Format("20060102-150405"), f)
}

// Write exports tasks to path in format f, rendering times in loc.
func Write(f Format, tasks []task.Task, now time.Time, loc *time.Location, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(tasks, now, loc, path)
	case FormatJSON:
		return ToJSON(tasks, now, loc, path)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
