package report

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// New creates a report with version and timestamp filled in.
func New() *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewBatch creates an empty batch report for the given style.
func NewBatch(styleName string) *Batch {
	return &Batch{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Style:       styleName,
	}
}

// Add appends one conversion's report and folds it into the stats.
func (b *Batch) Add(r Report) {
	b.Reports = append(b.Reports, r)
	b.Stats.TotalImages++
	b.Stats.TotalInputBytes += r.Source.Size
	b.Stats.TotalOutputBytes += r.Output.Size
	if strings.Contains(r.Style, "→") {
		b.Stats.Fallbacks++
	}
}

// WriteJSON serializes v (a Report or Batch) to an indented JSON file.
func WriteJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
