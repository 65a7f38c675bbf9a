package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/AnyUserName/epdimg/internal/epng"
	"github.com/AnyUserName/epdimg/internal/report"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <png_or_report>",
	Short: "Show the chunk layout of a PNG or the contents of a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".json") {
		return inspectReport(data)
	}
	return inspectPNG(path, data)
}

func inspectPNG(path string, data []byte) error {
	w, h, colorType, chunks, err := epng.Inspect(data)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  File:       %s (%d bytes)\n", path, len(data))
	fmt.Printf("  Dimensions: %dx%d\n", w, h)
	fmt.Printf("  Color type: %d (%s)\n", colorType, colorTypeName(colorType))
	fmt.Println()
	fmt.Println("  Chunks:")
	for _, c := range chunks {
		fmt.Printf("    %-4s  %8d bytes\n", c.Type, c.Len)
	}
	fmt.Println()
	return nil
}

func colorTypeName(ct byte) string {
	switch ct {
	case 0:
		return "grayscale"
	case 2:
		return "truecolor"
	case 3:
		return "indexed"
	case 4:
		return "grayscale+alpha"
	case 6:
		return "truecolor+alpha"
	default:
		return "unknown"
	}
}

func inspectReport(data []byte) error {
	// A batch report carries a "reports" array; a single report does not.
	var probe struct {
		Reports []json.RawMessage `json:"reports"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	if probe.Reports != nil {
		var b report.Batch
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("parse batch report: %w", err)
		}
		fmt.Println()
		fmt.Printf("  Batch report (version %d, generated %s)\n", b.Version, b.GeneratedAt)
		fmt.Printf("  Style:  %s\n", b.Style)
		fmt.Printf("  Images: %d (%d failed, %d fallbacks)\n",
			b.Stats.TotalImages, b.Stats.Failed, b.Stats.Fallbacks)
		fmt.Println()
		for _, r := range b.Reports {
			fmt.Printf("    %-40s %-12s black %.3f  %d attempt(s)\n",
				r.Source.Path, r.Style, r.BlackRatio, r.Attempts)
		}
		fmt.Println()
		return nil
	}

	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}
	fmt.Println()
	fmt.Printf("  Report (version %d, generated %s)\n", r.Version, r.GeneratedAt)
	fmt.Printf("  Source:   %s (%dx%d %s, %d bytes)\n",
		r.Source.Path, r.Source.Width, r.Source.Height, r.Source.Format, r.Source.Size)
	fmt.Printf("  Output:   %s (%dx%d %s, %d bytes, hash %s)\n",
		r.Output.Path, r.Output.Width, r.Output.Height, r.Output.Depth, r.Output.Size, r.Output.Hash)
	fmt.Printf("  Style:    %s (%s)\n", r.Style, r.Mode)
	if r.Output.Depth == "mono1" {
		fmt.Printf("  Black:    %.3f", r.BlackRatio)
		if r.Threshold >= 0 {
			fmt.Printf("  (threshold %d)", r.Threshold)
		}
		fmt.Println()
		fmt.Printf("  Attempts: %d, despeckle flips %d\n", r.Attempts, r.DespeckleFlips)
	}
	fmt.Printf("  Elapsed:  %d ms\n", r.ElapsedMS)
	fmt.Println()
	return nil
}
