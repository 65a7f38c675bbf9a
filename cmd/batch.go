package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AnyUserName/epdimg/internal/pipeline"
	"github.com/AnyUserName/epdimg/internal/report"
	"github.com/AnyUserName/epdimg/internal/style"
	"github.com/spf13/cobra"
)

var (
	batchOutDir    string
	batchStyle     string
	batchWidth     int
	batchHeight    int
	batchWorkers   int
	batchDespeckle bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Convert a directory of images to monochrome e-paper PNGs",
	Long: `Scans the input directory for images (png, jpg, jpeg, webp, gif,
bmp, tiff), converts each to a 1-bit device PNG with the selected
style, and writes an aggregate JSON report.

Output filenames are content-addressed: <key>.<w>x<h>.<hash8>.png`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./epdimg_out", "output directory")
	batchCmd.Flags().StringVarP(&batchStyle, "style", "s", "photo", "conversion style (see 'epdimg styles')")
	batchCmd.Flags().IntVarP(&batchWidth, "width", "W", 800, "device width in pixels")
	batchCmd.Flags().IntVarP(&batchHeight, "height", "H", 480, "device height in pixels")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	batchCmd.Flags().BoolVar(&batchDespeckle, "despeckle", true, "morphological cleanup of each output")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(_ *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	spec := style.Get(batchStyle)
	logVerbose("input:  %s", absInput)
	logVerbose("output: %s", absOutput)
	logVerbose("style:  %s (%s, band [%.2f, %.2f])",
		spec.Name, spec.Mode, spec.BlackMin, spec.BlackMax)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Width:     batchWidth,
		Height:    batchHeight,
		Style:     spec,
		Despeckle: batchDespeckle,
		Workers:   batchWorkers,
		Verbose:   verbose,
	})

	b, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	reportPath := filepath.Join(absOutput, "epdimg.report.json")
	if err := report.WriteJSON(b, reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printBatchReport(b, time.Since(start))
	return nil
}

func printBatchReport(b *report.Batch, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("  Converted:   %d images\n", b.Stats.TotalImages)
	fmt.Printf("  Input size:  %s\n", formatBytes(b.Stats.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(b.Stats.TotalOutputBytes))
	if b.Stats.Fallbacks > 0 {
		fmt.Printf("  Fallbacks:   %d conversions ended on the guardrail preset\n", b.Stats.Fallbacks)
	}
	if b.Stats.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", b.Stats.Failed)
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()
	fmt.Println("  Report:      epdimg.report.json")
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
