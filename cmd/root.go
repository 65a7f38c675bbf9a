package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "epdimg",
	Short: "Image converter for e-paper display panels",
	Long: `epdimg — turns arbitrary raster images into the exact PNG pixel
formats an e-paper panel accepts: packed 1-bit monochrome, banded
8-bit grayscale, or palette-indexed color for ACeP-class panels.

Tone mapping, dithering and adaptive thresholding are tuned per style,
with a bounded retry and a guardrail preset so every valid input
produces an in-range, device-ready frame.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"epdimg %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[epdimg] "+format+"\n", args...)
	}
}

// warnf always reaches stderr; quantization diagnostics should not
// depend on --verbose.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[epdimg] warn: "+format+"\n", args...)
}
