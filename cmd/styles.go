package cmd

import (
	"fmt"

	"github.com/AnyUserName/epdimg/internal/style"
	"github.com/spf13/cobra"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List built-in conversion styles",
	Args:  cobra.NoArgs,
	RunE:  runStyles,
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}

func runStyles(_ *cobra.Command, _ []string) error {
	fmt.Println()
	fmt.Printf("  %-11s %-19s %8s %6s %12s %7s\n",
		"name", "mode", "contrast", "gamma", "band", "target")
	for _, s := range style.All() {
		printStyle(s)
	}
	fmt.Println()
	fmt.Println("  Guardrail fallback:")
	printStyle(style.Safe)
	fmt.Println()
	return nil
}

func printStyle(s style.Spec) {
	target := "-"
	if s.Mode == style.AdaptiveThreshold {
		target = fmt.Sprintf("%.2f", s.TargetBlackPct)
	}
	fmt.Printf("  %-11s %-19s %8.2f %6.2f [%.2f, %.2f] %7s\n",
		s.Name, s.Mode, s.Contrast, s.Gamma, s.BlackMin, s.BlackMax, target)
}
