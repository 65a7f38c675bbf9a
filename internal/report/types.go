// Package report defines the JSON diagnostics written alongside
// converted images: what went in, what came out, which style actually
// produced it, and how the quantization landed.
package report

// Report describes one completed conversion.
type Report struct {
	Version     int        `json:"version"`
	GeneratedAt string     `json:"generated_at"`
	Source      SourceInfo `json:"source"`
	Output      OutputInfo `json:"output"`
	// Style is the style actually used; a composed chain such as
	// "photo→safe" records a guardrail fallback.
	Style string `json:"style"`
	Mode  string `json:"mode"`
	// BlackRatio is the measured black-pixel fraction of the output.
	// Meaningful for monochrome output only.
	BlackRatio float64 `json:"black_ratio"`
	// Threshold is the adaptive threshold used, or -1 for ordered
	// dither and palette output.
	Threshold      int   `json:"threshold"`
	Attempts       int   `json:"attempts"`
	DespeckleFlips int   `json:"despeckle_flips"`
	ElapsedMS      int64 `json:"elapsed_ms"`
}

// SourceInfo holds metadata about the input image.
type SourceInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// OutputInfo holds metadata about the encoded PNG.
type OutputInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Depth is the encoded pixel format: "mono1", "gray8" or "indexed8".
	Depth string `json:"depth"`
	Size  int64  `json:"size"`
	// Hash is the first 16 hex chars of the output's xxHash64.
	Hash string `json:"hash"`
}

// Batch aggregates the reports of one directory run.
type Batch struct {
	Version     int      `json:"version"`
	GeneratedAt string   `json:"generated_at"`
	Style       string   `json:"style"`
	Reports     []Report `json:"reports"`
	Stats       Stats    `json:"stats"`
}

// Stats summarizes a batch.
type Stats struct {
	TotalImages      int   `json:"total_images"`
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	// Fallbacks counts conversions that ended on the guardrail preset.
	Fallbacks int `json:"fallbacks"`
	Failed    int `json:"failed"`
}

// SupportedVersion is the current report schema version.
const SupportedVersion = 1
