package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnyUserName/epdimg/internal/convert"
	"github.com/AnyUserName/epdimg/internal/epng"
	"github.com/AnyUserName/epdimg/internal/hasher"
	"github.com/AnyUserName/epdimg/internal/pipeline"
	"github.com/AnyUserName/epdimg/internal/quant"
	"github.com/AnyUserName/epdimg/internal/raster"
	"github.com/AnyUserName/epdimg/internal/report"
	"github.com/AnyUserName/epdimg/internal/resample"
	"github.com/AnyUserName/epdimg/internal/style"
	"github.com/spf13/cobra"
)

var (
	convertWidth     int
	convertHeight    int
	convertStyle     string
	convertPalette   string
	convertGray4     bool
	convertOut       string
	convertReport    string
	convertDespeckle bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input_image>",
	Short: "Convert one image to a device-ready e-paper PNG",
	Long: `Decodes the input (PNG via the built-in restricted decoder; JPEG,
WebP, BMP, TIFF, GIF via the standard loaders), center-crops and
resizes it to the device geometry, then quantizes it:

  default      monochrome via the selected style (1-bit packed PNG)
  --gray4      flat 4-level grayscale (8-bit gray PNG)
  --palette    Floyd-Steinberg dither to a color palette (indexed PNG)`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().IntVarP(&convertWidth, "width", "W", 800, "device width in pixels")
	convertCmd.Flags().IntVarP(&convertHeight, "height", "H", 480, "device height in pixels")
	convertCmd.Flags().StringVarP(&convertStyle, "style", "s", "photo", "conversion style (see 'epdimg styles')")
	convertCmd.Flags().StringVar(&convertPalette, "palette", "", `color palette: "acep6" or RRGGBB,RRGGBB,...`)
	convertCmd.Flags().BoolVar(&convertGray4, "gray4", false, "emit flat 4-level 8-bit grayscale instead of monochrome")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output path (default <input>.epd.png)")
	convertCmd.Flags().StringVar(&convertReport, "report", "", "write a JSON conversion report to this path")
	convertCmd.Flags().BoolVar(&convertDespeckle, "despeckle", true, "morphological cleanup of monochrome output")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(_ *cobra.Command, args []string) error {
	inPath := args[0]
	start := time.Now()

	if convertWidth <= 0 || convertHeight <= 0 {
		return fmt.Errorf("invalid device geometry %dx%d", convertWidth, convertHeight)
	}
	if convertGray4 && convertPalette != "" {
		return fmt.Errorf("--gray4 and --palette are mutually exclusive")
	}

	loaded, err := pipeline.Load(inPath)
	if err != nil {
		return err
	}
	logVerbose("input: %s (%dx%d %s)", inPath, loaded.Lum.W, loaded.Lum.H, loaded.Format)

	outPath := convertOut
	if outPath == "" {
		ext := filepath.Ext(inPath)
		outPath = strings.TrimSuffix(inPath, ext) + ".epd.png"
	}

	r := report.New()
	r.Source = report.SourceInfo{
		Path:   inPath,
		Width:  loaded.Lum.W,
		Height: loaded.Lum.H,
		Format: loaded.Format,
		Size:   loaded.Size,
	}
	r.Threshold = -1

	var data []byte
	switch {
	case convertPalette != "":
		pal, err := resolvePalette(convertPalette)
		if err != nil {
			return err
		}
		rgb := loaded.RGB
		if rgb == nil {
			rgb = grayToRGB(loaded.Lum)
		}
		fitted := resample.FitRGB(rgb, convertWidth, convertHeight)
		idx := quant.Diffuse(fitted, pal)
		data, err = epng.EncodeIndexed(idx, pal)
		if err != nil {
			return err
		}
		r.Style = "palette"
		r.Mode = "error-diffusion"
		r.Output.Depth = "indexed8"
		r.Attempts = 1

	case convertGray4:
		fitted := resample.FitGray(loaded.Lum, convertWidth, convertHeight)
		levels := quant.Flat4(fitted)
		data, err = epng.EncodeGray(levels)
		if err != nil {
			return err
		}
		r.Style = "gray4"
		r.Mode = "flat-quantize"
		r.Output.Depth = "gray8"
		r.Attempts = 1

	default:
		spec := style.Get(convertStyle)
		fitted := resample.FitGray(loaded.Lum, convertWidth, convertHeight)
		res := convert.Run(fitted, spec, warnf)

		flips := 0
		if convertDespeckle {
			flips = quant.Despeckle(res.Bits)
			res.BlackRatio = convert.BlackRatio(res.Bits)
		}
		logVerbose("style: %s, black ratio %.3f, %d attempt(s), %d despeckle flip(s)",
			res.StyleName, res.BlackRatio, res.Attempts, flips)

		data, err = epng.EncodeMono(res.Bits)
		if err != nil {
			return err
		}
		r.Style = res.StyleName
		r.Mode = spec.Mode.String()
		r.BlackRatio = res.BlackRatio
		r.Threshold = res.Threshold
		r.Attempts = res.Attempts
		r.DespeckleFlips = flips
		r.Output.Depth = "mono1"
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	r.Output.Path = outPath
	r.Output.Width = convertWidth
	r.Output.Height = convertHeight
	r.Output.Size = int64(len(data))
	r.Output.Hash = hasher.ContentHash(data, 16)
	r.ElapsedMS = time.Since(start).Milliseconds()

	if convertReport != "" {
		if err := report.WriteJSON(r, convertReport); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	fmt.Printf("  %s → %s (%dx%d %s, %d bytes, %s)\n",
		inPath, outPath, convertWidth, convertHeight, r.Output.Depth,
		len(data), time.Since(start).Round(time.Millisecond))
	if r.Output.Depth == "mono1" {
		fmt.Printf("  style %s, black ratio %.3f\n", r.Style, r.BlackRatio)
	}
	return nil
}

// resolvePalette maps a named palette or parses an explicit hex list.
func resolvePalette(s string) (raster.Palette, error) {
	if s == "acep6" {
		return raster.ACeP6, nil
	}
	return raster.ParsePalette(s)
}

func grayToRGB(g *raster.Gray) *raster.RGB {
	out := raster.NewRGB(g.W, g.H)
	for i, p := range g.Pix {
		out.Pix[i*3] = p
		out.Pix[i*3+1] = p
		out.Pix[i*3+2] = p
	}
	return out
}
