package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnyUserName/epdimg/internal/convert"
	"github.com/AnyUserName/epdimg/internal/epng"
	"github.com/AnyUserName/epdimg/internal/hasher"
	"github.com/AnyUserName/epdimg/internal/quant"
	"github.com/AnyUserName/epdimg/internal/raster"
	"github.com/AnyUserName/epdimg/internal/report"
	"github.com/AnyUserName/epdimg/internal/resample"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loaded is a decoded input image in core buffer form.  Lum is always
// set; RGB only when the source carried color.
type Loaded struct {
	Lum    *raster.Gray
	RGB    *raster.RGB
	Format string
	Size   int64
}

// Load decodes an image file into core buffers.  PNG goes through the
// restricted first-principles decoder; everything else through the
// imaging loader and the stdlib/x-image format registry.
func Load(path string) (*Loaded, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".png" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, err := epng.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return &Loaded{Lum: img.Lum, RGB: img.RGB, Format: "png", Size: info.Size()}, nil
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rgb := raster.FromImage(img)
	format := strings.TrimPrefix(ext, ".")
	if format == "jpg" {
		format = "jpeg"
	}
	return &Loaded{Lum: rgb.Gray(), RGB: rgb, Format: format, Size: info.Size()}, nil
}

// processResult holds the outcome of one conversion.
type processResult struct {
	key    string
	report report.Report
	err    error
}

// processImage converts one source file to a monochrome device PNG and
// builds its report.
func processImage(src Source, cfg Config, warnf convert.WarnFunc) processResult {
	result := processResult{key: src.Key}
	start := time.Now()

	loaded, err := Load(src.AbsPath)
	if err != nil {
		result.err = err
		return result
	}

	fitted := resample.FitGray(loaded.Lum, cfg.Width, cfg.Height)
	res := convert.Run(fitted, cfg.Style, warnf)

	flips := 0
	if cfg.Despeckle {
		flips = quant.Despeckle(res.Bits)
		res.BlackRatio = convert.BlackRatio(res.Bits)
	}

	data, err := epng.EncodeMono(res.Bits)
	if err != nil {
		result.err = fmt.Errorf("encode %s: %w", src.RelPath, err)
		return result
	}

	// Content-addressed output name: <key>.<w>x<h>.<hash8>.png
	contentHash := hasher.ContentHash(data, 16)
	fileName := fmt.Sprintf("%s.%dx%d.%s.png",
		filepath.Base(src.Key), cfg.Width, cfg.Height, contentHash[:8])
	keyDir := filepath.Dir(src.Key)
	if keyDir != "." {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, keyDir), 0o755); err != nil {
			result.err = err
			return result
		}
	}
	relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, relPath), data, 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", relPath, err)
		return result
	}

	r := report.New()
	r.Source = report.SourceInfo{
		Path:   src.RelPath,
		Width:  loaded.Lum.W,
		Height: loaded.Lum.H,
		Format: src.Format,
		Size:   src.Size,
	}
	r.Output = report.OutputInfo{
		Path:   relPath,
		Width:  cfg.Width,
		Height: cfg.Height,
		Depth:  "mono1",
		Size:   int64(len(data)),
		Hash:   contentHash,
	}
	r.Style = res.StyleName
	r.Mode = cfg.Style.Mode.String()
	r.BlackRatio = res.BlackRatio
	r.Threshold = res.Threshold
	r.Attempts = res.Attempts
	r.DespeckleFlips = flips
	r.ElapsedMS = time.Since(start).Milliseconds()

	result.report = *r
	return result
}
