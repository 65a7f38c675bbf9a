package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/epdimg/internal/epng"
	"github.com/AnyUserName/epdimg/internal/raster"
	"github.com/AnyUserName/epdimg/internal/style"
)

// writeGrayPNG drops a synthetic grayscale fixture into dir.
func writeGrayPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	g := raster.NewGray(w, h)
	for i := range g.Pix {
		g.Pix[i] = byte(i * 13)
	}
	data, err := epng.EncodeGray(g)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanImages(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, dir, "a.png", 8, 8)
	writeGrayPNG(t, dir, "sub/b.png", 8, 8)
	writeGrayPNG(t, dir, ".hidden/c.png", 8, 8)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := ScanImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("found %d sources, want 2 (a.png, sub/b.png)", len(sources))
	}
	keys := map[string]bool{}
	for _, s := range sources {
		keys[s.Key] = true
		if s.Format != "png" {
			t.Errorf("source %s: format %q", s.Key, s.Format)
		}
		if s.Size == 0 {
			t.Errorf("source %s: zero size", s.Key)
		}
	}
	if !keys["a"] || !keys["sub/b"] {
		t.Errorf("keys: %v", keys)
	}
}

func TestLoadPNG(t *testing.T) {
	dir := t.TempDir()
	path := writeGrayPNG(t, dir, "in.png", 10, 6)

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Format != "png" {
		t.Errorf("format: got %q", loaded.Format)
	}
	if loaded.Lum.W != 10 || loaded.Lum.H != 6 {
		t.Errorf("dimensions: got %dx%d", loaded.Lum.W, loaded.Lum.H)
	}
	if loaded.RGB != nil {
		t.Error("grayscale PNG should not produce an RGB buffer")
	}
}

func TestPipelineRun(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeGrayPNG(t, inDir, "one.png", 64, 64)
	writeGrayPNG(t, inDir, "nested/two.png", 48, 80)

	p := New(Config{
		InputDir:  inDir,
		OutputDir: outDir,
		Width:     32,
		Height:    24,
		Style:     style.Get("photo"),
		Despeckle: true,
		Workers:   2,
	})
	b, err := p.Run()
	if err != nil {
		t.Fatal(err)
	}

	if b.Stats.TotalImages != 2 {
		t.Fatalf("converted %d images, want 2", b.Stats.TotalImages)
	}
	if b.Stats.Failed != 0 {
		t.Fatalf("%d failures", b.Stats.Failed)
	}

	for _, r := range b.Reports {
		if r.Output.Depth != "mono1" {
			t.Errorf("%s: depth %q", r.Source.Path, r.Output.Depth)
		}
		if r.Output.Width != 32 || r.Output.Height != 24 {
			t.Errorf("%s: output %dx%d", r.Source.Path, r.Output.Width, r.Output.Height)
		}
		if r.Attempts < 1 || r.Attempts > 3 {
			t.Errorf("%s: attempts %d", r.Source.Path, r.Attempts)
		}

		outPath := filepath.Join(outDir, r.Output.Path)
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Errorf("%s: output missing: %v", r.Source.Path, err)
			continue
		}
		img, err := epng.Decode(data)
		if err != nil {
			t.Errorf("%s: output not decodable: %v", r.Source.Path, err)
			continue
		}
		if img.Lum.W != 32 || img.Lum.H != 24 {
			t.Errorf("%s: decoded %dx%d", r.Source.Path, img.Lum.W, img.Lum.H)
		}
		for _, p := range img.Lum.Pix {
			if p > 1 {
				t.Errorf("%s: non-binary pixel %d in mono output", r.Source.Path, p)
				break
			}
		}
	}
}

func TestPipelineEmptyDir(t *testing.T) {
	p := New(Config{InputDir: t.TempDir(), OutputDir: t.TempDir(),
		Width: 8, Height: 8, Style: style.Get("photo")})
	if _, err := p.Run(); err == nil {
		t.Error("empty input dir should fail")
	}
}
