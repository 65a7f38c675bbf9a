// Package style defines the named visual treatments a conversion can
// request.  A Spec is immutable once constructed: the orchestrator
// derives adjusted copies, it never mutates one.
package style

import "fmt"

// Mode selects the quantizer a style drives.
type Mode int

const (
	// OrderedDither runs the Bayer 8×8 matrix after the tone curve.
	OrderedDither Mode = iota
	// AdaptiveThreshold picks a histogram threshold after the tone curve.
	AdaptiveThreshold
)

func (m Mode) String() string {
	switch m {
	case OrderedDither:
		return "ordered-dither"
	case AdaptiveThreshold:
		return "adaptive-threshold"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Spec is one named conversion treatment.  BlackMin/BlackMax bound the
// acceptable black-pixel ratio of the quantized result.  TargetBlackPct
// is meaningful only in AdaptiveThreshold mode and is zero otherwise;
// the two constructors keep the invariants (min ≤ max, sane ranges)
// checked before a Spec can enter the pipeline.
type Spec struct {
	Name     string
	Mode     Mode
	Contrast float64
	Gamma    float64
	BlackMin float64
	BlackMax float64
	// TargetBlackPct is the starting black fraction the histogram walk
	// aims for. AdaptiveThreshold mode only.
	TargetBlackPct float64
}

// NewOrderedDither builds a validated ordered-dither style.
func NewOrderedDither(name string, contrast, gamma, blackMin, blackMax float64) (Spec, error) {
	s := Spec{
		Name:     name,
		Mode:     OrderedDither,
		Contrast: contrast,
		Gamma:    gamma,
		BlackMin: blackMin,
		BlackMax: blackMax,
	}
	return s, s.validate()
}

// NewAdaptiveThreshold builds a validated adaptive-threshold style.
func NewAdaptiveThreshold(name string, contrast, gamma, blackMin, blackMax, targetBlackPct float64) (Spec, error) {
	s := Spec{
		Name:           name,
		Mode:           AdaptiveThreshold,
		Contrast:       contrast,
		Gamma:          gamma,
		BlackMin:       blackMin,
		BlackMax:       blackMax,
		TargetBlackPct: targetBlackPct,
	}
	return s, s.validate()
}

func (s Spec) validate() error {
	if s.BlackMin > s.BlackMax {
		return fmt.Errorf("style %q: black band min %.3f > max %.3f", s.Name, s.BlackMin, s.BlackMax)
	}
	if s.BlackMin < 0 || s.BlackMax > 1 {
		return fmt.Errorf("style %q: black band [%.3f, %.3f] outside [0, 1]", s.Name, s.BlackMin, s.BlackMax)
	}
	if s.Contrast <= 0 {
		return fmt.Errorf("style %q: contrast %.3f must be positive", s.Name, s.Contrast)
	}
	if s.Gamma <= 0 {
		return fmt.Errorf("style %q: gamma %.3f must be positive", s.Name, s.Gamma)
	}
	if s.Mode == AdaptiveThreshold && (s.TargetBlackPct <= 0 || s.TargetBlackPct >= 1) {
		return fmt.Errorf("style %q: target black pct %.3f outside (0, 1)", s.Name, s.TargetBlackPct)
	}
	return nil
}

// WithTargetBlackPct returns a copy with a new threshold target.  Pure
// derivation; the receiver is unchanged.
func (s Spec) WithTargetBlackPct(pct float64) Spec {
	s.TargetBlackPct = pct
	return s
}

// WithGamma returns a copy with a new gamma.
func (s Spec) WithGamma(gamma float64) Spec {
	s.Gamma = gamma
	return s
}

func mustOrdered(name string, contrast, gamma, min, max float64) Spec {
	s, err := NewOrderedDither(name, contrast, gamma, min, max)
	if err != nil {
		panic(err)
	}
	return s
}

func mustAdaptive(name string, contrast, gamma, min, max, target float64) Spec {
	s, err := NewAdaptiveThreshold(name, contrast, gamma, min, max, target)
	if err != nil {
		panic(err)
	}
	return s
}

// Built-in styles.
var styles = map[string]Spec{
	"text":       mustAdaptive("text", 1.35, 1.00, 0.05, 0.30, 0.12),
	"poster":     mustAdaptive("poster", 1.10, 0.95, 0.18, 0.50, 0.30),
	"photo":      mustOrdered("photo", 1.00, 1.00, 0.12, 0.60),
	"photo-dark": mustOrdered("photo-dark", 1.05, 1.15, 0.20, 0.70),
}

// Safe is the guardrail preset: a fixed ordered-dither configuration
// every failed conversion falls back to, regardless of which mode
// failed.
var Safe = mustOrdered("safe", 1.20, 0.92, 0.15, 0.55)

// Get returns a built-in style by name.  Unknown names fall back to
// "photo", preserving the requested name for diagnostics.
func Get(name string) Spec {
	if s, ok := styles[name]; ok {
		return s
	}
	s := styles["photo"]
	s.Name = name
	return s
}

// Names lists the built-in style names in stable order.
func Names() []string {
	return []string{"text", "poster", "photo", "photo-dark"}
}

// All returns the built-in styles in Names order.
func All() []Spec {
	var out []Spec
	for _, n := range Names() {
		out = append(out, styles[n])
	}
	return out
}
