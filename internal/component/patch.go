package component

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrValidation marks a patch holding malformed values.
var ErrValidation = errors.New("invalid patch")

// Object-fit modes an Image accepts.
const (
	FitContain = "contain"
	FitCover   = "cover"
	FitFill    = "fill"
	FitNone    = "none"
)

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Left            *float64
	Top             *float64
	Width           *float64
	Height          *float64
	ZIndex          *int
	BackgroundColor *string
	BorderColor     *string
	BorderRadius    *float64
	BorderWidth     *float64
	BoxShadow       *string
	Opacity         *float64
	Visible         *bool
	Locked          *bool

	Title           *string
	Content         *string
	HeaderBGColor   *string
	HeaderTextColor *string
	ContentColor    *string

	Src       *string
	Alt       *string
	ObjectFit *string
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// Geometry reports whether the patch moves or resizes.
func (p Patch) Geometry() bool {
	return p.Left != nil || p.Top != nil || p.Width != nil || p.Height != nil
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

// Validate rejects values no component can hold.
func (p Patch) Validate() error {
	finite := []struct {
		name string
		v    *float64
	}{
		{"left", p.Left},
		{"top", p.Top},
		{"width", p.Width},
		{"height", p.Height},
		{"borderRadius", p.BorderRadius},
		{"borderWidth", p.BorderWidth},
		{"opacity", p.Opacity},
	}
	for _, f := range finite {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return fmt.Errorf("%w: %s is not a number", ErrValidation, f.name)
		}
	}
	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"width", p.Width},
		{"height", p.Height},
		{"borderRadius", p.BorderRadius},
		{"borderWidth", p.BorderWidth},
	}
	for _, f := range nonNegative {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, f.name)
		}
	}
	if p.Opacity != nil && (*p.Opacity < 0 || *p.Opacity > 1) {
		return fmt.Errorf("%w: opacity %v outside 0..1", ErrValidation, *p.Opacity)
	}
	colors := []struct {
		name string
		v    *string
	}{
		{"backgroundColor", p.BackgroundColor},
		{"borderColor", p.BorderColor},
		{"headerBGColor", p.HeaderBGColor},
		{"headerTextColor", p.HeaderTextColor},
		{"contentColor", p.ContentColor},
	}
	for _, f := range colors {
		if f.v != nil && !ValidColor(*f.v) {
			return fmt.Errorf("%w: %s %q is not a colour", ErrValidation, f.name, *f.v)
		}
	}
	if p.BoxShadow != nil && !ValidStyleValue(*p.BoxShadow) {
		return fmt.Errorf("%w: boxShadow %q", ErrValidation, *p.BoxShadow)
	}
	if p.ObjectFit != nil && !ValidFit(*p.ObjectFit) {
		return fmt.Errorf("%w: unknown object-fit %q", ErrValidation, *p.ObjectFit)
	}
	return nil
}

func ValidFit(mode string) bool {
	switch mode {
	case FitContain, FitCover, FitFill, FitNone:
		return true
	}
	return false
}

// ValidStyleValue reports whether s stays a single inline style value.
func ValidStyleValue(s string) bool {
	return !strings.ContainsAny(s, ";{}<>\"\\\n\r")
}

// ValidColor accepts hex colours that parse and any other single style
// value, such as a colour name or an rgba() call.
func ValidColor(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		_, err := colorful.Hex(s)
		return err == nil
	}
	return ValidStyleValue(s)
}
