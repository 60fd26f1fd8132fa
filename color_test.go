package neoviz

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorFor(t *testing.T) {
	tests := map[string]string{
		"Patient":  "#9e44e5",
		"Person":   "#444ce5",
		"Org":      "#e58144",
		"Unknown":  "#44c4e5",
		"Payor":    "#b4e544",
		"Plan":     "#44e56b",
		"Document": "#e54479",
		"":         "#44e564",
	}
	for label, want := range tests {
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, want, ColorFor(label))
		})
	}
}

func TestColorForIsStableAndWellFormed(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for _, label := range []string{"A", "B", "Tag", "LongLabelName", "ünïcödé", "with space"} {
		first := ColorFor(label)
		assert.Regexp(t, hex, first)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, ColorFor(label))
		}
	}
}

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    []int
	}{
		{h: 0, s: 0, v: 0.5, want: []int{127, 127, 127}},
		{h: 0, s: 1, v: 1, want: []int{255, 0, 0}},
		{h: 0.25, s: 1, v: 1, want: []int{127, 255, 0}},
		{h: 0.5, s: 1, v: 1, want: []int{0, 255, 255}},
		{h: 0.75, s: 1, v: 1, want: []int{127, 0, 255}},
	}
	for _, tt := range tests {
		r, g, b := hsvToRGB(tt.h, tt.s, tt.v)
		assert.Equal(t, tt.want, []int{channel(r), channel(g), channel(b)}, "hsv(%v, %v, %v)", tt.h, tt.s, tt.v)
	}
}
