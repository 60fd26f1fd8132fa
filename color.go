package neoviz

import (
	"crypto/md5"
	"fmt"
	"math/big"
)

const (
	labelSaturation = 0.7
	labelValue      = 0.9
	hueBuckets      = 1000
)

// ColorFor returns the color of nodes carrying label as a "#rrggbb" string.
//
// The hue is taken from the MD5 digest of the label, reduced to one of 1000 buckets, and
// combined with a fixed saturation and value. The mapping depends on the label only, so
// the same label gets the same color in every process.
func ColorFor(label string) string {
	sum := md5.Sum([]byte(label))
	bucket := new(big.Int).Mod(new(big.Int).SetBytes(sum[:]), big.NewInt(hueBuckets))
	hue := float64(bucket.Int64()) / hueBuckets

	r, g, b := hsvToRGB(hue, labelSaturation, labelValue)
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

// channel truncates a [0,1] component to a byte.
func channel(c float64) int {
	return int(float64(c * 255))
}

// hsvToRGB converts h, s, v in [0,1] to r, g, b in [0,1] using the sextant formulation.
// Each product is wrapped in an explicit float64 conversion so the compiler does not fuse
// it into an FMA, which would change the truncated channels on some architectures.
func hsvToRGB(h, s, v float64) (r, g, b float64) {
	if s == 0 {
		return v, v, v
	}
	i := int(float64(h * 6))
	f := float64(h*6) - float64(i)
	p := float64(v * (1 - s))
	q := float64(v * (1 - float64(s*f)))
	t := float64(v * (1 - float64(s*(1-f))))

	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
