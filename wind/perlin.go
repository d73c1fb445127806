package wind

import (
	"math"

	"github.com/aquilax/go-perlin"
)

const (
	perlinAlpha  = 2.0
	perlinBeta   = 2.0
	perlinOctave = 4
)

// PerlinNoise returns a Noise3 backed by seeded Perlin noise, remapped from [-1,1] to [0,1]
func PerlinNoise(seed int64) Noise3 {
	p := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctave, seed)

	return func(x, y, z float64) float64 {
		v := (p.Noise3D(x, y, z) + 1) / 2
		return math.Max(0, math.Min(1, v))
	}
}
