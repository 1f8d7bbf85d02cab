package sampling

import "raycore/vecmath"

// pcg32Multiplier and pcg32DefaultSeq are the constants of the
// standard public-domain PCG32 generator (O'Neill, "PCG: A Family of
// Simple Fast Space-Efficient Statistically Good Algorithms for
// Random Number Generation").
const pcg32Multiplier uint64 = 6364136223846793005
const pcg32DefaultSeq uint64 = 1442695040888963407

// RNG is a PCG32 generator seeded deterministically from a pixel
// coordinate and sample iteration, so re-rendering the same pixel at
// the same iteration always reproduces the same sample stream.
type RNG struct {
	state uint64
	inc   uint64
}

// NewRNG seeds a generator the same way the reference renderer does:
// seed = pixelX + pixelY*width + iteration*width*height. Two pixels,
// or two iterations of the same pixel, never collide as long as
// width*height*iterationCount fits in a uint64.
func NewRNG(pixelX, pixelY, width, height int, iteration uint32) *RNG {
	seed := uint64(pixelX) + uint64(pixelY)*uint64(width) + uint64(iteration)*uint64(width)*uint64(height)
	return newPCG32(seed, pcg32DefaultSeq)
}

func newPCG32(seed, seq uint64) *RNG {
	rng := &RNG{state: 0, inc: (seq << 1) | 1}
	rng.step()
	rng.state += seed
	rng.step()
	return rng
}

func (r *RNG) step() {
	r.state = r.state*pcg32Multiplier + r.inc
}

// Uint32 returns the next raw 32-bit output of the generator.
func (r *RNG) Uint32() uint32 {
	oldState := r.state
	r.step()
	xorshifted := uint32(((oldState >> 18) ^ oldState) >> 27)
	rot := uint32(oldState >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float32 returns a uniformly distributed sample in [0, 1).
func (r *RNG) Float32() float32 {
	// Keep the top 24 bits so the value is exact in a float32 mantissa;
	// converting the full 32 bits can round up to 2^32 and yield 1.0.
	return float32(r.Uint32()>>8) / float32(1<<24)
}

// Vec2 returns two independent uniform samples in [0, 1), the common
// shape needed to sample a 2D distribution such as a hemisphere.
func (r *RNG) Vec2() vecmath.Vec2 {
	return vecmath.Vec2{r.Float32(), r.Float32()}
}
