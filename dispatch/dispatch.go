// Package dispatch implements the parallel tile-based work handout
// that drives the accel package across a framebuffer: one shared
// atomic counter, a worker per CPU, no channels or queues.
package dispatch

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"raycore/accel"
	"raycore/rtray"
)

// Resolution is the pixel dimensions of the framebuffer being traced.
type Resolution struct {
	Width, Height int
}

// PixelCount returns the total number of pixels in the resolution.
func (r Resolution) PixelCount() int64 {
	return int64(r.Width) * int64(r.Height)
}

// ShaderFunc is invoked once per pixel per call to TraceRays. x and y
// are the pixel's column and row; iteration is the caller-supplied
// sample index, used by sampling.RNG to decorrelate successive
// samples of the same pixel. tlas is the scene the shader traces
// against.
type ShaderFunc func(x, y int, iteration uint32, tlas *accel.TLAS) rtray.Hit

// TraceRays dispatches one ShaderFunc invocation per pixel in
// resolution across runtime.NumCPU() worker goroutines. Pixels are
// handed out one at a time through a single shared atomic counter that
// each worker fetch-subs: there is no per-tile queue or channel, so the
// only synchronization point between workers is that counter.
//
// tileSize is accepted and validated (it must be positive) but does
// not change the handout granularity: it is a hint reserved for a
// batched counter scheme, kept in the signature so callers can tune it
// without a breaking change later, but today every pixel is claimed
// individually.
func TraceRays(resolution Resolution, tileSize int, iteration uint32, shader ShaderFunc, tlas *accel.TLAS) {
	if tileSize <= 0 {
		panic(fmt.Sprintf("dispatch: tileSize must be positive, got %d", tileSize))
	}
	if resolution.Width <= 0 || resolution.Height <= 0 {
		panic(fmt.Sprintf("dispatch: resolution must be positive, got %dx%d", resolution.Width, resolution.Height))
	}

	total := resolution.PixelCount()
	remaining := total

	workerCount := runtime.NumCPU()
	if int64(workerCount) > total {
		workerCount = int(total)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for {
				idx := atomic.AddInt64(&remaining, -1)
				if idx < 0 {
					return
				}
				x := int(idx % int64(resolution.Width))
				y := int(idx / int64(resolution.Width))
				shader(x, y, iteration, tlas)
			}
		}()
	}

	wg.Wait()
}

// TraceRaysToBuffer is a convenience wrapper around TraceRays that
// writes every pixel's Hit into a caller-provided framebuffer laid out
// in row-major order, buffer[y*resolution.Width+x].
func TraceRaysToBuffer(resolution Resolution, tileSize int, iteration uint32, shader ShaderFunc, tlas *accel.TLAS, buffer []rtray.Hit) {
	if len(buffer) != resolution.Width*resolution.Height {
		panic(fmt.Sprintf("dispatch: buffer length %d does not match resolution %dx%d", len(buffer), resolution.Width, resolution.Height))
	}
	TraceRays(resolution, tileSize, iteration, func(x, y int, iter uint32, t *accel.TLAS) rtray.Hit {
		h := shader(x, y, iter, t)
		buffer[y*resolution.Width+x] = h
		return h
	}, tlas)
}
