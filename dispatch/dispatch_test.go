package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"

	"raycore/accel"
	"raycore/rtray"
	"raycore/vecmath"
)

func testTLAS() *accel.TLAS {
	blas := accel.NewBLASFromTriangles([]vecmath.Vec3{
		{-100, -100, 0}, {100, -100, 0}, {0, 100, 0},
	})
	return accel.NewTLAS([]accel.Instance{accel.NewInstance(blas)})
}

func TestTraceRaysCoversEveryPixelExactlyOnce(t *testing.T) {
	res := Resolution{Width: 17, Height: 13}
	var counts [17 * 13]int32
	var mu sync.Mutex

	TraceRays(res, 4, 0, func(x, y int, iteration uint32, tlas *accel.TLAS) rtray.Hit {
		mu.Lock()
		counts[y*res.Width+x]++
		mu.Unlock()
		return rtray.Miss()
	}, testTLAS())

	for i, c := range counts {
		if c != 1 {
			t.Fatalf("pixel %d visited %d times, expected exactly once", i, c)
		}
	}
}

func TestTraceRaysVisitsExpectedPixelCount(t *testing.T) {
	res := Resolution{Width: 8, Height: 8}
	var visited int64

	TraceRays(res, 1, 0, func(x, y int, iteration uint32, tlas *accel.TLAS) rtray.Hit {
		atomic.AddInt64(&visited, 1)
		return rtray.Miss()
	}, testTLAS())

	if visited != res.PixelCount() {
		t.Errorf("expected %d pixels visited, got %d", res.PixelCount(), visited)
	}
}

func TestTraceRaysPanicsOnNonPositiveTileSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-positive tileSize")
		}
	}()
	TraceRays(Resolution{Width: 4, Height: 4}, 0, 0, func(x, y int, iteration uint32, tlas *accel.TLAS) rtray.Hit {
		return rtray.Miss()
	}, testTLAS())
}

func TestTraceRaysToBufferWritesRowMajor(t *testing.T) {
	res := Resolution{Width: 4, Height: 3}
	buffer := make([]rtray.Hit, res.Width*res.Height)

	TraceRaysToBuffer(res, 2, 0, func(x, y int, iteration uint32, tlas *accel.TLAS) rtray.Hit {
		h := rtray.Miss()
		h.T = float32(x + y*res.Width)
		return h
	}, testTLAS(), buffer)

	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			want := float32(x + y*res.Width)
			got := buffer[y*res.Width+x].T
			if got != want {
				t.Errorf("buffer[%d][%d] = %v, want %v", y, x, got, want)
			}
		}
	}
}
