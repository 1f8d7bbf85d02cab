// Command raytrace-demo opens a raylib-go window, traces a JSON scene
// description through the dispatcher every frame, and displays the
// resulting framebuffer live, with raygui sliders for field of view and
// sample count. The field of view drives the camera; the sample count
// value is displayed but not used: each frame traces one primary ray
// per pixel.
package main

import (
	"flag"
	"log"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"raycore/accel"
	"raycore/dispatch"
	"raycore/rtray"
	"raycore/scenefmt"
	"raycore/vecmath"
)

func main() {
	scenePath := flag.String("scene", "", "path to a scenefmt JSON scene file")
	width := flag.Int("width", 960, "framebuffer width")
	height := flag.Int("height", 540, "framebuffer height")
	flag.Parse()

	if *scenePath == "" {
		log.Fatal("raytrace-demo: -scene is required")
	}

	scene, err := scenefmt.Load(*scenePath)
	if err != nil {
		log.Fatalf("raytrace-demo: %v", err)
	}

	res := dispatch.Resolution{Width: *width, Height: *height}
	const uiHeight = 60

	rl.InitWindow(int32(res.Width), int32(res.Height+uiHeight), "raycore demo")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	img := rl.GenImageColor(res.Width, res.Height, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	pixels := make([]byte, res.Width*res.Height*4)
	fovy := float32(60)
	sampleCount := float32(1)

	var iteration uint32
	for !rl.WindowShouldClose() {
		cam := newPinholeCamera(scene.Camera, res, fovy)

		dispatch.TraceRays(res, 64, iteration, func(x, y int, iter uint32, tlas *accel.TLAS) rtray.Hit {
			r := cam.primaryRay(x, y)
			hit, ok := tlas.Intersect(r, 1e-3, float32(math.Inf(1)), rtray.RayFlagNone, 0)
			writePixel(pixels, res.Width, x, y, hit, ok)
			return hit
		}, scene.TLAS)
		iteration++

		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(20, 20, 30, 255))
		rl.DrawTexture(texture, 0, 0, rl.White)

		fovy = gui.Slider(
			rl.Rectangle{X: 120, Y: float32(res.Height) + 10, Width: 200, Height: 20},
			"FOV", "", fovy, 20, 120)
		sampleCount = gui.Slider(
			rl.Rectangle{X: 120, Y: float32(res.Height) + 35, Width: 200, Height: 20},
			"Samples", "", sampleCount, 1, 64)
		rl.DrawText("raycore demo - drag sliders to adjust FOV / samples", 10, 10, 18, rl.RayWhite)
		rl.DrawFPS(10, 32)

		rl.EndDrawing()
	}
}

// pinholeCamera holds the precomputed basis vectors for generating
// primary rays without recomputing trig per pixel.
type pinholeCamera struct {
	origin                 vecmath.Vec3
	lowerLeft, horiz, vert vecmath.Vec3
	width, height          int
}

func newPinholeCamera(def scenefmt.CameraDef, res dispatch.Resolution, fovyDeg float32) pinholeCamera {
	pos := vecmath.Vec3{def.Position[0], def.Position[1], def.Position[2]}
	lookAt := vecmath.Vec3{def.LookAt[0], def.LookAt[1], def.LookAt[2]}
	up := vecmath.Vec3{def.Up[0], def.Up[1], def.Up[2]}
	if up == (vecmath.Vec3{}) {
		up = vecmath.Vec3{0, 1, 0}
	}
	aspect := float32(res.Width) / float32(res.Height)

	theta := fovyDeg * float32(math.Pi) / 180
	halfHeight := float32(math.Tan(float64(theta) / 2))
	halfWidth := aspect * halfHeight

	forward := lookAt.Sub(pos).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)

	lowerLeft := pos.Add(forward).Sub(right.Mul(halfWidth)).Sub(trueUp.Mul(halfHeight))

	return pinholeCamera{
		origin:    pos,
		lowerLeft: lowerLeft,
		horiz:     right.Mul(2 * halfWidth),
		vert:      trueUp.Mul(2 * halfHeight),
		width:     res.Width,
		height:    res.Height,
	}
}

// primaryRay builds the ray through the center of pixel (x, y), with y
// measured from the top of the framebuffer (image-space convention).
func (c pinholeCamera) primaryRay(x, y int) rtray.Ray {
	u := (float32(x) + 0.5) / float32(c.width)
	v := 1 - (float32(y)+0.5)/float32(c.height)

	target := c.lowerLeft.Add(c.horiz.Mul(u)).Add(c.vert.Mul(v))
	return rtray.NewRay(c.origin, target.Sub(c.origin).Normalize())
}

func writePixel(pixels []byte, width, x, y int, hit rtray.Hit, ok bool) {
	idx := (y*width + x) * 4
	if !ok {
		pixels[idx], pixels[idx+1], pixels[idx+2], pixels[idx+3] = 10, 10, 20, 255
		return
	}
	n := hit.Normal
	pixels[idx] = byte((n[0]*0.5 + 0.5) * 255)
	pixels[idx+1] = byte((n[1]*0.5 + 0.5) * 255)
	pixels[idx+2] = byte((n[2]*0.5 + 0.5) * 255)
	pixels[idx+3] = 255
}
