// Package render draws debug snapshots of the pipeline's intermediate
// state: the normalized mesh's vertices, the clustered joints and the
// skeleton edges, projected orthographically and encoded as WebP.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/geom"
	"github.com/autorig/autorig/internal/rig"
)

// Snapshot is everything the debug image shows. Joints and Skeleton may be
// nil to draw only what a failed run produced.
type Snapshot struct {
	Mesh      *geom.Mesh
	Joints    []r3.Vec
	Densities []float64
	Skeleton  *rig.Skeleton
}

// supersample rendering then CatmullRom-downscale, which keeps the thin
// bone lines readable at the output size.
const superFactor = 2

var (
	vertexColor = color.NRGBA{110, 110, 110, 255}
	jointColor  = color.NRGBA{220, 60, 60, 255}
	boneColor   = color.NRGBA{40, 120, 220, 255}
	rootColor   = color.NRGBA{250, 180, 30, 255}
)

// WriteWebP renders the snapshot at size x size pixels and encodes it.
func WriteWebP(w io.Writer, snap Snapshot, size int) error {
	if snap.Mesh == nil || len(snap.Mesh.Positions) == 0 {
		return fmt.Errorf("render: empty snapshot")
	}
	if size <= 0 {
		size = 512
	}

	big := image.NewNRGBA(image.Rect(0, 0, size*superFactor, size*superFactor))
	for i := range big.Pix {
		big.Pix[i] = 255 // white background
	}

	proj := newProjector(snap.Mesh, size*superFactor)
	for _, p := range snap.Mesh.Positions {
		x, y := proj.project(p)
		big.SetNRGBA(x, y, vertexColor)
	}

	if snap.Skeleton != nil {
		for _, b := range snap.Skeleton.Bones() {
			ax, ay := proj.project(snap.Skeleton.Joints[b.Start])
			bx, by := proj.project(snap.Skeleton.Joints[b.End])
			drawLine(big, ax, ay, bx, by, boneColor)
		}
	}

	maxDen := 0.0
	for _, d := range snap.Densities {
		if d > maxDen {
			maxDen = d
		}
	}
	for i, j := range snap.Joints {
		x, y := proj.project(j)
		radius := 3 * superFactor
		if maxDen > 0 && i < len(snap.Densities) {
			radius = superFactor * (2 + int(4*snap.Densities[i]/maxDen))
		}
		c := jointColor
		if snap.Skeleton != nil && i == snap.Skeleton.Root {
			c = rootColor
		}
		drawDisc(big, x, y, radius, c)
	}

	small := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(small, small.Bounds(), big, big.Bounds(), draw.Src, nil)

	if err := nativewebp.Encode(w, small, nil); err != nil {
		return fmt.Errorf("render: encoding webp: %w", err)
	}
	return nil
}

// projector maps canonical XY onto pixel coordinates with a small margin.
type projector struct {
	min, max r3.Vec
	size     int
}

func newProjector(m *geom.Mesh, size int) projector {
	min, max := m.Bounds()
	return projector{min: min, max: max, size: size}
}

func (p projector) project(v r3.Vec) (int, int) {
	exX := p.max.X - p.min.X
	exY := p.max.Y - p.min.Y
	ext := math.Max(exX, exY)
	if ext <= 0 {
		ext = 1
	}
	margin := 0.05
	scale := float64(p.size) * (1 - 2*margin) / ext
	x := (v.X-p.min.X-exX/2)*scale + float64(p.size)/2
	// Image Y grows downward.
	y := float64(p.size)/2 - (v.Y-p.min.Y-exY/2)*scale
	return int(x), int(y)
}

func drawDisc(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}

// drawLine is basic Bresenham.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}
