package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SphereMesh builds a welded triangle mesh of a sphere through marching
// cubes. Intended for pipeline smoke tests and demos where an analytic,
// watertight mesh is needed without any external asset.
func SphereMesh(radius float64, cells int) (*Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("geom: sphere sdf: %w", err)
	}
	return meshFromSDF(s, cells)
}

// CapsuleMesh builds a vertical capsule (cylinder with hemispherical caps)
// of the given total height, welded from marching cubes output. The capsule
// stands on the XZ plane, which gives the pipeline an elongated, limb-like
// test body with a well-defined vertical axis.
func CapsuleMesh(height, radius float64, cells int) (*Mesh, error) {
	body := height - 2*radius
	if body <= 0 {
		return SphereMesh(radius, cells)
	}
	cyl, err := sdf.Cylinder3D(body, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("geom: capsule cylinder sdf: %w", err)
	}
	capSDF, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("geom: capsule cap sdf: %w", err)
	}
	top := sdf.Transform3D(capSDF, sdf.Translate3d(v3.Vec{Z: body / 2}))
	bottom := sdf.Transform3D(capSDF, sdf.Translate3d(v3.Vec{Z: -body / 2}))
	capsule := sdf.Union3D(cyl, top, bottom)
	// Stand the capsule upright on Y (sdfx builds along Z).
	upright := sdf.Transform3D(capsule, sdf.RotateX(-math.Pi/2))
	lifted := sdf.Transform3D(upright, sdf.Translate3d(v3.Vec{Y: height / 2}))
	return meshFromSDF(lifted, cells)
}

// meshFromSDF marches the SDF and welds coincident triangle corners into
// shared vertices so the result has real topology edges.
func meshFromSDF(s sdf.SDF3, cells int) (*Mesh, error) {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("geom: marching cubes produced no triangles")
	}

	const weldScale = 1e6 // weld vertices closer than 1e-6
	index := make(map[[3]int64]int)
	var positions []r3.Vec
	var faces [][3]int
	for _, tri := range triangles {
		var f [3]int
		for j := 0; j < 3; j++ {
			v := tri[j]
			key := [3]int64{
				int64(math.Round(v.X * weldScale)),
				int64(math.Round(v.Y * weldScale)),
				int64(math.Round(v.Z * weldScale)),
			}
			id, ok := index[key]
			if !ok {
				id = len(positions)
				index[key] = id
				positions = append(positions, r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
			}
			f[j] = id
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue // sliver collapsed by welding
		}
		faces = append(faces, f)
	}
	return NewMesh(positions, nil, faces)
}
