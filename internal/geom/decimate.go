package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Decimate reduces the mesh by vertex clustering: vertices are snapped to a
// uniform grid sized for roughly targetFaces output triangles and each
// occupied cell is replaced by the average of its members. Faces that
// collapse onto fewer than three distinct representatives are dropped.
// Meshes already at or below the target are returned unchanged.
func Decimate(m *Mesh, targetFaces int) *Mesh {
	if targetFaces <= 0 || len(m.Faces) <= targetFaces {
		return m
	}

	min, max := m.Bounds()
	ext := r3.Sub(max, min)
	largest := math.Max(ext.X, math.Max(ext.Y, ext.Z))
	if largest <= 0 {
		return m
	}

	// A closed surface of F triangles clustered on a g^3 grid yields on the
	// order of g^2 faces; aim slightly above the target and clamp.
	g := int(math.Ceil(1.4 * math.Sqrt(float64(targetFaces))))
	if g < 2 {
		g = 2
	}
	if g > 256 {
		g = 256
	}
	cell := largest / float64(g)

	type cluster struct {
		sum   r3.Vec
		count int
		repr  int
	}
	clusters := make(map[[3]int]*cluster)
	remap := make([]int, len(m.Positions))
	for i, p := range m.Positions {
		key := [3]int{
			int(math.Floor((p.X - min.X) / cell)),
			int(math.Floor((p.Y - min.Y) / cell)),
			int(math.Floor((p.Z - min.Z) / cell)),
		}
		c, ok := clusters[key]
		if !ok {
			c = &cluster{repr: len(clusters)}
			clusters[key] = c
		}
		c.sum = r3.Add(c.sum, p)
		c.count++
		remap[i] = c.repr
	}

	positions := make([]r3.Vec, len(clusters))
	for _, c := range clusters {
		positions[c.repr] = r3.Scale(1/float64(c.count), c.sum)
	}

	faces := make([][3]int, 0, targetFaces)
	for _, f := range m.Faces {
		a, b, c := remap[f[0]], remap[f[1]], remap[f[2]]
		if a == b || b == c || a == c {
			continue
		}
		faces = append(faces, [3]int{a, b, c})
	}

	out := &Mesh{Positions: positions, Faces: faces}
	out.ComputeNormals()
	return out
}
