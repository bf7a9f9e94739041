package geom

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ parses a Wavefront OBJ stream into a Mesh. Polygons with more than
// three sides are fan-triangulated. Vertex normals in the file are ignored
// and recomputed, since the pipeline needs them consistent with the faces.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var positions []r3.Vec
	var faces [][3]int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("geom: obj line %d: short vertex", lineNo)
			}
			var p r3.Vec
			var err error
			if p.X, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, fmt.Errorf("geom: obj line %d: %w", lineNo, err)
			}
			if p.Y, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return nil, fmt.Errorf("geom: obj line %d: %w", lineNo, err)
			}
			if p.Z, err = strconv.ParseFloat(fields[3], 64); err != nil {
				return nil, fmt.Errorf("geom: obj line %d: %w", lineNo, err)
			}
			positions = append(positions, p)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("geom: obj line %d: face with %d vertices", lineNo, len(fields)-1)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				i, err := parseOBJIndex(ref, len(positions))
				if err != nil {
					return nil, fmt.Errorf("geom: obj line %d: %w", lineNo, err)
				}
				idx = append(idx, i)
			}
			// Fan triangulation around the first polygon vertex.
			for i := 1; i+1 < len(idx); i++ {
				faces = append(faces, [3]int{idx[0], idx[i], idx[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("geom: reading obj: %w", err)
	}
	return NewMesh(positions, nil, faces)
}

// parseOBJIndex resolves a face vertex reference ("7", "7/2", "7//3", "-1")
// to a zero-based position index.
func parseOBJIndex(ref string, numVerts int) (int, error) {
	if slash := strings.IndexByte(ref, '/'); slash >= 0 {
		ref = ref[:slash]
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = numVerts + i // negative indices count from the end
	} else {
		i--
	}
	if i < 0 || i >= numVerts {
		return 0, fmt.Errorf("vertex index %s out of range", ref)
	}
	return i, nil
}

// WriteOBJ serializes the mesh as a minimal Wavefront OBJ (positions and
// faces only), the interchange format the external voxelizer consumes.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	for _, p := range m.Positions {
		if _, err := fmt.Fprintf(bw, "v %.8f %.8f %.8f\n", p.X, p.Y, p.Z); err != nil {
			return fmt.Errorf("geom: writing obj: %w", err)
		}
	}
	for _, f := range m.Faces {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1); err != nil {
			return fmt.Errorf("geom: writing obj: %w", err)
		}
	}
	return bw.Flush()
}
