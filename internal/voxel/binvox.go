package voxel

import (
	"bufio"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

const binvoxSig = "#binvox 1\n"

// ReadBinvox parses a binvox stream: signature, "dim/translate/scale"
// header, then run-length encoded occupancy as (value, count) byte pairs in
// x-major, y-fastest order.
func ReadBinvox(r io.Reader) (*Grid, error) {
	br := bufio.NewReader(r)
	if _, err := fmt.Fscanf(br, binvoxSig); err != nil {
		return nil, fmt.Errorf("voxel: bad binvox signature: %w", err)
	}

	var d, h, w int
	if _, err := fmt.Fscanf(br, "dim %d %d %d\n", &d, &h, &w); err != nil {
		return nil, fmt.Errorf("voxel: reading dim: %w", err)
	}
	if d != h || h != w || d <= 0 {
		return nil, fmt.Errorf("voxel: non-cubic grid %dx%dx%d", d, h, w)
	}

	var t r3.Vec
	if _, err := fmt.Fscanf(br, "translate %f %f %f\n", &t.X, &t.Y, &t.Z); err != nil {
		return nil, fmt.Errorf("voxel: reading translate: %w", err)
	}
	var scale float64
	if _, err := fmt.Fscanf(br, "scale %f\n", &scale); err != nil {
		return nil, fmt.Errorf("voxel: reading scale: %w", err)
	}
	if _, err := fmt.Fscanf(br, "data\n"); err != nil {
		return nil, fmt.Errorf("voxel: reading data marker: %w", err)
	}

	g := NewGrid(d, t, scale)
	for i := 0; i < len(g.cells); {
		value, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("voxel: truncated grid data: %w", err)
		}
		count, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("voxel: truncated grid data: %w", err)
		}
		end := i + int(count)
		if end > len(g.cells) {
			return nil, fmt.Errorf("voxel: run of %d overflows grid at cell %d", count, i)
		}
		if value != 0 {
			for ; i < end; i++ {
				g.cells[i] = true
			}
		} else {
			i = end
		}
	}
	return g, nil
}

// WriteBinvox serializes the grid in binvox format, the inverse of
// ReadBinvox. Used by tests and to cache voxelizations between runs.
func WriteBinvox(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(binvoxSig)
	fmt.Fprintf(bw, "dim %d %d %d\n", g.N, g.N, g.N)
	fmt.Fprintf(bw, "translate %.6f %.6f %.6f\n", g.Translate.X, g.Translate.Y, g.Translate.Z)
	fmt.Fprintf(bw, "scale %.6f\n", g.Scale)
	bw.WriteString("data\n")

	value, count := false, 0
	flush := func() {
		if count == 0 {
			return
		}
		if value {
			bw.WriteByte(1)
		} else {
			bw.WriteByte(0)
		}
		bw.WriteByte(byte(count))
	}
	for _, c := range g.cells {
		if c == value && count < 255 {
			count++
			continue
		}
		flush()
		value, count = c, 1
	}
	flush()
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("voxel: writing binvox: %w", err)
	}
	return nil
}
