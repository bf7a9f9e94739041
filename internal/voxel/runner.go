package voxel

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/autorig/autorig/internal/geom"
)

// ErrToolingUnavailable reports a missing or failing external voxelizer.
// It is distinct from geometry errors: the pipeline must abort and the host
// should point the user at its tool-path setting.
var ErrToolingUnavailable = errors.New("voxel: voxelizer unavailable")

// Voxelizer produces an occupancy grid for a mesh at a fixed resolution.
type Voxelizer interface {
	Voxelize(m *geom.Mesh, resolution int) (*Grid, error)
}

// BinvoxRunner voxelizes by exporting the mesh to a temporary OBJ and
// invoking the external binvox tool on it. The temporary directory is
// removed on every exit path.
type BinvoxRunner struct {
	// Path is the binvox executable. An empty or missing path fails with
	// ErrToolingUnavailable.
	Path string
}

// Voxelize runs binvox at the given resolution and reads the grid back.
func (r *BinvoxRunner) Voxelize(m *geom.Mesh, resolution int) (*Grid, error) {
	if r.Path == "" {
		return nil, fmt.Errorf("%w: no executable configured", ErrToolingUnavailable)
	}
	if fi, err := os.Stat(r.Path); err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: executable not found at %s", ErrToolingUnavailable, r.Path)
	}

	dir, err := os.MkdirTemp("", "autorig-vox-")
	if err != nil {
		return nil, fmt.Errorf("voxel: creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	objPath := filepath.Join(dir, "normalized.obj")
	f, err := os.Create(objPath)
	if err != nil {
		return nil, fmt.Errorf("voxel: creating temp obj: %w", err)
	}
	if err := geom.WriteOBJ(f, m); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("voxel: writing temp obj: %w", err)
	}

	cmd := exec.Command(r.Path, "-d", strconv.Itoa(resolution), objPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrToolingUnavailable, err, out)
	}

	voxPath := filepath.Join(dir, "normalized.binvox")
	vf, err := os.Open(voxPath)
	if err != nil {
		return nil, fmt.Errorf("%w: no output written: %v", ErrToolingUnavailable, err)
	}
	defer vf.Close()
	return ReadBinvox(vf)
}
