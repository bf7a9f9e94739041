// Package rig defines the output data model of the rigging pipeline: a
// rooted skeleton over predicted joints plus per-vertex skinning weights.
package rig

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvariant reports a violated structural invariant (no root, cycles,
// malformed weight rows). It indicates a logic or numeric bug and is always
// fatal; callers must not try to repair the result.
var ErrInvariant = errors.New("rig: invariant violation")

// Skeleton is a rooted tree over joints. Joints are addressed by index;
// Parent[i] is the parent joint index, or -1 for the root.
type Skeleton struct {
	Joints []r3.Vec
	Root   int
	Parent []int
}

// Bone is a parent->child edge of the skeleton with derived scalars used by
// the skinning stage.
type Bone struct {
	Start  int // parent joint index
	End    int // child joint index
	Length float64
	Leaf   bool // end joint has no children
}

// Children returns the child index lists induced by the parent array.
func (s *Skeleton) Children() [][]int {
	children := make([][]int, len(s.Joints))
	for i, p := range s.Parent {
		if p >= 0 {
			children[p] = append(children[p], i)
		}
	}
	return children
}

// Bones returns the parent->child edges of the skeleton in parent-array
// order, with length and leaf flags filled in.
func (s *Skeleton) Bones() []Bone {
	children := s.Children()
	bones := make([]Bone, 0, len(s.Joints)-1)
	for i, p := range s.Parent {
		if p < 0 {
			continue
		}
		d := r3.Sub(s.Joints[i], s.Joints[p])
		bones = append(bones, Bone{
			Start:  p,
			End:    i,
			Length: r3.Norm(d),
			Leaf:   len(children[i]) == 0,
		})
	}
	return bones
}

// Validate checks the tree invariants: exactly one root (parent -1), every
// other joint has a valid parent, and every joint is reachable from the root
// (which rules out cycles). Returns ErrInvariant on any violation.
func (s *Skeleton) Validate() error {
	n := len(s.Joints)
	if n == 0 || len(s.Parent) != n {
		return fmt.Errorf("%w: %d joints with %d parent entries", ErrInvariant, n, len(s.Parent))
	}
	roots := 0
	for i, p := range s.Parent {
		switch {
		case p == -1:
			roots++
			if i != s.Root {
				return fmt.Errorf("%w: joint %d has no parent but root is %d", ErrInvariant, i, s.Root)
			}
		case p < 0 || p >= n:
			return fmt.Errorf("%w: joint %d has parent %d out of range", ErrInvariant, i, p)
		}
	}
	if roots != 1 {
		return fmt.Errorf("%w: %d roots, want exactly 1", ErrInvariant, roots)
	}

	// Walk from the root; a cycle or detached subtree leaves joints unseen.
	children := s.Children()
	seen := make([]bool, n)
	stack := []int{s.Root}
	seen[s.Root] = true
	count := 1
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range children[j] {
			if !seen[c] {
				seen[c] = true
				count++
				stack = append(stack, c)
			}
		}
	}
	if count != n {
		return fmt.Errorf("%w: only %d of %d joints reachable from root", ErrInvariant, count, n)
	}
	return nil
}
