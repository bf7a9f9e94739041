package geom

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// geoNode is an entry in the Dijkstra priority queue.
type geoNode struct {
	vertex int
	dist   float64
	index  int
}

type geoHeap []*geoNode

func (h geoHeap) Len() int           { return len(h) }
func (h geoHeap) Less(i, j int) bool { return h[i].dist < h[j].dist }
func (h geoHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *geoHeap) Push(x interface{}) {
	n := x.(*geoNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *geoHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// SurfaceGeodesic computes the symmetric V-by-V matrix of shortest-path
// distances along the mesh edge graph, with Euclidean edge lengths as
// weights. Vertices in different connected components are at +Inf. The
// matrix is computed once per mesh and reused by the volumetric estimator.
func SurfaceGeodesic(m *Mesh) *mat.SymDense {
	n := len(m.Positions)
	adj := m.Adjacency()

	// Precompute edge lengths alongside the adjacency lists.
	lengths := make([][]float64, n)
	for v, neighbors := range adj {
		lengths[v] = make([]float64, len(neighbors))
		for i, u := range neighbors {
			lengths[v][i] = r3.Norm(r3.Sub(m.Positions[v], m.Positions[u]))
		}
	}

	geo := mat.NewSymDense(n, nil)
	dist := make([]float64, n)
	for src := 0; src < n; src++ {
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		dist[src] = 0

		pq := &geoHeap{}
		heap.Init(pq)
		heap.Push(pq, &geoNode{vertex: src, dist: 0})
		for pq.Len() > 0 {
			cur := heap.Pop(pq).(*geoNode)
			if cur.dist > dist[cur.vertex] {
				continue // stale entry
			}
			for i, u := range adj[cur.vertex] {
				if d := cur.dist + lengths[cur.vertex][i]; d < dist[u] {
					dist[u] = d
					heap.Push(pq, &geoNode{vertex: u, dist: d})
				}
			}
		}

		// SymDense mirrors (src, v) and (v, src); filling v >= src covers all.
		for v := src; v < n; v++ {
			geo.SetSym(src, v, dist[v])
		}
	}
	return geo
}

// GeodesicEdges returns vertex pairs within the given surface geodesic
// radius of each other, excluding direct 1-ring neighbors (those are already
// covered by the topology edge set). Pairs are ordered (low, high).
func GeodesicEdges(m *Mesh, geo *mat.SymDense, radius float64) [][2]int {
	neighbor := make(map[[2]int]struct{})
	for _, e := range m.TopologyEdges() {
		neighbor[e] = struct{}{}
	}
	n := len(m.Positions)
	var edges [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := geo.At(i, j)
			if d <= 0 || d > radius || math.IsInf(d, 1) {
				continue
			}
			if _, ok := neighbor[[2]int{i, j}]; ok {
				continue
			}
			edges = append(edges, [2]int{i, j})
		}
	}
	return edges
}
