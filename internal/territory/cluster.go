// Package territory partitions building centroids into balanced,
// spatially coherent delivery territories. It works in two stages:
// a clusterer cuts the point set into many small "puzzle pieces"
// (micro-clusters), then a fair greedy assigner hands whole pieces to
// couriers, always serving the least-loaded courier next.
package territory

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// Clusterer cuts a point set into k disjoint, non-empty groups.
// Implementations must be deterministic: identical input must produce
// identical groups in identical order.
type Clusterer interface {
	Partition(points []model.Point, k int) ([][]int, error)
}

// WardClusterer is an agglomerative clusterer with Ward linkage. Merging
// always picks the pair of clusters whose union has the smallest variance
// increase, which yields compact, blob-shaped groups of similar footprint.
type WardClusterer struct{}

// Partition groups the points into k clusters. Each returned group holds
// indices into points and is non-empty; groups are ordered by their lowest
// member index, members within a group ascending.
func (WardClusterer) Partition(points []model.Point, k int) ([][]int, error) {
	n := len(points)
	if k < 1 {
		return nil, eris.Errorf("territory: cluster count %d must be positive", k)
	}
	if n < k {
		return nil, eris.Errorf("territory: cannot form %d clusters from %d points", k, n)
	}

	// Each point starts as its own cluster. A merge keeps the lower of the
	// two cluster indices, so cluster identity is stable and deterministic.
	active := make([]bool, n)
	size := make([]int, n)
	members := make([][]int, n)
	for i := range points {
		active[i] = true
		size[i] = 1
		members[i] = []int{i}
	}

	// Ward distance is initialized to squared Euclidean distance between
	// singletons and maintained with the Lance-Williams update formula.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := points[i].X - points[j].X
			dy := points[i].Y - points[j].Y
			d := dx*dx + dy*dy
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	nn := make([]int, n)
	for i := 0; i < n; i++ {
		nn[i] = nearestActive(dist, active, i, n)
	}

	for remaining := n; remaining > k; remaining-- {
		// Globally closest pair; ties fall to the lowest cluster index
		// because the scan uses strict less-than.
		best := -1
		bestDist := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] || nn[i] < 0 {
				continue
			}
			if d := dist[i][nn[i]]; d < bestDist {
				bestDist = d
				best = i
			}
		}

		i, j := best, nn[best]
		if j < i {
			i, j = j, i
		}

		// Lance-Williams update for Ward linkage:
		// d(i∪j, l) = ((s_i+s_l)d(i,l) + (s_j+s_l)d(j,l) - s_l d(i,j)) / (s_i+s_j+s_l)
		si, sj := float64(size[i]), float64(size[j])
		dij := dist[i][j]
		for l := 0; l < n; l++ {
			if !active[l] || l == i || l == j {
				continue
			}
			sl := float64(size[l])
			d := ((si+sl)*dist[i][l] + (sj+sl)*dist[j][l] - sl*dij) / (si + sj + sl)
			dist[i][l] = d
			dist[l][i] = d
		}

		members[i] = append(members[i], members[j]...)
		size[i] += size[j]
		active[j] = false
		members[j] = nil

		// Refresh stale nearest-neighbor entries: the merged cluster and
		// anyone who pointed at either half of it.
		for l := 0; l < n; l++ {
			if !active[l] {
				continue
			}
			if l == i || nn[l] == i || nn[l] == j {
				nn[l] = nearestActive(dist, active, l, n)
			}
		}
	}

	groups := make([][]int, 0, k)
	for i := 0; i < n; i++ {
		if active[i] {
			sort.Ints(members[i])
			groups = append(groups, members[i])
		}
	}
	return groups, nil
}

// nearestActive returns the active cluster closest to i, or -1 when i is
// the only active cluster. Ties resolve to the lowest index.
func nearestActive(dist [][]float64, active []bool, i, n int) int {
	best := -1
	bestDist := math.Inf(1)
	for j := 0; j < n; j++ {
		if j == i || !active[j] {
			continue
		}
		if d := dist[i][j]; d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}
