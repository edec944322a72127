package geometry

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrNoPrimitives is returned when building a hierarchy over an empty triangle list
var ErrNoPrimitives = errors.New("geometry: cannot build BVH from zero primitives")

// SplitStrategy selects how the builder partitions triangles
type SplitStrategy int

const (
	// SAH scores binned split candidates with the surface area heuristic
	SAH SplitStrategy = iota
	// Median sorts by centroid along the longest axis and splits in the middle
	Median
)

// String returns the strategy name
func (s SplitStrategy) String() string {
	if s == Median {
		return "median"
	}
	return "sah"
}

// ParseSplitStrategy maps "sah" or "median" to a SplitStrategy
func ParseSplitStrategy(name string) (SplitStrategy, error) {
	switch name {
	case "sah":
		return SAH, nil
	case "median":
		return Median, nil
	}
	return SAH, fmt.Errorf("geometry: unknown split strategy %q", name)
}

const (
	// Number of centroid bins evaluated per axis
	sahBins = 16

	// Work lists at least this large score their three axes in parallel
	parallelScoreThreshold = 1024
)

// TreeNode is a node of the pointer-based hierarchy. Leaves hold exactly one triangle.
type TreeNode struct {
	Bounds      core.AABB
	Left, Right *TreeNode
	Shape       int // Triangle index for leaves, -1 for internal nodes
}

// IsLeaf reports whether the node holds a triangle
func (n *TreeNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Tree is a recursive BVH over a triangle slice
type Tree struct {
	Root      *TreeNode
	Triangles []Triangle
	Stats     Stats
}

// Stats describes a built hierarchy
type Stats struct {
	Strategy  SplitStrategy
	Triangles int
	Nodes     int
	Leaves    int
	MaxDepth  int
	BuildTime time.Duration
}

type splitScore struct {
	axis  int
	split float64 // Centroid coordinate separating left from right
	score float64
}

type builder struct {
	triangles []Triangle
	centroids []core.Vec3
	strategy  SplitStrategy
	scoreChan chan splitScore
	stats     Stats
}

// BuildTree builds a binary hierarchy over a copy of triangles. Every triangle
// ends up in exactly one leaf.
func BuildTree(triangles []Triangle, strategy SplitStrategy) (*Tree, error) {
	if len(triangles) == 0 {
		return nil, ErrNoPrimitives
	}
	triangles = append([]Triangle(nil), triangles...)

	b := &builder{
		triangles: triangles,
		centroids: make([]core.Vec3, len(triangles)),
		strategy:  strategy,
		scoreChan: make(chan splitScore, 3),
		stats:     Stats{Strategy: strategy, Triangles: len(triangles)},
	}

	workList := make([]int, len(triangles))
	for i := range triangles {
		workList[i] = i
		b.centroids[i] = triangles[i].Centroid()
	}

	start := time.Now()
	root := b.partition(workList, 0)
	b.stats.BuildTime = time.Since(start)

	logger.Debugf(
		"BVH tree build time: %d ms, strategy: %s, maxDepth: %d, nodes: %d, leaves: %d",
		b.stats.BuildTime.Milliseconds(), strategy, b.stats.MaxDepth, b.stats.Nodes, b.stats.Leaves,
	)

	return &Tree{Root: root, Triangles: triangles, Stats: b.stats}, nil
}

func (b *builder) partition(workList []int, depth int) *TreeNode {
	b.stats.Nodes++
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	bounds := core.EmptyAABB()
	for _, i := range workList {
		bounds = bounds.Union(b.triangles[i].BoundingBox())
	}

	if len(workList) == 1 {
		b.stats.Leaves++
		return &TreeNode{Bounds: bounds, Shape: workList[0]}
	}

	var left, right []int
	if b.strategy == SAH {
		left, right = b.splitSAH(workList)
	}
	if len(left) == 0 || len(right) == 0 {
		left, right = b.splitMedian(workList)
	}

	return &TreeNode{
		Bounds: bounds,
		Left:   b.partition(left, depth+1),
		Right:  b.partition(right, depth+1),
		Shape:  -1,
	}
}

// splitMedian sorts the work list along the longest centroid axis and halves it
func (b *builder) splitMedian(workList []int) ([]int, []int) {
	centroidBounds := core.EmptyAABB()
	for _, i := range workList {
		centroidBounds = centroidBounds.Union(core.NewAABB(b.centroids[i], b.centroids[i]))
	}
	axis := centroidBounds.LongestAxis()

	sort.SliceStable(workList, func(x, y int) bool {
		return b.centroids[workList[x]].Axis(axis) < b.centroids[workList[y]].Axis(axis)
	})

	mid := len(workList) / 2
	return workList[:mid], workList[mid:]
}

// splitSAH picks the binned split with the lowest surface area cost.
// It returns empty halves when no candidate separates the centroids.
func (b *builder) splitSAH(workList []int) ([]int, []int) {
	centroidBounds := core.EmptyAABB()
	for _, i := range workList {
		centroidBounds = centroidBounds.Union(core.NewAABB(b.centroids[i], b.centroids[i]))
	}

	best := splitScore{axis: -1, score: math.Inf(1)}
	if len(workList) >= parallelScoreThreshold {
		for axis := 0; axis < 3; axis++ {
			go func(axis int) {
				b.scoreChan <- b.scoreAxis(workList, centroidBounds, axis)
			}(axis)
		}
		for pending := 3; pending > 0; pending-- {
			if candidate := <-b.scoreChan; candidate.score < best.score {
				best = candidate
			}
		}
	} else {
		for axis := 0; axis < 3; axis++ {
			if candidate := b.scoreAxis(workList, centroidBounds, axis); candidate.score < best.score {
				best = candidate
			}
		}
	}

	if best.axis < 0 {
		return nil, nil
	}

	left := make([]int, 0, len(workList)/2)
	right := make([]int, 0, len(workList)/2)
	for _, i := range workList {
		if b.centroids[i].Axis(best.axis) < best.split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

// scoreAxis evaluates count * area for both sides of every bin boundary on one axis
func (b *builder) scoreAxis(workList []int, centroidBounds core.AABB, axis int) splitScore {
	result := splitScore{axis: -1, score: math.Inf(1)}

	lo := centroidBounds.Min.Axis(axis)
	hi := centroidBounds.Max.Axis(axis)
	extent := hi - lo
	if !(extent > 0) {
		return result
	}

	var counts [sahBins]int
	var boxes [sahBins]core.AABB
	for i := range boxes {
		boxes[i] = core.EmptyAABB()
	}

	binOf := func(c float64) int {
		bin := int(sahBins * (c - lo) / extent)
		return max(0, min(sahBins-1, bin))
	}

	for _, i := range workList {
		bin := binOf(b.centroids[i].Axis(axis))
		counts[bin]++
		boxes[bin] = boxes[bin].Union(b.triangles[i].BoundingBox())
	}

	// Sweep from the right to get suffix areas
	var rightArea [sahBins]float64
	var rightCount [sahBins]int
	acc := core.EmptyAABB()
	n := 0
	for i := sahBins - 1; i > 0; i-- {
		acc = acc.Union(boxes[i])
		n += counts[i]
		rightArea[i] = acc.SurfaceArea()
		rightCount[i] = n
	}

	acc = core.EmptyAABB()
	n = 0
	for i := 0; i < sahBins-1; i++ {
		acc = acc.Union(boxes[i])
		n += counts[i]
		if n == 0 || rightCount[i+1] == 0 {
			continue
		}
		score := float64(n)*acc.SurfaceArea() + float64(rightCount[i+1])*rightArea[i+1]
		if score < result.score {
			result = splitScore{
				axis:  axis,
				split: lo + extent*float64(i+1)/sahBins,
				score: score,
			}
		}
	}

	return result
}

// Hit recursively walks the tree and returns the nearest triangle hit
func (t *Tree) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	if t == nil || t.Root == nil {
		return Intersection{}, false
	}
	return t.hitNode(t.Root, ray, tMin, tMax)
}

func (t *Tree) hitNode(node *TreeNode, ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	if !node.Bounds.Hit(ray, tMin, tMax) {
		return Intersection{}, false
	}

	if node.IsLeaf() {
		return t.Triangles[node.Shape].Hit(ray, tMin, tMax)
	}

	closest, hitAnything := t.hitNode(node.Left, ray, tMin, tMax)
	if hitAnything {
		tMax = closest.T
	}
	if hit, ok := t.hitNode(node.Right, ray, tMin, tMax); ok {
		closest, hitAnything = hit, true
	}
	return closest, hitAnything
}

// BruteForceHit scans every triangle and returns the nearest hit
func BruteForceHit(triangles []Triangle, ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	var closest Intersection
	hitAnything := false
	for i := range triangles {
		if hit, ok := triangles[i].Hit(ray, tMin, tMax); ok {
			closest, hitAnything = hit, true
			tMax = hit.T
		}
	}
	return closest, hitAnything
}
