package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/log"
)

// LeafSentinel marks a leaf in Node.Entry and an unset shape index
const LeafSentinel = math.MaxUint32

var logger = log.New("bvh")

// Node is one entry of the flattened hierarchy. Internal nodes descend to
// Entry on a box hit; every node continues at Exit once its subtree is done.
type Node struct {
	Min, Max core.Vec3
	Entry    uint32 // First child, or LeafSentinel for leaves
	Exit     uint32 // Next node after this subtree
	Shape    uint32 // Triangle index for leaves
}

// IsLeaf reports whether the node references a triangle
func (n *Node) IsLeaf() bool {
	return n.Entry == LeafSentinel
}

// Bounds returns the node box
func (n *Node) Bounds() core.AABB {
	return core.NewAABB(n.Min, n.Max)
}

// BVH is the flattened rope hierarchy together with the triangles it indexes
type BVH struct {
	Nodes     []Node
	Triangles []Triangle
	Stats     Stats
}

// NewBVH builds and flattens a hierarchy over triangles. An empty input gives
// an empty BVH on which every query misses.
func NewBVH(triangles []Triangle, strategy SplitStrategy) *BVH {
	tree, err := BuildTree(triangles, strategy)
	if err != nil {
		logger.Debugf("empty BVH: %v", err)
		return &BVH{Stats: Stats{Strategy: strategy}}
	}
	return Flatten(tree)
}

// Flatten serializes the tree in depth-first preorder with entry/exit ropes.
// Each triangle's Node field is set to the index of its leaf.
func Flatten(tree *Tree) *BVH {
	bvh := &BVH{Triangles: tree.Triangles, Stats: tree.Stats}
	if tree.Root == nil {
		return bvh
	}
	bvh.Nodes = make([]Node, 0, tree.Stats.Nodes)
	bvh.flatten(tree.Root)
	return bvh
}

func (b *BVH) flatten(tn *TreeNode) {
	index := uint32(len(b.Nodes))
	b.Nodes = append(b.Nodes, Node{
		Min:   tn.Bounds.Min,
		Max:   tn.Bounds.Max,
		Entry: LeafSentinel,
		Shape: LeafSentinel,
	})

	if tn.IsLeaf() {
		b.Nodes[index].Shape = uint32(tn.Shape)
		b.Triangles[tn.Shape].Node = index
	} else {
		b.Nodes[index].Entry = index + 1
		b.flatten(tn.Left)
		b.flatten(tn.Right)
	}

	b.Nodes[index].Exit = uint32(len(b.Nodes))
}

// Hit walks the rope array without recursion and returns the nearest triangle hit
func (b *BVH) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	var closest Intersection
	hitAnything := false

	count := uint32(len(b.Nodes))
	for cursor := uint32(0); cursor < count; {
		node := &b.Nodes[cursor]
		switch {
		case node.IsLeaf():
			tri := &b.Triangles[node.Shape]
			if tri.bbox.Hit(ray, tMin, tMax) {
				if hit, ok := tri.Hit(ray, tMin, tMax); ok {
					closest, hitAnything = hit, true
					tMax = hit.T
				}
			}
			cursor = node.Exit
		case node.Bounds().Hit(ray, tMin, tMax):
			cursor = node.Entry
		default:
			cursor = node.Exit
		}
	}

	return closest, hitAnything
}

// Occluded reports whether any triangle blocks the ray inside (tMin, tMax)
func (b *BVH) Occluded(ray core.Ray, tMin, tMax float64) bool {
	count := uint32(len(b.Nodes))
	for cursor := uint32(0); cursor < count; {
		node := &b.Nodes[cursor]
		switch {
		case node.IsLeaf():
			if _, ok := b.Triangles[node.Shape].Hit(ray, tMin, tMax); ok {
				return true
			}
			cursor = node.Exit
		case node.Bounds().Hit(ray, tMin, tMax):
			cursor = node.Entry
		default:
			cursor = node.Exit
		}
	}
	return false
}

// Bounds returns the box of the whole hierarchy
func (b *BVH) Bounds() core.AABB {
	if len(b.Nodes) == 0 {
		return core.EmptyAABB()
	}
	return b.Nodes[0].Bounds()
}
