package renderer

import (
	"fmt"
	"image"
	"sort"
)

// WorkGroupSize is the edge length of a compute work-group in pixels
const WorkGroupSize = 16

// PartitionStrategy selects how the pixel grid is split into regions
type PartitionStrategy int

const (
	// RowChunks splits the image into one band of contiguous rows per worker
	RowChunks PartitionStrategy = iota
	// MortonTiles splits the image into square tiles visited in Z-order
	MortonTiles
	// WorkGroups mirrors a compute dispatch of 16x16 groups
	WorkGroups
)

var partitionNames = []string{"rows", "morton", "workgroups"}

// String returns the strategy name accepted by ParsePartition
func (p PartitionStrategy) String() string {
	if int(p) >= 0 && int(p) < len(partitionNames) {
		return partitionNames[p]
	}
	return fmt.Sprintf("PartitionStrategy(%d)", int(p))
}

// ParsePartition maps a strategy name to a PartitionStrategy
func ParsePartition(name string) (PartitionStrategy, error) {
	for i, n := range partitionNames {
		if n == name {
			return PartitionStrategy(i), nil
		}
	}
	return 0, fmt.Errorf("renderer: unknown partition strategy %q", name)
}

// Region is a set of pixels traced together by one worker. Pixels holds
// row-major pixel indices in trace order. Regions of one partition never
// share a pixel.
type Region struct {
	ID     int
	Bounds image.Rectangle
	Pixels []int
}

// Partition splits a width x height grid. chunks is the row band count for
// RowChunks and tileSize the tile edge for MortonTiles.
func Partition(strategy PartitionStrategy, width, height, chunks, tileSize int) []Region {
	if width <= 0 || height <= 0 {
		return nil
	}

	switch strategy {
	case RowChunks:
		return rowChunks(width, height, chunks)
	case WorkGroups:
		return tiles(width, height, WorkGroupSize, false)
	default:
		return tiles(width, height, tileSize, true)
	}
}

// rowChunks splits rows as evenly as possible; earlier bands take the remainder
func rowChunks(width, height, chunks int) []Region {
	chunks = max(1, min(chunks, height))
	regions := make([]Region, 0, chunks)

	base, extra := height/chunks, height%chunks
	y := 0
	for i := 0; i < chunks; i++ {
		rows := base
		if i < extra {
			rows++
		}
		bounds := image.Rect(0, y, width, y+rows)
		regions = append(regions, Region{ID: i, Bounds: bounds, Pixels: rowMajor(bounds, width)})
		y += rows
	}
	return regions
}

// tiles covers the grid with size x size tiles clipped at the edges. With
// morton set, tiles and the pixels inside them are visited in Z-order.
func tiles(width, height, size int, morton bool) []Region {
	size = max(1, size)
	tilesX := (width + size - 1) / size
	tilesY := (height + size - 1) / size

	type tile struct {
		x, y int
	}
	grid := make([]tile, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			grid = append(grid, tile{tx, ty})
		}
	}
	if morton {
		sort.SliceStable(grid, func(i, j int) bool {
			return MortonEncode(uint32(grid[i].x), uint32(grid[i].y)) < MortonEncode(uint32(grid[j].x), uint32(grid[j].y))
		})
	}

	regions := make([]Region, 0, len(grid))
	for id, t := range grid {
		x0, y0 := t.x*size, t.y*size
		bounds := image.Rect(x0, y0, min(x0+size, width), min(y0+size, height))

		var pixels []int
		if morton {
			for _, p := range MortonOrder(bounds) {
				pixels = append(pixels, p.Y*width+p.X)
			}
		} else {
			pixels = rowMajor(bounds, width)
		}
		regions = append(regions, Region{ID: id, Bounds: bounds, Pixels: pixels})
	}
	return regions
}

func rowMajor(bounds image.Rectangle, width int) []int {
	pixels := make([]int, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixels = append(pixels, y*width+x)
		}
	}
	return pixels
}
