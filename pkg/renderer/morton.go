package renderer

import (
	"image"
	"sort"
)

// MortonEncode interleaves the bits of x and y into a Z-order code, x in the even bits
func MortonEncode(x, y uint32) uint64 {
	return spread(x) | spread(y)<<1
}

// MortonDecode is the inverse of MortonEncode
func MortonDecode(code uint64) (x, y uint32) {
	return compact(code), compact(code >> 1)
}

func spread(v uint32) uint64 {
	x := uint64(v)
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}

func compact(code uint64) uint32 {
	x := code & 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0f0f0f0f0f0f0f0f
	x = (x | x>>4) & 0x00ff00ff00ff00ff
	x = (x | x>>8) & 0x0000ffff0000ffff
	x = (x | x>>16) & 0x00000000ffffffff
	return uint32(x)
}

// MortonOrder returns every point in bounds sorted by the Morton code of its
// offset from bounds.Min. Bounds of any size are supported.
func MortonOrder(bounds image.Rectangle) []image.Point {
	points := make([]image.Point, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			points = append(points, image.Pt(x, y))
		}
	}

	code := func(p image.Point) uint64 {
		return MortonEncode(uint32(p.X-bounds.Min.X), uint32(p.Y-bounds.Min.Y))
	}
	sort.Slice(points, func(i, j int) bool {
		return code(points[i]) < code(points[j])
	})
	return points
}
