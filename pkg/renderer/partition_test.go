package renderer

import (
	"testing"
)

func TestPartition_CoversEveryPixelOnce(t *testing.T) {
	sizes := []struct{ width, height int }{
		{1, 1},
		{37, 23},
		{64, 64},
		{17, 100},
	}

	for _, strategy := range []PartitionStrategy{RowChunks, MortonTiles, WorkGroups} {
		for _, size := range sizes {
			t.Run(strategy.String(), func(t *testing.T) {
				regions := Partition(strategy, size.width, size.height, 6, 8)
				owner := make([]int, size.width*size.height)
				for i := range owner {
					owner[i] = -1
				}

				for _, region := range regions {
					for _, index := range region.Pixels {
						if owner[index] != -1 {
							t.Fatalf("Pixel %d in regions %d and %d", index, owner[index], region.ID)
						}
						owner[index] = region.ID
						x, y := index%size.width, index/size.width
						if x < region.Bounds.Min.X || x >= region.Bounds.Max.X || y < region.Bounds.Min.Y || y >= region.Bounds.Max.Y {
							t.Fatalf("Pixel (%d,%d) outside region bounds %v", x, y, region.Bounds)
						}
					}
				}
				for index, id := range owner {
					if id == -1 {
						t.Fatalf("Pixel %d not covered in %dx%d", index, size.width, size.height)
					}
				}
			})
		}
	}
}

func TestPartition_RowChunks(t *testing.T) {
	tests := []struct {
		name         string
		height       int
		chunks       int
		expectedRows []int
	}{
		{"even", 12, 4, []int{3, 3, 3, 3}},
		{"remainder", 10, 4, []int{3, 3, 2, 2}},
		{"more chunks than rows", 3, 8, []int{1, 1, 1}},
		{"zero chunks", 5, 0, []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions := Partition(RowChunks, 7, tt.height, tt.chunks, 0)
			if len(regions) != len(tt.expectedRows) {
				t.Fatalf("Expected %d regions, got %d", len(tt.expectedRows), len(regions))
			}
			for i, region := range regions {
				if region.Bounds.Dy() != tt.expectedRows[i] || region.Bounds.Dx() != 7 {
					t.Errorf("Region %d: expected 7x%d, got %v", i, tt.expectedRows[i], region.Bounds)
				}
			}
		})
	}
}

func TestPartition_WorkGroups(t *testing.T) {
	regions := Partition(WorkGroups, 40, 20, 1, 0)
	// ceil(40/16) * ceil(20/16)
	if len(regions) != 6 {
		t.Fatalf("Expected 6 work-groups, got %d", len(regions))
	}
	if regions[0].Bounds.Dx() != WorkGroupSize || regions[0].Bounds.Dy() != WorkGroupSize {
		t.Errorf("Expected a full first group, got %v", regions[0].Bounds)
	}
	last := regions[len(regions)-1].Bounds
	if last.Dx() != 8 || last.Dy() != 4 {
		t.Errorf("Expected a clipped 8x4 last group, got %v", last)
	}
}

func TestParsePartition(t *testing.T) {
	for _, strategy := range []PartitionStrategy{RowChunks, MortonTiles, WorkGroups} {
		parsed, err := ParsePartition(strategy.String())
		if err != nil || parsed != strategy {
			t.Errorf("Expected %v, got %v (%v)", strategy, parsed, err)
		}
	}
	if _, err := ParsePartition("spiral"); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}

func TestEmptyPartition(t *testing.T) {
	if regions := Partition(MortonTiles, 0, 10, 4, 8); regions != nil {
		t.Errorf("Expected no regions, got %d", len(regions))
	}
}
