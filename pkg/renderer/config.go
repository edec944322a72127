package renderer

// Config contains the image and scheduling settings for a Tracer
type Config struct {
	Width           int
	Height          int
	SamplesPerFrame int               // Radiance samples averaged per pixel each frame
	Jitter          bool              // Randomize the sample position inside each pixel
	Workers         int               // Number of parallel workers (0 = use CPU count)
	Partition       PartitionStrategy // How the pixel grid is split between workers
	TileSize        int               // Tile edge for MortonTiles
	Exposure        float64           // Linear scale applied before tone mapping
	Gamma           float64
	Seed            int64 // Base seed for per-region samplers
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:           400,
		Height:          225,
		SamplesPerFrame: 1,
		Jitter:          true,
		Workers:         0,
		Partition:       MortonTiles,
		TileSize:        32,
		Exposure:        1.0,
		Gamma:           2.2,
		Seed:            42,
	}
}
