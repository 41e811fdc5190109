package compression

// Tile and traversal constants.
const (
	// TileWidth is the fixed tile width in pixels.
	TileWidth = 16

	tileHeightDefaultExponent = 4

	sldWndMask = TileWidth*2 - 1
)

// grid captures the tile geometry of a slice. Tiles are TileWidth pixels
// wide and tileH rows tall; the last tile column and row carry the
// remainders. Both codec directions walk the identical grid so that the
// prediction state lines up pixel for pixel.
type grid struct {
	width, height     int
	tileH             int
	tilesX, tilesY    int
	remCols, remLines int

	stride          int // bytes per pixel row
	tileStride      int // bytes per full tile row band
	tileInnerStride int // bytes per tile column step
}

func newGrid(width, height int, cfg Config) grid {
	g := grid{
		width:  width,
		height: height,
		tileH:  cfg.TileHeight(),
	}
	g.tilesX = (width + TileWidth - 1) / TileWidth
	g.tilesY = (height + g.tileH - 1) / g.tileH
	g.remCols = width - (g.tilesX-1)*TileWidth
	g.remLines = height - (g.tilesY-1)*g.tileH
	g.stride = width * channels
	g.tileStride = g.tileH * g.stride
	g.tileInnerStride = TileWidth * channels
	return g
}

// lastPixelOffset returns the byte offset of the pixel position at which the
// encoder force-flushes the open run cache.
func (g *grid) lastPixelOffset() int {
	tail := g.remCols
	if g.remLines&1 == 1 {
		tail = 1
	}
	return (g.width*g.height - tail) * channels
}
