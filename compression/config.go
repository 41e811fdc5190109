package compression

// Predictor selects the per-pixel prediction model of a slice.
type Predictor uint8

// Predictor identifiers. The decorrelating predictors refine one anchor
// channel and correct the other two with the anchor's delta.
const (
	PredictorDirect Predictor = iota
	PredictorDecorrelateRed
	PredictorDecorrelateGreen
	PredictorDecorrelateBlue
)

// DeltaBias selects which channel gets the narrow small-delta range in the
// packed run byte.
type DeltaBias uint8

// Delta bias identifiers. The two-bit field has a fourth, reserved value
// which decodes identically to BiasRed.
const (
	BiasRed DeltaBias = iota
	BiasGreen
	BiasBlue
	biasReserved
)

// Flags byte layout.
const (
	flagsMaskTileHeight     = 0x03
	flagsMaskPredictor      = 0x0C
	flagsMask2DPrediction   = 0x10
	flagsMaskContextualDict = 0x20
	flagsMaskDeltaBias      = 0xC0

	flagsShiftTileHeight     = 0
	flagsShiftPredictor      = 2
	flagsShift2DPrediction   = 4
	flagsShiftContextualDict = 5
	flagsShiftDeltaBias      = 6
)

// Config describes one slice's coding parameters, as packed into the flags
// byte of its header.
type Config struct {
	// TileHeightCode selects the tile height, (1 << (4+code)) - 1.
	// Valid codes are 0 through 3 for heights 15, 31, 63 and 127.
	TileHeightCode uint8

	Predictor Predictor

	// Use2DPrediction enables the sliding-window anchor refinement.
	// It has no effect with PredictorDirect.
	Use2DPrediction bool

	// UseContextualDict selects dictionary buckets from the previous
	// pixel's luminance proxy instead of bucket zero.
	UseContextualDict bool

	Bias DeltaBias
}

// ParseFlags unpacks a slice header flags byte.
func ParseFlags(flags uint8) Config {
	return Config{
		TileHeightCode:    flags & flagsMaskTileHeight >> flagsShiftTileHeight,
		Predictor:         Predictor(flags & flagsMaskPredictor >> flagsShiftPredictor),
		Use2DPrediction:   flags&flagsMask2DPrediction != 0,
		UseContextualDict: flags&flagsMaskContextualDict != 0,
		Bias:              DeltaBias(flags & flagsMaskDeltaBias >> flagsShiftDeltaBias),
	}
}

// Flags packs the configuration back into a flags byte.
func (c Config) Flags() uint8 {
	f := c.TileHeightCode & 0x03 << flagsShiftTileHeight
	f |= uint8(c.Predictor) & 0x03 << flagsShiftPredictor
	if c.Use2DPrediction {
		f |= flagsMask2DPrediction
	}
	if c.UseContextualDict {
		f |= flagsMaskContextualDict
	}
	f |= uint8(c.Bias) & 0x03 << flagsShiftDeltaBias
	return f
}

// TileHeight returns the tile height in pixel rows selected by the
// tile-height code.
func (c Config) TileHeight() int {
	return 1<<(tileHeightDefaultExponent+c.TileHeightCode) - 1
}

// twoD reports whether the sliding-window refinement is active: it requires
// a decorrelating predictor.
func (c Config) twoD() bool {
	return c.Predictor != PredictorDirect && c.Use2DPrediction
}
