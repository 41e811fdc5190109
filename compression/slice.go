package compression

import (
	"errors"
)

// Slice codec errors.
var (
	ErrInvalidDimensions = errors.New("compression: invalid slice dimensions")
	ErrShortSource       = errors.New("compression: source raster too small")
	ErrShortBuffer       = errors.New("compression: destination buffer too small")
	ErrCorrupted         = errors.New("compression: corrupted slice payload")
)

// Geometry limits.
const (
	channels = 3

	maxDimensionBits = 29

	// MaxDimension is the largest width or height a slice may have.
	// Dimensions travel as 29-bit ULEB128 values.
	MaxDimension = 1<<maxDimensionBits - 1

	// EndOfSliceMarkerSize is the byte length of the zero end marker that
	// terminates every slice payload.
	EndOfSliceMarkerSize = 4
)

// CompressSliceBound returns the worst-case compressed size of a
// width-by-height slice, including the end-of-slice marker.
func CompressSliceBound(width, height int) uint64 {
	return uint64(width)*uint64(height)*(channels+1) + EndOfSliceMarkerSize
}

func validDimensions(width, height int) bool {
	return width > 0 && width <= MaxDimension && height > 0 && height <= MaxDimension
}

// CompressSlice encodes a width-by-height band of 3-channel pixels from src
// into dst, returning the number of bytes written including the end-of-slice
// marker. flags selects the predictor, delta bias, tile height and
// dictionary mode for the whole slice.
//
// dst must be at least CompressSliceBound(width, height) bytes; the encoder
// writes in a single pass and never reallocates. src must hold at least
// width*height*3 bytes in row-major R,G,B order.
func CompressSlice(dst, src []byte, width, height int, flags uint8) (int, error) {
	if !validDimensions(width, height) {
		return 0, ErrInvalidDimensions
	}
	if uint64(len(src)) < uint64(width)*uint64(height)*channels {
		return 0, ErrShortSource
	}
	if uint64(len(dst)) < CompressSliceBound(width, height) {
		return 0, ErrShortBuffer
	}

	cfg := ParseFlags(flags)
	bp := newBiasParams(cfg.Bias)
	use2D := cfg.twoD()
	useCtx := cfg.UseContextualDict
	predictor := cfg.Predictor

	var runCache [runCacheSize]byte
	var dict [dictNumBuckets * dictEntriesPerBucket]Pixel
	var sldWnd [TileWidth * 2]Pixel

	g := newGrid(width, height, cfg)
	lastPixel := g.lastPixelOffset()

	pos := 0
	run, run0 := uint32(0), uint32(0)
	sldOffset := uint32(0)
	var prev Pixel

	for tileY, tileLine := 0, 0; tileY < g.tilesY; tileY, tileLine = tileY+1, tileLine+g.tileStride {
		pixelsV := g.tileH
		if tileY == g.tilesY-1 {
			pixelsV = g.remLines
		}
		for i := 0; i < g.tilesX; i++ {
			tileX := i
			if tileY&1 == 1 {
				tileX = g.tilesX - 1 - i
			}
			pixelsH := TileWidth
			if tileX == g.tilesX-1 {
				pixelsH = g.remCols
			}
			tileOffset := tileLine + tileX*g.tileInnerStride
			tileXOdd := tileX&1 == 1
			for y := 0; y < pixelsV; y++ {
				yy := y
				if tileXOdd {
					yy = pixelsV - 1 - y
				}
				rowOffset := tileOffset + yy*g.stride
				rightToLeft := (tileY^yy)&1 == 1
				for x := 0; x < pixelsH; x++ {
					xx := x
					if rightToLeft {
						xx = pixelsH - 1 - x
					}
					pixelPos := rowOffset + xx*channels
					pixel := Pixel{src[pixelPos], src[pixelPos+1], src[pixelPos+2]}

					prediction := prev
					switch predictor {
					case PredictorDecorrelateRed:
						if use2D && y > 0 {
							w := sldWnd[(sldOffset-uint32(x<<1)-1)&sldWndMask]
							prediction.R = uint8((uint32(prediction.R)*7 + uint32(w.R)) >> 3)
						}
						d := pixel.R - prediction.R
						prediction.G += d
						prediction.B += d
					case PredictorDecorrelateGreen:
						if use2D && y > 0 {
							w := sldWnd[(sldOffset-uint32(x<<1)-1)&sldWndMask]
							prediction.G = uint8((uint32(prediction.G)*7 + uint32(w.G)) >> 3)
						}
						d := pixel.G - prediction.G
						prediction.R += d
						prediction.B += d
					case PredictorDecorrelateBlue:
						if use2D && y > 0 {
							w := sldWnd[(sldOffset-uint32(x<<1)-1)&sldWndMask]
							prediction.B = uint8((uint32(prediction.B)*7 + uint32(w.B)) >> 3)
						}
						d := pixel.B - prediction.B
						prediction.R += d
						prediction.G += d
					}
					delta := Delta{
						R: int8(pixel.R - prediction.R),
						G: int8(pixel.G - prediction.G),
						B: int8(pixel.B - prediction.B),
					}

					if bp.inSmallRange(delta) {
						b := bp.packRunByte(delta)
						if run == run0 && b == 0 {
							run0++
						}
						runCache[run] = b
						run++
						if run == runCacheSize || pixelPos == lastPixel {
							pos += encodeRun(dst[pos:], runCache[:], &run, &run0)
						}
					} else {
						if run > 0 {
							pos += encodeRun(dst[pos:], runCache[:], &run, &run0)
						}
						slot := pixelHash(pixel)
						if useCtx {
							slot |= (uint32(prev.R) + uint32(prev.G)) >> (9 - dictContextBits) << reducedOffsetBits
						}
						if dict[slot] == pixel {
							dst[pos] = opReducedOffset | uint8(slot&(dictEntriesPerBucket-1))
							pos++
						} else {
							dict[slot] = pixel
							switch {
							case checkRange(delta.R, 16) && checkRange(delta.G, 16) && checkRange(delta.B, 16):
								v := uint16(opDelta15b)<<8 |
									uint16(uint8(delta.R)&0x1F)<<10 |
									uint16(uint8(delta.G)&0x1F)<<5 |
									uint16(uint8(delta.B)&0x1F)
								dst[pos] = uint8(v >> 8)
								dst[pos+1] = uint8(v)
								pos += 2
							case checkRange(delta.R, bp.range20R) && checkRange(delta.G, bp.range20G) &&
								checkRange(delta.B, bp.range20B) && nonzeroChannels(delta) > 1:
								v := uint32(opDelta20b)<<16 |
									uint32(uint8(delta.R)&bp.mask20R)<<bp.shift20R |
									uint32(uint8(delta.G)&bp.mask20G)<<bp.shift20G |
									uint32(uint8(delta.B)&bp.mask20B)
								dst[pos] = uint8(v >> 16)
								dst[pos+1] = uint8(v >> 8)
								dst[pos+2] = uint8(v)
								pos += 3
							default:
								opPos := pos
								pos++
								c := uint8(opMaskDelta8)
								if delta.R != 0 {
									dst[pos] = uint8(delta.R)
									pos++
									c |= 0x04
								}
								if delta.G != 0 {
									dst[pos] = uint8(delta.G)
									pos++
									c |= 0x02
								}
								if delta.B != 0 {
									dst[pos] = uint8(delta.B)
									pos++
									c |= 0x01
								}
								dst[opPos] = c
							}
						}
					}
					prev = pixel
					if use2D {
						sldWnd[sldOffset&sldWndMask] = pixel
						sldOffset++
					}
				}
			}
		}
	}
	if run > 0 {
		pos += encodeRun(dst[pos:], runCache[:], &run, &run0)
	}
	dst[pos] = 0
	dst[pos+1] = 0
	dst[pos+2] = 0
	dst[pos+3] = 0
	return pos + EndOfSliceMarkerSize, nil
}

// nonzeroChannels counts the nonzero components of d.
func nonzeroChannels(d Delta) int {
	n := 0
	if d.R != 0 {
		n++
	}
	if d.G != 0 {
		n++
	}
	if d.B != 0 {
		n++
	}
	return n
}

// DecompressSlice decodes a slice payload into dst, reconstructing a
// width-by-height band of 3-channel pixels. src is the payload as framed on
// disk: the opcode stream followed by the 4-byte end-of-slice marker.
//
// The decoder mirrors the encoder's traversal and prediction state exactly.
// It fails with ErrCorrupted if an opcode would read past the payload, if
// the payload ends before every pixel is reconstructed, if opcode bytes
// remain once the raster is complete, or if the end marker is not zero.
func DecompressSlice(dst, src []byte, width, height int, flags uint8) error {
	if !validDimensions(width, height) {
		return ErrInvalidDimensions
	}
	if uint64(len(dst)) < uint64(width)*uint64(height)*channels {
		return ErrShortBuffer
	}
	if len(src) <= EndOfSliceMarkerSize {
		return ErrCorrupted
	}
	srcEnd := len(src) - EndOfSliceMarkerSize

	cfg := ParseFlags(flags)
	bp := newBiasParams(cfg.Bias)
	use2D := cfg.twoD()
	useCtx := cfg.UseContextualDict
	predictor := cfg.Predictor

	var runCache [runCacheSize]byte
	var dict [dictNumBuckets * dictEntriesPerBucket]Pixel
	var sldWnd [TileWidth * 2]Pixel

	g := newGrid(width, height, cfg)

	pos := 0
	cacheIndex := uint32(0)
	run, run0 := uint32(0), uint32(0)
	sldOffset := uint32(0)
	var prev Pixel

	for tileY, tileLine := 0, 0; tileY < g.tilesY; tileY, tileLine = tileY+1, tileLine+g.tileStride {
		pixelsV := g.tileH
		if tileY == g.tilesY-1 {
			pixelsV = g.remLines
		}
		for i := 0; i < g.tilesX; i++ {
			tileX := i
			if tileY&1 == 1 {
				tileX = g.tilesX - 1 - i
			}
			pixelsH := TileWidth
			if tileX == g.tilesX-1 {
				pixelsH = g.remCols
			}
			tileOffset := tileLine + tileX*g.tileInnerStride
			tileXOdd := tileX&1 == 1
			for y := 0; y < pixelsV; y++ {
				yy := y
				if tileXOdd {
					yy = pixelsV - 1 - y
				}
				rowOffset := tileOffset + yy*g.stride
				rightToLeft := (tileY^yy)&1 == 1
				for x := 0; x < pixelsH; x++ {
					xx := x
					if rightToLeft {
						xx = pixelsH - 1 - x
					}
					pixelPos := rowOffset + xx*channels

					var delta Delta
					var pixel Pixel
					fromDict := false
					addToDict := false

					switch {
					case run0 > 0:
						run0--
					case run > 0:
						delta = bp.unpackRunByte(runCache[cacheIndex])
						cacheIndex++
						run--
					default:
						if pos >= srcEnd {
							return ErrCorrupted
						}
						op := src[pos]
						pos++
						switch {
						case op&opcodeMask(3) == opRunDelta8:
							run = uint32(op &^ opcodeMask(3))
							if run > 0xF {
								if pos >= srcEnd {
									return ErrCorrupted
								}
								run = run&0xF | uint32(src[pos])<<4
								pos++
							}
							run++
							n, ok := fillRunCache(runCache[:], src[pos:srcEnd], run)
							pos += n
							if !ok {
								return ErrCorrupted
							}
							cacheIndex = 0
							run0 = 0
							// The first cached delta belongs to this pixel
							// position; reprocess it on the next iteration.
							x--
							continue
						case op&opcodeMask(5) == op3chnRunDelta0:
							run0 = uint32(op ^ op3chnRunDelta0)
						case op&opcodeMask(2) == opReducedOffset:
							slot := uint32(op ^ opReducedOffset)
							if useCtx {
								slot |= (uint32(prev.R) + uint32(prev.G)) >> (9 - dictContextBits) << reducedOffsetBits
							}
							pixel = dict[slot]
							fromDict = true
						case op&opcodeMask(1) == opDelta15b:
							if pos >= srcEnd {
								return ErrCorrupted
							}
							v := uint16(op)<<8 | uint16(src[pos])
							pos++
							delta.R = int8(uint8(v>>10)<<3) >> 3
							delta.G = int8(uint8(v>>5)<<3) >> 3
							delta.B = int8(uint8(v)<<3) >> 3
							addToDict = true
						case op&opcodeMask(4) == opDelta20b:
							if pos+1 >= srcEnd {
								return ErrCorrupted
							}
							v := uint32(op^opDelta20b)<<16 | uint32(src[pos])<<8 | uint32(src[pos+1])
							pos += 2
							delta.R = int8(uint8(v>>bp.shift20R&uint32(bp.mask20R))<<(bp.shift20R-12)) >> (bp.shift20R - 12)
							delta.G = int8(uint8(v>>bp.shift20G&uint32(bp.mask20G))<<(8+bp.shift20G-bp.shift20R)) >> (8 + bp.shift20G - bp.shift20R)
							delta.B = int8(uint8(v&uint32(bp.mask20B))<<(8-bp.shift20G)) >> (8 - bp.shift20G)
							addToDict = true
						default: // opMaskDelta8
							if op&0x04 != 0 {
								if pos >= srcEnd {
									return ErrCorrupted
								}
								delta.R = int8(src[pos])
								pos++
							}
							if op&0x02 != 0 {
								if pos >= srcEnd {
									return ErrCorrupted
								}
								delta.G = int8(src[pos])
								pos++
							}
							if op&0x01 != 0 {
								if pos >= srcEnd {
									return ErrCorrupted
								}
								delta.B = int8(src[pos])
								pos++
							}
							addToDict = true
						}
					}

					if !fromDict {
						prediction := prev
						switch predictor {
						case PredictorDecorrelateRed:
							if use2D && y > 0 {
								w := sldWnd[(sldOffset-uint32(x<<1)-1)&sldWndMask]
								prediction.R = uint8((uint32(prediction.R)*7 + uint32(w.R)) >> 3)
							}
							d := uint8(delta.R)
							pixel.R = prediction.R + d
							pixel.G = prediction.G + uint8(delta.G) + d
							pixel.B = prediction.B + uint8(delta.B) + d
						case PredictorDecorrelateGreen:
							if use2D && y > 0 {
								w := sldWnd[(sldOffset-uint32(x<<1)-1)&sldWndMask]
								prediction.G = uint8((uint32(prediction.G)*7 + uint32(w.G)) >> 3)
							}
							d := uint8(delta.G)
							pixel.G = prediction.G + d
							pixel.R = prediction.R + uint8(delta.R) + d
							pixel.B = prediction.B + uint8(delta.B) + d
						case PredictorDecorrelateBlue:
							if use2D && y > 0 {
								w := sldWnd[(sldOffset-uint32(x<<1)-1)&sldWndMask]
								prediction.B = uint8((uint32(prediction.B)*7 + uint32(w.B)) >> 3)
							}
							d := uint8(delta.B)
							pixel.B = prediction.B + d
							pixel.R = prediction.R + uint8(delta.R) + d
							pixel.G = prediction.G + uint8(delta.G) + d
						default:
							pixel.R = prediction.R + uint8(delta.R)
							pixel.G = prediction.G + uint8(delta.G)
							pixel.B = prediction.B + uint8(delta.B)
						}

						if addToDict {
							slot := pixelHash(pixel)
							if useCtx {
								slot |= (uint32(prev.R) + uint32(prev.G)) >> (9 - dictContextBits) << reducedOffsetBits
							}
							dict[slot] = pixel
						}
					}

					dst[pixelPos] = pixel.R
					dst[pixelPos+1] = pixel.G
					dst[pixelPos+2] = pixel.B
					prev = pixel
					if use2D {
						sldWnd[sldOffset&sldWndMask] = pixel
						sldOffset++
					}
				}
			}
		}
	}

	if pos != srcEnd {
		return ErrCorrupted
	}
	if src[srcEnd] != 0 || src[srcEnd+1] != 0 || src[srcEnd+2] != 0 || src[srcEnd+3] != 0 {
		return ErrCorrupted
	}
	return nil
}
