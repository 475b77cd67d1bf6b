// Package compare implements the perceptual image comparison stage.
//
// The comparison runs in two passes over fixed-size blocks. The cold
// pass finds blocks containing at least one perceptually differing
// pixel and renders the dimmed background for the unchanged ones. The
// hot pass then examines only the changed blocks pixel by pixel, with
// anti-aliasing detection, distributing blocks across workers.
package compare

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/user/pixdiff/pkg/pipeline"
	"github.com/user/pixdiff/pkg/rawimage"
)

// SizeMismatchError is returned when the two images have different
// dimensions.
type SizeMismatchError struct {
	BaseWidth    uint32
	BaseHeight   uint32
	TargetWidth  uint32
	TargetHeight uint32
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("compare: image sizes differ: %dx%d vs %dx%d",
		e.BaseWidth, e.BaseHeight, e.TargetWidth, e.TargetHeight)
}

// Stage runs the perceptual comparison.
type Stage struct{}

// NewStage creates a new compare stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute compares the two input images.
func (s *Stage) Execute(ctx context.Context, input pipeline.CompareInput) (pipeline.CompareResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.CompareResult{}, err
	}

	var out *rawimage.Image
	if input.Render {
		img, err := rawimage.New(input.Base.Width, input.Base.Height)
		if err != nil {
			return pipeline.CompareResult{}, fmt.Errorf("compare: %w", err)
		}
		out = img
	}

	result, err := Diff(input.Base, input.Target, out, input.Options)
	if err != nil {
		return pipeline.CompareResult{}, err
	}
	result.DiffImage = out
	return result, nil
}

type block struct {
	startX, startY, endX, endY uint32
}

// blockSizeFor derives the scan block size from the image area,
// a power of two between 8 and 128.
func blockSizeFor(width, height uint32) uint32 {
	area := float64(width) * float64(height)
	scale := math.Sqrt(area) / 100
	raw := 16 * math.Sqrt(scale)
	exp := int(math.Round(math.Log2(raw)))
	if exp < 3 {
		exp = 3
	} else if exp > 7 {
		exp = 7
	}
	return 1 << uint(exp)
}

// Diff compares base against target. When out is non-nil the visual
// diff is rendered into it; out must have the same dimensions.
func Diff(base, target *rawimage.Image, out *rawimage.Image, opts pipeline.CompareOptions) (pipeline.CompareResult, error) {
	if base.Width != target.Width || base.Height != target.Height {
		return pipeline.CompareResult{}, &SizeMismatchError{
			BaseWidth:    base.Width,
			BaseHeight:   base.Height,
			TargetWidth:  target.Width,
			TargetHeight: target.Height,
		}
	}

	width, height := base.Width, base.Height
	totalPixels := uint64(width) * uint64(height)

	if out != nil && opts.DiffMask {
		clear(out.Pix)
	}

	if totalPixels == 0 {
		return pipeline.CompareResult{Identical: true}, nil
	}

	if base == target {
		if out != nil && !opts.DiffMask {
			fillBlockGray(base, out, opts.Alpha, 0, 0, width, height)
		}
		return pipeline.CompareResult{Identical: true}, nil
	}

	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = int(blockSizeFor(width, height))
	}
	bs := uint32(blockSize)
	blocksX := (width + bs - 1) / bs
	blocksY := (height + bs - 1) / bs

	maxDelta := thresholdToMaxDelta(opts.Threshold)
	drawBackground := out != nil && !opts.DiffMask

	// Cold pass: find changed blocks, gray out the rest.
	changed := make([]block, 0, max(int(blocksX*blocksY)/8, 16))
	for by := uint32(0); by < blocksY; by++ {
		for bx := uint32(0); bx < blocksX; bx++ {
			b := block{
				startX: bx * bs,
				startY: by * bs,
				endX:   min((bx+1)*bs, width),
				endY:   min((by+1)*bs, height),
			}
			if blockHasDiff(base, target, b, maxDelta) {
				changed = append(changed, b)
			} else if drawBackground {
				fillBlockGray(base, out, opts.Alpha, b.startX, b.startY, b.endX, b.endY)
			}
		}
	}

	if len(changed) == 0 {
		return pipeline.CompareResult{Identical: true}, nil
	}

	// Hot pass: per-pixel comparison of the changed blocks.
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(changed) {
		workers = len(changed)
	}

	hot := hotParams{
		base:         base,
		target:       target,
		out:          out,
		maxDelta:     maxDelta,
		includeAA:    opts.IncludeAA,
		drawBG:       drawBackground,
		alphaScaled:  opts.Alpha / 255,
		diffColor:    packColor(opts.DiffColor),
		diffColorAlt: packColor(opts.DiffColor),
		aaColor:      packColor(opts.AAColor),
	}
	if opts.DiffColorAlt != nil {
		hot.diffColorAlt = packColor(*opts.DiffColorAlt)
	}

	var diffCount atomic.Uint64
	if workers == 1 {
		var n uint64
		for _, b := range changed {
			n += processHotBlock(hot, b)
		}
		diffCount.Store(n)
	} else {
		blocks := make(chan block)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				var n uint64
				for b := range blocks {
					n += processHotBlock(hot, b)
				}
				diffCount.Add(n)
			}()
		}
		for _, b := range changed {
			blocks <- b
		}
		close(blocks)
		wg.Wait()
	}

	count := diffCount.Load()
	return pipeline.CompareResult{
		DiffCount:      count,
		DiffPercentage: float64(count) * 100 / float64(totalPixels),
		Identical:      count == 0,
	}, nil
}

// blockHasDiff reports whether any pixel in the block differs
// perceptually between the two images.
func blockHasDiff(a, b *rawimage.Image, blk block, maxDelta float64) bool {
	w := a.Width
	for y := blk.startY; y < blk.endY; y++ {
		for x := blk.startX; x < blk.endX; x++ {
			i := int(y*w + x)
			pa, pb := a.Packed(i), b.Packed(i)
			if pa != pb && math.Abs(colorDelta(pa, pb)) > maxDelta {
				return true
			}
		}
	}
	return false
}

type hotParams struct {
	base, target *rawimage.Image
	out          *rawimage.Image
	maxDelta     float64
	includeAA    bool
	drawBG       bool
	alphaScaled  float64
	diffColor    uint32
	diffColorAlt uint32
	aaColor      uint32
}

// processHotBlock runs the per-pixel comparison over one changed block
// and returns the number of differing pixels found in it.
func processHotBlock(p hotParams, blk block) uint64 {
	var count uint64
	w := p.base.Width

	for y := blk.startY; y < blk.endY; y++ {
		for x := blk.startX; x < blk.endX; x++ {
			i := int(y*w + x)
			pa, pb := p.base.Packed(i), p.target.Packed(i)

			if pa == pb {
				if p.drawBG {
					p.out.SetPacked(i, packGray(grayValue(pa, p.alphaScaled)))
				}
				continue
			}

			delta := colorDelta(pa, pb)
			if math.Abs(delta) <= p.maxDelta {
				if p.drawBG {
					p.out.SetPacked(i, packGray(grayValue(pa, p.alphaScaled)))
				}
				continue
			}

			if !p.includeAA &&
				(isAntialiased(p.base, p.target, x, y) || isAntialiased(p.target, p.base, x, y)) {
				if p.out != nil {
					p.out.SetPacked(i, p.aaColor)
				}
				continue
			}

			if p.out != nil {
				c := p.diffColor
				if delta < 0 {
					c = p.diffColorAlt
				}
				p.out.SetPacked(i, c)
			}
			count++
		}
	}
	return count
}

var _ pipeline.Stage[pipeline.CompareInput, pipeline.CompareResult] = (*Stage)(nil)
