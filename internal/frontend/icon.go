package frontend

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

const (
	minIconSize     = 16
	maxIconSize     = 512
	defaultIconSize = 180
	// icons are rasterized at this multiple of the requested size and scaled down
	iconSupersample = 4
)

// iconRenderer rasterizes the embedded SVG favicon and caches one PNG per size.
type iconRenderer struct {
	svg   []byte
	mu    sync.Mutex
	cache map[int][]byte
}

func newIconRenderer(svg []byte) *iconRenderer {
	return &iconRenderer{
		svg:   svg,
		cache: make(map[int][]byte),
	}
}

func (r *iconRenderer) PNG(size int) ([]byte, error) {
	if size < minIconSize || size > maxIconSize {
		return nil, fmt.Errorf("icon size %d outside %d..%d", size, minIconSize, maxIconSize)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[size]; ok {
		return cached, nil
	}

	out, err := renderSVGToPNG(r.svg, size)
	if err != nil {
		return nil, err
	}
	r.cache[size] = out
	return out, nil
}

// renderSVGToPNG renders an SVG into a square PNG of the given size.
func renderSVGToPNG(svgData []byte, size int) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	large := size * iconSupersample
	icon.SetTarget(0, 0, float64(large), float64(large))

	// Rasterize onto a transparent canvas
	canvas := image.NewRGBA(image.Rect(0, 0, large, large))
	scanner := rasterx.NewScannerGV(large, large, canvas, canvas.Bounds())
	dasher := rasterx.NewDasher(large, large, scanner)
	icon.Draw(dasher, 1.0)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode rendered SVG as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
