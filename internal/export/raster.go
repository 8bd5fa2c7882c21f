package export

// Rasterizer draws one bar frame into a reusable RGB24 pixel buffer
// (3 bytes per pixel, row-major, top-to-bottom).
type Rasterizer struct {
	width   int
	height  int
	pix     []byte
	capPx   int // cap thickness in pixels
	stripPx int // progress strip thickness in pixels

	colors []rgb // per-bar, rebuilt when the bar count changes
}

// NewRasterizer allocates the frame buffer for the given pixel dimensions.
func NewRasterizer(width, height int) *Rasterizer {
	capPx := height / 120
	if capPx < 2 {
		capPx = 2
	}
	stripPx := height / 144
	if stripPx < 2 {
		stripPx = 2
	}
	return &Rasterizer{
		width:   width,
		height:  height,
		pix:     make([]byte, width*height*3),
		capPx:   capPx,
		stripPx: stripPx,
	}
}

// FrameSize reports the byte length of one raw frame.
func (r *Rasterizer) FrameSize() int {
	return len(r.pix)
}

func (r *Rasterizer) setRun(x0, x1, y int, c rgb) {
	if y < 0 || y >= r.height {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > r.width {
		x1 = r.width
	}
	base := (y*r.width + x0) * 3
	for x := x0; x < x1; x++ {
		r.pix[base] = c.r
		r.pix[base+1] = c.g
		r.pix[base+2] = c.b
		base += 3
	}
}

func (r *Rasterizer) fillRect(x0, x1, y0, y1 int, c rgb) {
	if y0 < 0 {
		y0 = 0
	}
	if y1 > r.height {
		y1 = r.height
	}
	for y := y0; y < y1; y++ {
		r.setRun(x0, x1, y, c)
	}
}

// Draw renders the bar heights (and caps, when non-nil) into the frame
// buffer and returns it. Bars sit on the bottom edge; each occupies 80% of
// its slot. A progress strip is drawn over the bottom rows last. The
// returned slice is reused by the next Draw.
func (r *Rasterizer) Draw(heights, caps []float64, progress float64) []byte {
	n := len(heights)
	if len(r.colors) != n {
		r.colors = make([]rgb, n)
		for i := range r.colors {
			r.colors[i] = barColor(i, n)
		}
	}

	// Clear to background.
	for i := 0; i < len(r.pix); i += 3 {
		r.pix[i] = background.r
		r.pix[i+1] = background.g
		r.pix[i+2] = background.b
	}

	if n > 0 {
		slot := float64(r.width) / float64(n)
		pad := slot * 0.1

		for i := range n {
			x0 := int(float64(i)*slot + pad)
			x1 := int(float64(i+1)*slot - pad)
			if x1 <= x0 {
				x1 = x0 + 1
			}

			barPx := int(clamp01(heights[i]) * float64(r.height))
			r.fillRect(x0, x1, r.height-barPx, r.height, r.colors[i])

			if caps != nil && i < len(caps) {
				capBase := r.height - int(clamp01(caps[i])*float64(r.height))
				if capBase < r.capPx {
					capBase = r.capPx // keep a full-height cap on screen
				}
				if capBase < r.height-barPx {
					r.fillRect(x0, x1, capBase-r.capPx, capBase, capColor(r.colors[i]))
				}
			}
		}
	}

	r.drawProgress(progress)
	return r.pix
}

// drawProgress draws the inset strip near the bottom edge: a dim track
// across the strip width with the played portion filled in the accent
// color.
func (r *Rasterizer) drawProgress(progress float64) {
	inset := r.width / 10
	y0 := r.height - r.height/18
	if y0+r.stripPx > r.height {
		y0 = r.height - r.stripPx
	}
	r.fillRect(inset, r.width-inset, y0, y0+r.stripPx, stripTrack)
	fill := int(clamp01(progress) * float64(r.width-2*inset))
	if fill > 0 {
		r.fillRect(inset, inset+fill, y0, y0+r.stripPx, accent)
	}
}
