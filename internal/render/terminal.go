package render

// Downsample reduces a w*h cell raster to tw*th blocks, keeping the highest
// value seen in each block so the newest particles stay visible.
func Downsample(cells []uint8, w, h, tw, th int) []uint8 {
	if tw <= 0 || th <= 0 || w <= 0 || h <= 0 || len(cells) < w*h {
		return nil
	}
	out := make([]uint8, tw*th)
	for y := 0; y < h; y++ {
		by := y * th / h
		for x := 0; x < w; x++ {
			v := cells[y*w+x]
			if v == 0 {
				continue
			}
			idx := by*tw + x*tw/w
			if v > out[idx] {
				out[idx] = v
			}
		}
	}
	return out
}
