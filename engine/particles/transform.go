package particles

// ScreenToNDC maps a cursor pixel position to normalized device coordinates. Pixel Y
// grows downward and device Y grows upward, so Y is negated. The screen centre maps to
// (0, 0), the top-left corner to (-1, 1) and the bottom-right corner to (1, -1).
//
// Parameters:
//   - x: the cursor x position in pixels
//   - y: the cursor y position in pixels
//   - width: the screen width in pixels
//   - height: the screen height in pixels
//
// Returns:
//   - Cursor: the cursor in normalized device coordinates
func ScreenToNDC(x, y float64, width, height int) Cursor {
	w := float64(width)
	h := float64(height)
	nx := (x - w/2) / w * 2
	ny := (y - h/2) / h * -2
	return Cursor{X: float32(nx), Y: float32(ny)}
}

// DispatchCount returns the number of work groups needed to cover count particles,
// rounding up so a trailing partial group is still dispatched.
//
// Parameters:
//   - count: the number of particles
//   - workGroupSize: the compute shader's @workgroup_size x
//
// Returns:
//   - uint32: the x dispatch dimension
func DispatchCount(count, workGroupSize int) uint32 {
	if count <= 0 || workGroupSize <= 0 {
		return 0
	}
	return uint32((count + workGroupSize - 1) / workGroupSize)
}
