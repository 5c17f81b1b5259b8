package visualizer

import "errors"

var (
	// ErrNilGeometry is returned by Render when no geometry is given.
	ErrNilGeometry = errors.New("visualizer: nil geometry")

	// ErrVertexLength is returned when the vertex buffer is not made of
	// xyz triplets.
	ErrVertexLength = errors.New("visualizer: vertex buffer length is not a multiple of 3")

	// ErrColorLength is returned when a color buffer does not hold exactly
	// one RGBA tuple per vertex.
	ErrColorLength = errors.New("visualizer: color buffer length does not match vertex count")

	// ErrFramesOutOfRange is returned when the last frame points past the
	// end of the vertex buffer.
	ErrFramesOutOfRange = errors.New("visualizer: frame index points past the vertex buffer")
)
