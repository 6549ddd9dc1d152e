// Package frame defines the image buffer type that flows through the
// processing chain.
package frame

import "fmt"

// Shape describes the dimensions of a frame buffer.
type Shape struct {
	Width    int
	Height   int
	Channels int
	Len      int
}

// String returns a compact representation, e.g. "1920x1080x3".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Channels)
}

// Frame is an 8-bit image buffer with height x width x channels layout.
// Pixel data is stored row-major: Pix[(y*Width+x)*Channels+c].
type Frame struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// New allocates a zeroed frame with the given dimensions.
func New(width, height, channels int) *Frame {
	return &Frame{
		Pix:      make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// Shape returns the frame's dimensional shape including element count.
func (f *Frame) Shape() Shape {
	return Shape{
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
		Len:      len(f.Pix),
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{
		Pix:      pix,
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
	}
}

// At returns the value at pixel (x, y) channel c.
func (f *Frame) At(x, y, c int) byte {
	return f.Pix[(y*f.Width+x)*f.Channels+c]
}

// Set stores a value at pixel (x, y) channel c.
func (f *Frame) Set(x, y, c int, v byte) {
	f.Pix[(y*f.Width+x)*f.Channels+c] = v
}

// Fill sets every element to v.
func (f *Frame) Fill(v byte) {
	for i := range f.Pix {
		f.Pix[i] = v
	}
}
