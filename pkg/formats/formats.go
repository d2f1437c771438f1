// Package formats reads and writes the palette and indexed-image files the
// palette shader consumes: raw PAL palettes, SPR sprite frames and paletted
// BMP/PNG images.
package formats
