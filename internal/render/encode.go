package render

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
)

// Encode writes img as "png" or "bmp".
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "", "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == "bmp" {
		return "image/bmp"
	}
	return "image/png"
}
