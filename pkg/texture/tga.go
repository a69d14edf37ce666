package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA decoding errors.
var (
	ErrTGATruncated   = errors.New("truncated TGA data")
	ErrTGAUnsupported = errors.New("unsupported TGA variant")
)

// TGA image types.
const (
	tgaTypeTrueColor = 2
	tgaTypeRLE       = 10
)

const tgaHeaderSize = 18

// DecodeTGA decodes true-color TGA pixel data, uncompressed (type 2)
// or RLE compressed (type 10), at 24 or 32 bits per pixel. Color-mapped
// and grayscale variants are rejected.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	depth := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped image", ErrTGAUnsupported)
	}
	if imageType != tgaTypeTrueColor && imageType != tgaTypeRLE {
		return nil, fmt.Errorf("%w: image type %d", ErrTGAUnsupported, imageType)
	}
	if depth != 24 && depth != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, depth)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrTGAUnsupported, width, height)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	dec := tgaDecoder{
		pixels:      data[offset:],
		width:       width,
		height:      height,
		pixelSize:   depth / 8,
		topToBottom: descriptor&0x20 != 0, // descriptor bit 5 selects row order
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
	}

	var err error
	if imageType == tgaTypeTrueColor {
		err = dec.decodeRaw()
	} else {
		err = dec.decodeRLE()
	}
	if err != nil {
		return nil, err
	}
	return dec.img, nil
}

type tgaDecoder struct {
	pixels      []byte
	pos         int
	width       int
	height      int
	pixelSize   int
	topToBottom bool
	img         *image.RGBA
}

// readPixel consumes one BGR(A) pixel from the stream.
func (d *tgaDecoder) readPixel() (color.RGBA, error) {
	if d.pos+d.pixelSize > len(d.pixels) {
		return color.RGBA{}, ErrTGATruncated
	}
	p := d.pixels[d.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.pixelSize == 4 {
		c.A = p[3]
	}
	d.pos += d.pixelSize
	return c, nil
}

// set writes the n-th pixel in stream order, flipping rows for
// bottom-to-top files.
func (d *tgaDecoder) set(n int, c color.RGBA) {
	x := n % d.width
	y := n / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	total := d.width * d.height
	for n := 0; n < total; n++ {
		c, err := d.readPixel()
		if err != nil {
			return err
		}
		d.set(n, c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	total := d.width * d.height
	n := 0
	for n < total {
		if d.pos >= len(d.pixels) {
			return ErrTGATruncated
		}
		packet := d.pixels[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated count times.
			c, err := d.readPixel()
			if err != nil {
				return err
			}
			for i := 0; i < count && n < total; i++ {
				d.set(n, c)
				n++
			}
		} else {
			// Literal packet: count distinct pixels.
			for i := 0; i < count && n < total; i++ {
				c, err := d.readPixel()
				if err != nil {
					return err
				}
				d.set(n, c)
				n++
			}
		}
	}
	return nil
}

// looksLikeTGA applies a header plausibility test. TGA carries no magic
// bytes, so this only runs after signature-based detection fails.
func looksLikeTGA(data []byte) bool {
	if len(data) < tgaHeaderSize {
		return false
	}
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	depth := int(data[16])
	return colorMapType == 0 &&
		(imageType == tgaTypeTrueColor || imageType == tgaTypeRLE) &&
		(depth == 24 || depth == 32) &&
		width > 0 && height > 0
}
