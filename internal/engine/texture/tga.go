package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

var (
	ErrTGATruncated   = errors.New("tga data truncated")
	ErrTGAUnsupported = errors.New("unsupported tga variant")
)

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bpp          int
	topToBottom  bool // descriptor bit 5
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < 18 {
		return tgaHeader{}, fmt.Errorf("header: %w", ErrTGATruncated)
	}
	h := tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		topToBottom:  data[17]&0x20 != 0,
	}
	if h.colorMapType != 0 {
		return h, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE {
		return h, fmt.Errorf("%w: type %d", ErrTGAUnsupported, h.imageType)
	}
	if h.bpp != 24 && h.bpp != 32 {
		return h, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, h.bpp)
	}
	return h, nil
}

// DecodeTGA decodes an uncompressed or RLE true-color TGA image.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := 18 + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("id field: %w", ErrTGATruncated)
	}
	pixels := data[offset:]

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	bytesPerPixel := h.bpp / 8

	if h.imageType == TGATypeUncompressed {
		if len(pixels) < h.width*h.height*bytesPerPixel {
			return nil, fmt.Errorf("pixel data: %w", ErrTGATruncated)
		}
		for i := 0; i < h.width*h.height; i++ {
			h.set(img, i, readBGRA(pixels[i*bytesPerPixel:], bytesPerPixel))
		}
		return img, nil
	}

	if err := decodeTGARLE(img, h, pixels, bytesPerPixel); err != nil {
		return nil, err
	}
	return img, nil
}

// decodeTGARLE expands run-length packets. A short stream leaves the
// remaining pixels transparent rather than failing.
func decodeTGARLE(img *image.RGBA, h tgaHeader, pixels []byte, bytesPerPixel int) error {
	total := h.width * h.height
	pixelIdx, dataIdx := 0, 0

	for pixelIdx < total && dataIdx < len(pixels) {
		packet := pixels[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if dataIdx+bytesPerPixel > len(pixels) {
				break
			}
			c := readBGRA(pixels[dataIdx:], bytesPerPixel)
			dataIdx += bytesPerPixel
			for i := 0; i < count && pixelIdx < total; i++ {
				h.set(img, pixelIdx, c)
				pixelIdx++
			}
			continue
		}

		for i := 0; i < count && pixelIdx < total; i++ {
			if dataIdx+bytesPerPixel > len(pixels) {
				break
			}
			h.set(img, pixelIdx, readBGRA(pixels[dataIdx:], bytesPerPixel))
			dataIdx += bytesPerPixel
			pixelIdx++
		}
	}
	return nil
}

func (h tgaHeader) set(img *image.RGBA, idx int, c color.RGBA) {
	x, y := idx%h.width, idx/h.width
	if !h.topToBottom {
		y = h.height - 1 - y
	}
	img.SetRGBA(x, y, c)
}

func readBGRA(p []byte, bytesPerPixel int) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}
