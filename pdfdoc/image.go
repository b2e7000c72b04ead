package pdfdoc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// rasterImage is the decoded sample data of an image XObject.
type rasterImage struct {
	Width            int
	Height           int
	Components       int // samples per pixel: 1, 3 or 4
	BitsPerComponent int
	Data             []byte

	// Palette maps sample values to colors for Indexed color spaces
	Palette color.Palette

	// Invert flips gray samples, from a /Decode [1 0] array
	Invert bool
}

func (img *rasterImage) rowBytes() int {
	return (img.Width*img.Components*img.BitsPerComponent + 7) / 8
}

// ToPNG converts the sample data to PNG.
func (img *rasterImage) ToPNG() ([]byte, error) {
	goImg, err := img.toImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (img *rasterImage) toImage() (image.Image, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	switch img.BitsPerComponent {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", img.BitsPerComponent)
	}

	expectedSize := img.rowBytes() * img.Height
	if len(img.Data) < expectedSize {
		return nil, fmt.Errorf("insufficient data: got %d, expected %d", len(img.Data), expectedSize)
	}

	switch {
	case img.Palette != nil:
		return img.toPaletted()
	case img.Components == 1:
		return img.toGray(), nil
	case img.Components == 3:
		return img.toRGB(), nil
	case img.Components == 4:
		return img.toCMYK(), nil
	default:
		return nil, fmt.Errorf("unsupported component count: %d", img.Components)
	}
}

// sample returns component c of pixel x on row y, unscaled.
func (img *rasterImage) sample(y, x, c int) uint8 {
	row := img.Data[y*img.rowBytes():]
	bpc := img.BitsPerComponent
	if bpc == 8 {
		return row[x*img.Components+c]
	}
	bit := (x*img.Components + c) * bpc
	shift := 8 - bpc - bit%8
	return (row[bit/8] >> shift) & (1<<bpc - 1)
}

// scaled returns a sample stretched to the 0-255 range.
func (img *rasterImage) scaled(y, x, c int) uint8 {
	v := img.sample(y, x, c)
	switch img.BitsPerComponent {
	case 1:
		return v * 255
	case 2:
		return v * 85
	case 4:
		return v * 17
	default:
		return v
	}
}

func (img *rasterImage) toGray() *image.Gray {
	goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			v := img.scaled(y, x, 0)
			if img.Invert {
				v = 255 - v
			}
			goImg.Pix[y*goImg.Stride+x] = v
		}
	}
	return goImg
}

func (img *rasterImage) toRGB() *image.RGBA {
	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := y*goImg.Stride + x*4
			goImg.Pix[i+0] = img.scaled(y, x, 0)
			goImg.Pix[i+1] = img.scaled(y, x, 1)
			goImg.Pix[i+2] = img.scaled(y, x, 2)
			goImg.Pix[i+3] = 255
		}
	}
	return goImg
}

func (img *rasterImage) toCMYK() *image.RGBA {
	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := color.CMYKToRGB(
				img.scaled(y, x, 0), img.scaled(y, x, 1),
				img.scaled(y, x, 2), img.scaled(y, x, 3))
			i := y*goImg.Stride + x*4
			goImg.Pix[i+0] = r
			goImg.Pix[i+1] = g
			goImg.Pix[i+2] = b
			goImg.Pix[i+3] = 255
		}
	}
	return goImg
}

func (img *rasterImage) toPaletted() (*image.Paletted, error) {
	if img.Components != 1 {
		return nil, fmt.Errorf("indexed image with %d components", img.Components)
	}
	goImg := image.NewPaletted(image.Rect(0, 0, img.Width, img.Height), img.Palette)
	last := uint8(len(img.Palette) - 1)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			goImg.Pix[y*goImg.Stride+x] = min(img.sample(y, x, 0), last)
		}
	}
	return goImg, nil
}

// parsePalette builds a palette from an Indexed lookup table whose entries
// have components samples each in the base color space.
func parsePalette(lookup []byte, components int) color.Palette {
	if components <= 0 || len(lookup) < components {
		return nil
	}
	n := min(len(lookup)/components, 256)
	palette := make(color.Palette, n)
	for i := range palette {
		entry := lookup[i*components : (i+1)*components]
		switch components {
		case 1:
			palette[i] = color.Gray{Y: entry[0]}
		case 3:
			palette[i] = color.RGBA{R: entry[0], G: entry[1], B: entry[2], A: 255}
		case 4:
			r, g, b := color.CMYKToRGB(entry[0], entry[1], entry[2], entry[3])
			palette[i] = color.RGBA{R: r, G: g, B: b, A: 255}
		default:
			return nil
		}
	}
	return palette
}

// unpredict reverses PNG row filters when data still carries the filter
// type byte at the start of each row. Data of any other length is returned
// unchanged.
func unpredict(data []byte, rowBytes, height, bytesPerPixel int) ([]byte, error) {
	stride := rowBytes + 1
	if height <= 0 || len(data) != stride*height {
		return data, nil
	}

	out := make([]byte, rowBytes*height)
	prev := make([]byte, rowBytes)
	for y := 0; y < height; y++ {
		filter := data[y*stride]
		src := data[y*stride+1 : (y+1)*stride]
		cur := out[y*rowBytes : (y+1)*rowBytes]
		for i := range cur {
			var left, upLeft byte
			if i >= bytesPerPixel {
				left = cur[i-bytesPerPixel]
				upLeft = prev[i-bytesPerPixel]
			}
			up := prev[i]
			switch filter {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d on row %d", filter, y)
			}
		}
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
