package pdfdoc

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/docmark/model"
)

// maxFormDepth bounds recursion through nested form XObjects.
const maxFormDepth = 4

// imageExtractor pulls image XObjects out of page resources. JPEG data is
// not reachable through the reader's stream filters, so DCTDecode images
// are matched against JPEG streams found by scanning the raw file.
type imageExtractor struct {
	file  []byte
	jpegs *jpegPool
	errs  []error
}

func newImageExtractor(file []byte) *imageExtractor {
	return &imageExtractor{file: file}
}

// pageImages returns the images drawn from a page's resources, in XObject
// name order. Failing images are recorded and skipped.
func (e *imageExtractor) pageImages(resources pdf.Value) []*model.Image {
	var images []*model.Image
	e.walk(resources, 0, "", func(img *model.Image) {
		images = append(images, img)
	})
	return images
}

func (e *imageExtractor) walk(resources pdf.Value, depth int, path string, emit func(*model.Image)) {
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != pdf.Dict {
		return
	}
	for _, name := range xobjects.Keys() {
		xobj := xobjects.Key(name)
		switch xobj.Key("Subtype").Name() {
		case "Image":
			img, err := e.extract(xobj)
			if err != nil {
				e.errs = append(e.errs, fmt.Errorf("image %s%s: %w", path, name, err))
				continue
			}
			if img != nil {
				emit(img)
			}
		case "Form":
			if depth < maxFormDepth {
				e.walk(xobj.Key("Resources"), depth+1, path+name+"/", emit)
			}
		}
	}
}

// extract decodes one image XObject. It returns nil without error for
// images that carry no picture of their own, such as stencil masks.
func (e *imageExtractor) extract(xobj pdf.Value) (img *model.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("decoding failed: %v", r)
		}
	}()

	if xobj.Key("ImageMask").Bool() {
		return nil, nil
	}

	width := int(xobj.Key("Width").Int64())
	height := int(xobj.Key("Height").Int64())
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("missing Width or Height")
	}

	switch filter := firstFilter(xobj.Key("Filter")); filter {
	case "DCTDecode":
		if e.jpegs == nil {
			e.jpegs = newJPEGPool(e.file)
		}
		data := e.jpegs.take(width, height)
		if data == nil {
			return nil, fmt.Errorf("no JPEG stream of %dx%d found", width, height)
		}
		return &model.Image{Data: data, MIMEType: "image/jpeg", Width: width, Height: height}, nil
	case "", "FlateDecode", "ASCII85Decode":
	default:
		return nil, fmt.Errorf("unsupported filter %s", filter)
	}

	raster, err := e.raster(xobj, width, height)
	if err != nil {
		return nil, err
	}
	data, err := raster.ToPNG()
	if err != nil {
		return nil, err
	}
	return &model.Image{Data: data, MIMEType: "image/png", Width: width, Height: height}, nil
}

func (e *imageExtractor) raster(xobj pdf.Value, width, height int) (*rasterImage, error) {
	bpc := int(xobj.Key("BitsPerComponent").Int64())
	if bpc == 0 {
		bpc = 8
	}

	img := &rasterImage{Width: width, Height: height, BitsPerComponent: bpc}
	if err := img.setColorSpace(xobj.Key("ColorSpace")); err != nil {
		return nil, err
	}
	if decode := xobj.Key("Decode"); decode.Len() >= 2 && img.Components == 1 && img.Palette == nil {
		img.Invert = decode.Index(0).Float64() > decode.Index(1).Float64()
	}

	rc := xobj.Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read image stream: %w", err)
	}

	bpp := max(1, img.Components*bpc/8)
	img.Data, err = unpredict(data, img.rowBytes(), height, bpp)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// setColorSpace sets the component count, and the palette for Indexed
// spaces, from a ColorSpace entry.
func (img *rasterImage) setColorSpace(cs pdf.Value) error {
	switch cs.Kind() {
	case pdf.Null:
		img.Components = 1
		return nil
	case pdf.Name:
		n, ok := componentsOf(cs.Name())
		if !ok {
			return fmt.Errorf("unsupported color space %s", cs.Name())
		}
		img.Components = n
		return nil
	case pdf.Array:
	default:
		return fmt.Errorf("invalid color space")
	}

	switch family := cs.Index(0).Name(); family {
	case "ICCBased":
		n := int(cs.Index(1).Key("N").Int64())
		if n != 1 && n != 3 && n != 4 {
			return fmt.Errorf("ICC profile with %d components", n)
		}
		img.Components = n
	case "Indexed":
		base := &rasterImage{}
		if err := base.setColorSpace(cs.Index(1)); err != nil || base.Palette != nil {
			return fmt.Errorf("unsupported Indexed base color space")
		}
		img.Components = 1
		img.Palette = parsePalette(lookupBytes(cs.Index(3)), base.Components)
		if img.Palette == nil {
			return fmt.Errorf("invalid Indexed lookup table")
		}
	case "CalGray", "CalRGB", "DeviceGray", "DeviceRGB", "DeviceCMYK":
		img.Components, _ = componentsOf(family)
	default:
		return fmt.Errorf("unsupported color space %s", family)
	}
	return nil
}

func componentsOf(name string) (int, bool) {
	switch name {
	case "DeviceGray", "CalGray", "G":
		return 1, true
	case "DeviceRGB", "CalRGB", "RGB":
		return 3, true
	case "DeviceCMYK", "CMYK":
		return 4, true
	}
	return 0, false
}

// lookupBytes reads an Indexed lookup table given as a string or stream.
func lookupBytes(v pdf.Value) []byte {
	switch v.Kind() {
	case pdf.String:
		return []byte(v.RawString())
	case pdf.Stream:
		rc := v.Reader()
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		return data
	}
	return nil
}

func firstFilter(v pdf.Value) string {
	switch v.Kind() {
	case pdf.Name:
		return v.Name()
	case pdf.Array:
		if v.Len() > 0 {
			return v.Index(0).Name()
		}
	}
	return ""
}

// jpegPool holds the JPEG streams embedded in a file, each handed out at
// most once.
type jpegPool struct {
	entries []jpegEntry
}

type jpegEntry struct {
	data          []byte
	width, height int
	used          bool
}

var (
	jpegStart = []byte{0xFF, 0xD8, 0xFF}
	streamEnd = []byte("endstream")
)

// newJPEGPool finds JPEG data between stream and endstream keywords whose
// headers decode.
func newJPEGPool(data []byte) *jpegPool {
	pool := &jpegPool{}
	offset := 0
	for {
		i := bytes.Index(data[offset:], jpegStart)
		if i < 0 {
			break
		}
		start := offset + i
		end := bytes.Index(data[start:], streamEnd)
		if end < 0 {
			break
		}
		chunk := bytes.TrimRight(data[start:start+end], "\r\n")
		if cfg, err := jpeg.DecodeConfig(bytes.NewReader(chunk)); err == nil {
			pool.entries = append(pool.entries, jpegEntry{data: chunk, width: cfg.Width, height: cfg.Height})
		}
		offset = start + end + len(streamEnd)
	}
	return pool
}

// take returns the first unused JPEG of the given size, or nil.
func (p *jpegPool) take(width, height int) []byte {
	for i := range p.entries {
		e := &p.entries[i]
		if !e.used && e.width == width && e.height == height {
			e.used = true
			return e.data
		}
	}
	return nil
}
