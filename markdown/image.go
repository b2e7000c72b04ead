package markdown

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif" // register GIF decoding
	"image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/tsawler/docmark/model"
)

// jpegQuality is used when a scaled JPEG is re-encoded.
const jpegQuality = 90

// renderImage returns the Markdown image for img, or "" when the image
// cannot be embedded within MaxImageSize.
func (r *Renderer) renderImage(img *model.Image, ctx inlineContext) string {
	data, mime, ok := r.prepareImage(img)
	if !ok {
		return ""
	}
	return "![" + escapeAlt(img.AltText, ctx) + "](data:" + mime + ";base64," +
		base64.StdEncoding.EncodeToString(data) + ")"
}

// prepareImage returns the bytes and MIME type to embed, scaling the image
// down when its longer edge exceeds MaxImageSize. Images that cannot be
// decoded are embedded unchanged only when their declared size fits.
func (r *Renderer) prepareImage(img *model.Image) ([]byte, string, bool) {
	if len(img.Data) == 0 {
		return nil, "", false
	}
	limit := r.opts.MaxImageSize

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		fits := img.Width > 0 && img.Height > 0 && max(img.Width, img.Height) <= limit
		if !fits {
			return nil, "", false
		}
		return img.Data, mimeOr(img.MIMEType, "application/octet-stream"), true
	}

	mime := "image/" + format
	if max(cfg.Width, cfg.Height) <= limit {
		return img.Data, mime, true
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, "", false
	}
	w, h := scaledSize(cfg.Width, cfg.Height, limit)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", false
		}
		return buf.Bytes(), "image/jpeg", true
	}
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", false
	}
	return buf.Bytes(), "image/png", true
}

// scaledSize fits w×h within limit on the longer edge, keeping the aspect
// ratio and at least one pixel on each side.
func scaledSize(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, (h*limit+w/2)/w)
	}
	return max(1, (w*limit+h/2)/h), limit
}

func mimeOr(mime, fallback string) string {
	if mime = strings.TrimSpace(mime); mime != "" {
		return mime
	}
	return fallback
}

// escapeAlt flattens alt text onto one line. Inside a table cell a pipe
// would end the cell, so it is escaped as well.
func escapeAlt(alt string, ctx inlineContext) string {
	alt = strings.Join(strings.Fields(alt), " ")
	alt = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`).Replace(alt)
	if ctx == cellContext {
		alt = strings.ReplaceAll(alt, "|", `\|`)
	}
	return alt
}
