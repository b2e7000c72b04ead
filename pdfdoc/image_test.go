package pdfdoc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	return img
}

func gray8(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

func TestRasterImage_ToPNG(t *testing.T) {
	tests := []struct {
		name  string
		img   rasterImage
		check func(t *testing.T, img image.Image)
	}{
		{
			name: "8-bit gray",
			img:  rasterImage{Width: 2, Height: 1, Components: 1, BitsPerComponent: 8, Data: []byte{0, 255}},
			check: func(t *testing.T, img image.Image) {
				if gray8(img.At(0, 0)) != 0 || gray8(img.At(1, 0)) != 255 {
					t.Errorf("pixels = %v %v", img.At(0, 0), img.At(1, 0))
				}
			},
		},
		{
			name: "1-bit rows padded to bytes",
			img:  rasterImage{Width: 3, Height: 2, Components: 1, BitsPerComponent: 1, Data: []byte{0b10100000, 0b01000000}},
			check: func(t *testing.T, img image.Image) {
				want := [2][3]uint8{{255, 0, 255}, {0, 255, 0}}
				for y := 0; y < 2; y++ {
					for x := 0; x < 3; x++ {
						if got := gray8(img.At(x, y)); got != want[y][x] {
							t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got, want[y][x])
						}
					}
				}
			},
		},
		{
			name: "inverted 1-bit",
			img:  rasterImage{Width: 1, Height: 1, Components: 1, BitsPerComponent: 1, Data: []byte{0x80}, Invert: true},
			check: func(t *testing.T, img image.Image) {
				if gray8(img.At(0, 0)) != 0 {
					t.Errorf("pixel = %v, want black", img.At(0, 0))
				}
			},
		},
		{
			name: "4-bit gray",
			img:  rasterImage{Width: 2, Height: 1, Components: 1, BitsPerComponent: 4, Data: []byte{0xF0}},
			check: func(t *testing.T, img image.Image) {
				if gray8(img.At(0, 0)) != 255 || gray8(img.At(1, 0)) != 0 {
					t.Errorf("pixels = %v %v", img.At(0, 0), img.At(1, 0))
				}
			},
		},
		{
			name: "RGB",
			img:  rasterImage{Width: 1, Height: 1, Components: 3, BitsPerComponent: 8, Data: []byte{255, 0, 0}},
			check: func(t *testing.T, img image.Image) {
				r, g, b, _ := img.At(0, 0).RGBA()
				if r>>8 != 255 || g != 0 || b != 0 {
					t.Errorf("pixel = %v, want red", img.At(0, 0))
				}
			},
		},
		{
			name: "CMYK",
			img:  rasterImage{Width: 1, Height: 1, Components: 4, BitsPerComponent: 8, Data: []byte{0, 0, 0, 255}},
			check: func(t *testing.T, img image.Image) {
				if gray8(img.At(0, 0)) != 0 {
					t.Errorf("pixel = %v, want black", img.At(0, 0))
				}
			},
		},
		{
			name: "indexed",
			img: rasterImage{Width: 2, Height: 1, Components: 1, BitsPerComponent: 8, Data: []byte{1, 0},
				Palette: parsePalette([]byte{0, 0, 0, 0, 0, 255}, 3)},
			check: func(t *testing.T, img image.Image) {
				_, _, b, _ := img.At(0, 0).RGBA()
				if b>>8 != 255 {
					t.Errorf("pixel 0 = %v, want blue", img.At(0, 0))
				}
				if gray8(img.At(1, 0)) != 0 {
					t.Errorf("pixel 1 = %v, want black", img.At(1, 0))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.img.ToPNG()
			if err != nil {
				t.Fatalf("ToPNG failed: %v", err)
			}
			img := decodePNG(t, data)
			if b := img.Bounds(); b.Dx() != tt.img.Width || b.Dy() != tt.img.Height {
				t.Errorf("size = %v, want %dx%d", b, tt.img.Width, tt.img.Height)
			}
			tt.check(t, img)
		})
	}
}

func TestRasterImage_Errors(t *testing.T) {
	tests := []struct {
		name string
		img  rasterImage
	}{
		{"short data", rasterImage{Width: 4, Height: 4, Components: 1, BitsPerComponent: 8, Data: []byte{1, 2}}},
		{"bad depth", rasterImage{Width: 1, Height: 1, Components: 1, BitsPerComponent: 16, Data: []byte{1, 2}}},
		{"bad components", rasterImage{Width: 1, Height: 1, Components: 2, BitsPerComponent: 8, Data: []byte{1, 2}}},
		{"empty", rasterImage{Components: 1, BitsPerComponent: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.img.ToPNG(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnpredict(t *testing.T) {
	// Two rows of 3 bytes: Sub then Up.
	data := []byte{
		1, 10, 5, 5,
		2, 1, 1, 1,
	}
	got, err := unpredict(data, 3, 2, 1)
	if err != nil {
		t.Fatalf("unpredict failed: %v", err)
	}
	want := []byte{10, 15, 20, 11, 16, 21}
	if !bytes.Equal(got, want) {
		t.Errorf("unpredict = %v, want %v", got, want)
	}

	plain := []byte{1, 2, 3, 4, 5, 6}
	if got, _ := unpredict(plain, 3, 2, 1); !bytes.Equal(got, plain) {
		t.Errorf("unfiltered data changed: %v", got)
	}

	if _, err := unpredict([]byte{9, 0, 0, 0}, 3, 1, 1); err == nil {
		t.Error("expected error for unknown filter type")
	}
}

func TestParsePalette(t *testing.T) {
	if p := parsePalette([]byte{1, 2}, 3); p != nil {
		t.Errorf("short lookup produced %v", p)
	}
	p := parsePalette([]byte{0, 128, 255}, 1)
	if len(p) != 3 || gray8(p[1]) != 128 {
		t.Errorf("gray palette = %v", p)
	}
}

func TestJPEGPool(t *testing.T) {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, image.NewGray(image.Rect(0, 0, 8, 4)), nil); err != nil {
		t.Fatal(err)
	}

	var file bytes.Buffer
	file.WriteString("%PDF-1.4\n5 0 obj\n<< /Filter /DCTDecode >>\nstream\n")
	file.Write(jpg.Bytes())
	file.WriteString("\nendstream\nendobj\n")

	pool := newJPEGPool(file.Bytes())
	if got := pool.take(4, 8); got != nil {
		t.Error("matched a JPEG with the wrong size")
	}
	got := pool.take(8, 4)
	if !bytes.Equal(got, jpg.Bytes()) {
		t.Errorf("take returned %d bytes, want the %d byte JPEG", len(got), jpg.Len())
	}
	if pool.take(8, 4) != nil {
		t.Error("JPEG handed out twice")
	}
}
