package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Sentinel errors for raster conversion.
var (
	ErrSizeMismatch = errors.New("raster: sample count does not match dimensions")
	ErrDecode       = errors.New("raster: cannot decode image")
)

// frameMagic prefixes lossless frames: magic, width, height, zstd(RGBA).
var frameMagic = []byte("RZST")

const frameHeader = 12

var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil)
	})
)

// FromPacked builds an RGBA image from packed 0xAARRGGBB samples.
func FromPacked(packed []int32, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(packed) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrSizeMismatch, len(packed), width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, v := range packed {
		u := uint32(v)
		o := i * 4
		img.Pix[o] = uint8(u >> 16)
		img.Pix[o+1] = uint8(u >> 8)
		img.Pix[o+2] = uint8(u)
		img.Pix[o+3] = uint8(u >> 24)
	}
	return img, nil
}

// ToPacked flattens img into packed 0xAARRGGBB samples.
func ToPacked(img *image.RGBA) []int32 {
	b := img.Bounds()
	out := make([]int32, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+4]
			out = append(out, int32(uint32(p[3])<<24|uint32(p[0])<<16|uint32(p[1])<<8|uint32(p[2])))
		}
	}
	return out
}

// Encode compresses img. A quality of 1 or more selects the lossless zstd
// frame; anything lower selects JPEG at quality*100.
func Encode(img *image.RGBA, quality float64) ([]byte, error) {
	if quality >= 1 {
		enc, err := encoder()
		if err != nil {
			return nil, fmt.Errorf("raster: zstd encoder: %w", err)
		}
		b := img.Bounds()
		header := make([]byte, frameHeader, frameHeader+len(img.Pix)/2)
		copy(header, frameMagic)
		binary.BigEndian.PutUint32(header[4:], uint32(b.Dx()))
		binary.BigEndian.PutUint32(header[8:], uint32(b.Dy()))
		return enc.EncodeAll(compact(img).Pix, header), nil
	}

	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("raster: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode turns compressed bytes produced by an engine back into an image.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) >= frameHeader && bytes.Equal(data[:4], frameMagic) {
		return decodeFrame(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func decodeFrame(data []byte) (*image.RGBA, error) {
	w := int(binary.BigEndian.Uint32(data[4:]))
	h := int(binary.BigEndian.Uint32(data[8:]))
	dec, err := decoder()
	if err != nil {
		return nil, fmt.Errorf("raster: zstd decoder: %w", err)
	}
	pix, err := dec.DecodeAll(data[frameHeader:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if w <= 0 || h <= 0 || len(pix) != w*h*4 {
		return nil, fmt.Errorf("%w: frame holds %d bytes for %dx%d", ErrDecode, len(pix), w, h)
	}
	return &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

// compact returns img with a zero origin and no row padding.
func compact(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	if b.Min == (image.Point{}) && img.Stride == b.Dx()*4 && len(img.Pix) == b.Dx()*b.Dy()*4 {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Clone returns a copy of img that shares no samples with it.
func Clone(img *image.RGBA) *image.RGBA {
	if img == nil {
		return nil
	}
	out := *img
	out.Pix = bytes.Clone(img.Pix)
	return &out
}

// Size returns the number of bytes held by img's samples.
func Size(img *image.RGBA) int {
	if img == nil {
		return 0
	}
	return len(img.Pix)
}
