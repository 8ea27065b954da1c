// Package imaging validates and normalises donation photos before storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the largest width or height kept for a donation photo.
const MaxDimension = 1280

const jpegQuality = 82

var (
	ErrUnsupportedImage = errors.New("only JPEG and PNG images are allowed")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

type Result struct {
	Data []byte
	MIME string
	Ext  string
}

// Process reads at most maxBytes, sniffs the real format from the bytes,
// downscales oversized photos and re-encodes everything as JPEG.
func Process(r io.Reader, maxBytes int64) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	if !allowedMIME[http.DetectContentType(data)] {
		return nil, ErrUnsupportedImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{
		Data: buf.Bytes(),
		MIME: "image/jpeg",
		Ext:  ".jpg",
	}, nil
}

// downscale keeps the aspect ratio and returns img untouched when it already
// fits.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = h * maxDim / w
	} else {
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
