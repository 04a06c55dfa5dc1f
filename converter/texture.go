package converter

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/HugoSmits86/nativewebp"
	"github.com/blezek/tga"
	_ "github.com/ftrvxmtrx/tga"
	_ "github.com/oov/psd"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// decodeImage decodes a loose texture. TGA files the registered decoders
// reject are retried with a second TGA reader.
func decodeImage(data []byte, name string) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil && strings.ToLower(filepath.Ext(name)) == ".tga" {
		// retry
		img, err = tga.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return img, nil
}

func scaleImage(img image.Image, scale float32, limit int) image.Image {
	rect := img.Bounds()

	if limit > 0 {
		sz := int(float32(max(rect.Dx(), rect.Dy())) * scale)
		if sz > limit {
			scale *= float32(limit) / float32(sz)
		}
	}

	if scale != 1.0 {
		w := max(int(float32(rect.Dx())*scale), 1)
		h := max(int(float32(rect.Dy())*scale), 1)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
		img = dst
	}
	return img
}

func encodeImage(img image.Image, mime string) (io.Reader, error) {
	w := new(bytes.Buffer)
	var err error
	if mime == webpMime {
		err = nativewebp.Encode(w, img, nil)
	} else {
		err = png.Encode(w, img)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
