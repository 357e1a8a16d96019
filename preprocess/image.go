package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"runtime"

	// register decoders for image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/swdee/go-openpose"
	"gocv.io/x/gocv"
)

// DecodeImage reads a JPEG, PNG, WebP, BMP or TIFF image and returns it as a
// 3 channel BGR Mat ready for inference.  Any alpha channel is dropped leaving
// the color values as stored, translucent pixels are not darkened.  The
// caller must Close the returned Mat.  On error a zero Mat holding no memory
// is returned.
func DecodeImage(r io.Reader) (gocv.Mat, error) {

	img, format, err := image.Decode(r)

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", openpose.ErrUnreadableImage, err)
	}

	if img.Bounds().Empty() {
		return gocv.Mat{}, fmt.Errorf("%w: %s image has no pixels",
			openpose.ErrUnreadableImage, format)
	}

	mat, err := imageToBGR(img)

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: error converting %s image to Mat: %v",
			openpose.ErrUnreadableImage, format, err)
	}

	return mat, nil
}

// DecodeImageBytes decodes an image held in memory, see DecodeImage
func DecodeImageBytes(buf []byte) (gocv.Mat, error) {
	return DecodeImage(bytes.NewReader(buf))
}

// ReadImageFile loads the image file at path, see DecodeImage
func ReadImageFile(path string) (gocv.Mat, error) {

	f, err := os.Open(path)

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: error opening file: %v",
			openpose.ErrUnreadableImage, err)
	}

	defer f.Close()

	return DecodeImage(f)
}

// imageToBGR converts a decoded image into a BGR Mat.  Images with alpha are
// converted from their non-premultiplied pixels as gocv.ImageToMatRGB would
// return premultiplied values for them.
func imageToBGR(img image.Image) (gocv.Mat, error) {

	switch m := img.(type) {
	case *image.NRGBA:
		return nrgbaToBGR(m)
	case *image.Paletted:
		return nrgbaToBGR(toNRGBA(m))
	}

	return gocv.ImageToMatRGB(img)
}

// nrgbaToBGR drops the alpha channel of a non-premultiplied RGBA image
func nrgbaToBGR(img *image.NRGBA) (gocv.Mat, error) {

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := img.Pix

	// sub images or padded rows need packing into a contiguous buffer
	if img.Stride != w*4 || b.Min != (image.Point{}) {
		pix = make([]byte, 0, w*h*4)

		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := img.PixOffset(b.Min.X, y)
			pix = append(pix, img.Pix[off:off+w*4]...)
		}
	}

	rgba, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, pix)

	if err != nil {
		return gocv.Mat{}, err
	}

	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	// rgba references pix until converted
	runtime.KeepAlive(pix)

	return bgr, nil
}

// toNRGBA expands a paletted image, keeping transparent palette entries at
// their stored color
func toNRGBA(img *image.Paletted) *image.NRGBA {

	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	palette := make([]color.NRGBA, len(img.Palette))

	for i, c := range img.Palette {
		palette[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			idx := int(img.ColorIndexAt(x, y))

			if idx < len(palette) {
				out.SetNRGBA(x-b.Min.X, y-b.Min.Y, palette[idx])
			}
		}
	}

	return out
}
