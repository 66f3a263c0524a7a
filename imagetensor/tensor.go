// Package imagetensor holds the pixel buffers exchanged between image nodes.
//
// A Tensor is a single image stored as float32 samples in height, width, channel order, with
// every sample normalized to the 0..1 range. This matches the IMAGE type of the graph host
// (a batch of one).
package imagetensor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "github.com/richinsley/remix2go/imagetensor/dds"
)

// Tensor is an image with float32 samples in the 0..1 range
type Tensor struct {
	Width    int
	Height   int
	Channels int
	Data     []float32
}

// New allocates a zeroed tensor
func New(width, height, channels int) *Tensor {
	return &Tensor{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     make([]float32, width*height*channels),
	}
}

// FromImage converts img to a 3 channel RGB tensor. Alpha is dropped.
func FromImage(img image.Image) *Tensor {
	b := img.Bounds()
	t := New(b.Dx(), b.Dy(), 3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			t.Set(x-b.Min.X, y-b.Min.Y, 0, float32(c.R)/255.0)
			t.Set(x-b.Min.X, y-b.Min.Y, 1, float32(c.G)/255.0)
			t.Set(x-b.Min.X, y-b.Min.Y, 2, float32(c.B)/255.0)
		}
	}
	return t
}

// At returns the sample of channel ch at x, y
func (t *Tensor) At(x, y, ch int) float32 {
	return t.Data[(y*t.Width+x)*t.Channels+ch]
}

// Set stores the sample of channel ch at x, y
func (t *Tensor) Set(x, y, ch int, v float32) {
	t.Data[(y*t.Width+x)*t.Channels+ch] = v
}

func (t *Tensor) validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("invalid tensor size %dx%d", t.Width, t.Height)
	}
	switch t.Channels {
	case 1, 3, 4:
	default:
		return fmt.Errorf("unsupported channel count %d", t.Channels)
	}
	if len(t.Data) != t.Width*t.Height*t.Channels {
		return errors.New("tensor data does not match its shape")
	}
	return nil
}

// to8 scales a sample to 0..255, clipping out of range values
func to8(v float32) uint8 {
	v *= 255.0
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ToImage converts the tensor back to an 8 bit image
func (t *Tensor) ToImage() (image.Image, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			var c color.NRGBA
			switch t.Channels {
			case 1:
				v := to8(t.At(x, y, 0))
				c = color.NRGBA{R: v, G: v, B: v, A: 255}
			case 3:
				c = color.NRGBA{R: to8(t.At(x, y, 0)), G: to8(t.At(x, y, 1)), B: to8(t.At(x, y, 2)), A: 255}
			case 4:
				c = color.NRGBA{R: to8(t.At(x, y, 0)), G: to8(t.At(x, y, 1)), B: to8(t.At(x, y, 2)), A: to8(t.At(x, y, 3))}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}

// Load reads an image file, applying its EXIF orientation. DDS textures are supported.
func Load(path string) (*Tensor, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Save writes the tensor to path; the format follows the file extension
func (t *Tensor) Save(path string) error {
	img, err := t.ToImage()
	if err != nil {
		return err
	}
	return imaging.Save(img, path)
}

// EncodePNG writes the tensor as a PNG
func (t *Tensor) EncodePNG(w io.Writer) error {
	img, err := t.ToImage()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// DecodePNG reads a PNG written by EncodePNG
func DecodePNG(r io.Reader) (*Tensor, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Base64PNG returns the tensor as a base64 encoded PNG, its form on the wire
func (t *Tensor) Base64PNG() (string, error) {
	var buf bytes.Buffer
	if err := t.EncodePNG(&buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// FromBase64PNG decodes the wire form produced by Base64PNG
func FromBase64PNG(s string) (*Tensor, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return DecodePNG(bytes.NewReader(data))
}

func (t *Tensor) MarshalJSON() ([]byte, error) {
	s, err := t.Base64PNG()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (t *Tensor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	decoded, err := FromBase64PNG(s)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}
