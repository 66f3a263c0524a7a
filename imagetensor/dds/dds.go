// Package dds decodes the top mip level of DirectDraw Surface textures: uncompressed RGB(A),
// luminance and alpha surfaces, BC1 to BC5 and BC7. Importing it registers the "dds" format with
// the image package, so image.Decode and imaging.Open read .dds files.
package dds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math/bits"
)

func init() {
	image.RegisterFormat("dds", "DDS ", Decode, DecodeConfig)
}

const (
	headerSize = 124
	dx10Size   = 20

	pfAlphaPixels = 0x1
	pfAlpha       = 0x2
	pfFourCC      = 0x4
	pfRGB         = 0x40
	pfLuminance   = 0x20000
)

// ErrUnsupported is returned for valid surfaces in a pixel format this package can't decode
var ErrUnsupported = errors.New("dds: unsupported pixel format")

type format int

const (
	formatMasked format = iota
	formatBC1
	formatBC2
	formatBC3
	formatBC4
	formatBC5
	formatBC7
)

// masks describes an uncompressed pixel layout
type masks struct {
	bitCount   int
	r, g, b, a uint32
	luminance  bool
}

type header struct {
	width, height int
	format        format
	masks         masks
}

func fourCC(s string) uint32 {
	return binary.LittleEndian.Uint32([]byte(s))
}

func readHeader(r io.Reader) (header, error) {
	var h header
	buf := make([]byte, 4+headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return h, fmt.Errorf("dds: reading header: %w", err)
	}
	if string(buf[:4]) != "DDS " {
		return h, errors.New("dds: missing magic")
	}
	hdr := buf[4:]
	if size := binary.LittleEndian.Uint32(hdr[0:]); size != headerSize {
		return h, fmt.Errorf("dds: header size %d", size)
	}
	h.height = int(binary.LittleEndian.Uint32(hdr[8:]))
	h.width = int(binary.LittleEndian.Uint32(hdr[12:]))
	if h.width <= 0 || h.height <= 0 || h.width > 1<<15 || h.height > 1<<15 {
		return h, fmt.Errorf("dds: invalid dimensions %dx%d", h.width, h.height)
	}

	pf := hdr[72:104]
	flags := binary.LittleEndian.Uint32(pf[4:])
	cc := binary.LittleEndian.Uint32(pf[8:])

	if flags&pfFourCC != 0 {
		switch cc {
		case fourCC("DXT1"):
			h.format = formatBC1
		case fourCC("DXT2"), fourCC("DXT3"):
			h.format = formatBC2
		case fourCC("DXT4"), fourCC("DXT5"):
			h.format = formatBC3
		case fourCC("ATI1"), fourCC("BC4U"):
			h.format = formatBC4
		case fourCC("ATI2"), fourCC("BC5U"):
			h.format = formatBC5
		case fourCC("DX10"):
			ext := make([]byte, dx10Size)
			if _, err := io.ReadFull(r, ext); err != nil {
				return h, fmt.Errorf("dds: reading dx10 header: %w", err)
			}
			return h, h.setDXGI(binary.LittleEndian.Uint32(ext[0:]))
		default:
			return h, fmt.Errorf("%w: fourcc %q", ErrUnsupported, string(pf[8:12]))
		}
		return h, nil
	}

	h.format = formatMasked
	h.masks = masks{
		bitCount: int(binary.LittleEndian.Uint32(pf[12:])),
		r:        binary.LittleEndian.Uint32(pf[16:]),
		g:        binary.LittleEndian.Uint32(pf[20:]),
		b:        binary.LittleEndian.Uint32(pf[24:]),
		a:        binary.LittleEndian.Uint32(pf[28:]),
	}
	switch {
	case flags&pfLuminance != 0:
		h.masks.luminance = true
	case flags&pfRGB != 0:
	case flags&pfAlpha != 0:
		h.masks.r, h.masks.g, h.masks.b = 0, 0, 0
	default:
		return h, fmt.Errorf("%w: pixel format flags %#x", ErrUnsupported, flags)
	}
	if flags&(pfAlphaPixels|pfAlpha) == 0 {
		h.masks.a = 0
	}
	switch h.masks.bitCount {
	case 8, 16, 24, 32:
	default:
		return h, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.masks.bitCount)
	}
	return h, nil
}

// setDXGI maps the DXGI_FORMAT values of the DX10 extension header
func (h *header) setDXGI(dxgi uint32) error {
	switch dxgi {
	case 27, 28, 29: // R8G8B8A8 typeless, unorm, unorm srgb
		h.format = formatMasked
		h.masks = masks{bitCount: 32, r: 0xff, g: 0xff00, b: 0xff0000, a: 0xff000000}
	case 87, 90, 91: // B8G8R8A8
		h.format = formatMasked
		h.masks = masks{bitCount: 32, r: 0xff0000, g: 0xff00, b: 0xff, a: 0xff000000}
	case 88, 92, 93: // B8G8R8X8
		h.format = formatMasked
		h.masks = masks{bitCount: 32, r: 0xff0000, g: 0xff00, b: 0xff}
	case 48, 49: // R8G8
		h.format = formatMasked
		h.masks = masks{bitCount: 16, r: 0xff, g: 0xff00}
	case 60, 61: // R8
		h.format = formatMasked
		h.masks = masks{bitCount: 8, r: 0xff, luminance: true}
	case 70, 71, 72:
		h.format = formatBC1
	case 73, 74, 75:
		h.format = formatBC2
	case 76, 77, 78:
		h.format = formatBC3
	case 79, 80:
		h.format = formatBC4
	case 82, 83:
		h.format = formatBC5
	case 97, 98, 99:
		h.format = formatBC7
	default:
		return fmt.Errorf("%w: dxgi format %d", ErrUnsupported, dxgi)
	}
	return nil
}

// DecodeConfig returns the dimensions of the top mip level
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}

// Decode reads the top mip level of the first surface
func Decode(r io.Reader) (image.Image, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	if h.format == formatMasked {
		return img, decodeMasked(r, img, h.masks)
	}
	return img, decodeBlocks(r, img, h.format)
}

func decodeMasked(r io.Reader, img *image.NRGBA, m masks) error {
	bpp := m.bitCount / 8
	w, hgt := img.Rect.Dx(), img.Rect.Dy()
	row := make([]byte, w*bpp)
	for y := 0; y < hgt; y++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return fmt.Errorf("dds: reading row %d: %w", y, err)
		}
		for x := 0; x < w; x++ {
			var px uint32
			for i := bpp - 1; i >= 0; i-- {
				px = px<<8 | uint32(row[x*bpp+i])
			}
			o := img.PixOffset(x, y)
			red := channel(px, m.r)
			if m.luminance {
				img.Pix[o], img.Pix[o+1], img.Pix[o+2] = red, red, red
			} else {
				img.Pix[o], img.Pix[o+1], img.Pix[o+2] = red, channel(px, m.g), channel(px, m.b)
			}
			img.Pix[o+3] = 255
			if m.a != 0 {
				img.Pix[o+3] = channel(px, m.a)
			}
		}
	}
	return nil
}

// channel extracts the bits of mask and scales them to 8 bits
func channel(px, mask uint32) uint8 {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.OnesCount32(mask)
	v := (px & mask) >> shift
	if width == 8 {
		return uint8(v)
	}
	max := uint32(1)<<width - 1
	return uint8((v*255 + max/2) / max)
}

func blockSize(f format) int {
	switch f {
	case formatBC1, formatBC4:
		return 8
	}
	return 16
}

// block holds the 4x4 decoded texels of a block in row major order
type block [16][4]uint8

func decodeBlocks(r io.Reader, img *image.NRGBA, f format) error {
	w, hgt := img.Rect.Dx(), img.Rect.Dy()
	bw, bh := (w+3)/4, (hgt+3)/4
	size := blockSize(f)
	row := make([]byte, bw*size)
	var texels block

	for by := 0; by < bh; by++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return fmt.Errorf("dds: reading block row %d: %w", by, err)
		}
		for bx := 0; bx < bw; bx++ {
			data := row[bx*size : (bx+1)*size]
			switch f {
			case formatBC1:
				decodeColor(data, &texels, true)
			case formatBC2:
				decodeColor(data[8:], &texels, false)
				for i := 0; i < 16; i++ {
					a := (data[i/2] >> (4 * uint(i%2))) & 0xf
					texels[i][3] = a<<4 | a
				}
			case formatBC3:
				decodeColor(data[8:], &texels, false)
				decodeChannel(data, &texels, 3)
			case formatBC4:
				decodeChannel(data, &texels, 0)
				for i := range texels {
					texels[i][1], texels[i][2], texels[i][3] = texels[i][0], texels[i][0], 255
				}
			case formatBC5:
				decodeChannel(data, &texels, 0)
				decodeChannel(data[8:], &texels, 1)
				for i := range texels {
					texels[i][2], texels[i][3] = 0, 255
				}
			case formatBC7:
				decodeBC7(data, &texels)
			}
			for i, t := range texels {
				x, y := bx*4+i%4, by*4+i/4
				if x >= w || y >= hgt {
					continue
				}
				o := img.PixOffset(x, y)
				copy(img.Pix[o:o+4], t[:])
			}
		}
	}
	return nil
}

func expand565(c uint16) [3]uint32 {
	r := uint32(c>>11) & 0x1f
	g := uint32(c>>5) & 0x3f
	b := uint32(c) & 0x1f
	return [3]uint32{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2}
}

// decodeColor decodes a BC1 color block. BC2 and BC3 always use the four color palette.
func decodeColor(data []byte, t *block, punchThrough bool) {
	c0 := binary.LittleEndian.Uint16(data[0:])
	c1 := binary.LittleEndian.Uint16(data[2:])
	e0, e1 := expand565(c0), expand565(c1)

	var palette [4][4]uint8
	for ch := 0; ch < 3; ch++ {
		palette[0][ch] = uint8(e0[ch])
		palette[1][ch] = uint8(e1[ch])
		if c0 > c1 || !punchThrough {
			palette[2][ch] = uint8((2*e0[ch] + e1[ch]) / 3)
			palette[3][ch] = uint8((e0[ch] + 2*e1[ch]) / 3)
		} else {
			palette[2][ch] = uint8((e0[ch] + e1[ch]) / 2)
		}
	}
	palette[0][3], palette[1][3], palette[2][3], palette[3][3] = 255, 255, 255, 255
	if c0 <= c1 && punchThrough {
		palette[3] = [4]uint8{}
	}

	indices := binary.LittleEndian.Uint32(data[4:])
	for i := 0; i < 16; i++ {
		alpha := t[i][3]
		t[i] = palette[(indices>>(2*uint(i)))&3]
		if !punchThrough {
			t[i][3] = alpha
		}
	}
}

// decodeChannel decodes a BC4 block into channel ch of t
func decodeChannel(data []byte, t *block, ch int) {
	a0, a1 := uint32(data[0]), uint32(data[1])
	var palette [8]uint32
	palette[0], palette[1] = a0, a1
	if a0 > a1 {
		for k := uint32(2); k < 8; k++ {
			palette[k] = ((8-k)*a0 + (k-1)*a1 + 3) / 7
		}
	} else {
		for k := uint32(2); k < 6; k++ {
			palette[k] = ((6-k)*a0 + (k-1)*a1 + 2) / 5
		}
		palette[6], palette[7] = 0, 255
	}

	var indices uint64
	for i := 7; i >= 2; i-- {
		indices = indices<<8 | uint64(data[i])
	}
	for i := 0; i < 16; i++ {
		t[i][ch] = uint8(palette[(indices>>(3*uint(i)))&7])
	}
}
