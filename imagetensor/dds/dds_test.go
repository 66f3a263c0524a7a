package dds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pixelFormat struct {
	flags      uint32
	fourCC     string
	bitCount   uint32
	r, g, b, a uint32
}

// surface builds a DDS file with a single mip level
func surface(width, height int, pf pixelFormat, dxgi uint32, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("DDS ")
	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(hdr[0:], headerSize)
	binary.LittleEndian.PutUint32(hdr[4:], 0x1007)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(height))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(width))
	binary.LittleEndian.PutUint32(hdr[24:], 1)
	binary.LittleEndian.PutUint32(hdr[72:], 32)
	binary.LittleEndian.PutUint32(hdr[76:], pf.flags)
	if pf.fourCC != "" {
		copy(hdr[80:84], pf.fourCC)
	}
	binary.LittleEndian.PutUint32(hdr[84:], pf.bitCount)
	binary.LittleEndian.PutUint32(hdr[88:], pf.r)
	binary.LittleEndian.PutUint32(hdr[92:], pf.g)
	binary.LittleEndian.PutUint32(hdr[96:], pf.b)
	binary.LittleEndian.PutUint32(hdr[100:], pf.a)
	binary.LittleEndian.PutUint32(hdr[104:], 0x1000)
	buf.Write(hdr)
	if pf.fourCC == "DX10" {
		ext := make([]byte, dx10Size)
		binary.LittleEndian.PutUint32(ext[0:], dxgi)
		binary.LittleEndian.PutUint32(ext[4:], 3)
		binary.LittleEndian.PutUint32(ext[12:], 1)
		buf.Write(ext)
	}
	buf.Write(data)
	return buf.Bytes()
}

var rgba32 = pixelFormat{flags: pfRGB | pfAlphaPixels, bitCount: 32, r: 0xff, g: 0xff00, b: 0xff0000, a: 0xff000000}

func decode(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, name, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "dds", name)
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok)
	return nrgba
}

func TestUncompressed(t *testing.T) {
	data := []byte{
		255, 0, 0, 255, 0, 255, 0, 128,
		0, 0, 255, 0, 10, 20, 30, 40,
	}
	img := decode(t, surface(2, 2, rgba32, 0, data))

	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 128}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 0}, img.NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 40}, img.NRGBAAt(1, 1))
}

func TestUncompressedLayouts(t *testing.T) {
	tests := []struct {
		name string
		pf   pixelFormat
		data []byte
		want color.NRGBA
	}{
		{"bgr24", pixelFormat{flags: pfRGB, bitCount: 24, r: 0xff0000, g: 0xff00, b: 0xff}, []byte{1, 2, 3}, color.NRGBA{R: 3, G: 2, B: 1, A: 255}},
		{"rgb565", pixelFormat{flags: pfRGB, bitCount: 16, r: 0xf800, g: 0x07e0, b: 0x001f}, []byte{0x00, 0xf8}, color.NRGBA{R: 255, A: 255}},
		{"luminance", pixelFormat{flags: pfLuminance, bitCount: 8, r: 0xff}, []byte{77}, color.NRGBA{R: 77, G: 77, B: 77, A: 255}},
		{"alpha", pixelFormat{flags: pfAlpha, bitCount: 8, a: 0xff}, []byte{9}, color.NRGBA{A: 9}},
		{"alpha mask ignored without flag", pixelFormat{flags: pfRGB, bitCount: 32, r: 0xff, g: 0xff00, b: 0xff0000, a: 0xff000000}, []byte{1, 2, 3, 4}, color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := decode(t, surface(1, 1, tt.pf, 0, tt.data))
			assert.Equal(t, tt.want, img.NRGBAAt(0, 0))
		})
	}
}

func TestDX10Uncompressed(t *testing.T) {
	img := decode(t, surface(1, 1, pixelFormat{flags: pfFourCC, fourCC: "DX10"}, 87, []byte{1, 2, 3, 4}))
	assert.Equal(t, color.NRGBA{R: 3, G: 2, B: 1, A: 4}, img.NRGBAAt(0, 0))
}

func TestDecodeConfig(t *testing.T) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(surface(5, 3, rgba32, 0, nil)))
	require.NoError(t, err)
	assert.Equal(t, "dds", name)
	assert.Equal(t, 5, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
}

// bc1Block is a block with colors c0 and c1 and every texel using index
func bc1Block(c0, c1 uint16, index uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:], c0)
	binary.LittleEndian.PutUint16(b[2:], c1)
	var indices uint32
	for i := 0; i < 16; i++ {
		indices |= index << (2 * uint(i))
	}
	binary.LittleEndian.PutUint32(b[4:], indices)
	return b
}

func TestBC1(t *testing.T) {
	// red and blue, four color mode
	img := decode(t, surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "DXT1"}, 0, bc1Block(0xf800, 0x001f, 2)))
	assert.Equal(t, color.NRGBA{R: 170, B: 85, A: 255}, img.NRGBAAt(3, 3))

	// c0 <= c1 selects the three color mode, index 3 is transparent black
	img = decode(t, surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "DXT1"}, 0, bc1Block(0x001f, 0xf800, 3)))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
}

func TestBC1PartialBlocks(t *testing.T) {
	// a 5x5 surface needs 2x2 blocks
	var data []byte
	for i := 0; i < 4; i++ {
		data = append(data, bc1Block(0xffff, 0, 0)...)
	}
	img := decode(t, surface(5, 5, pixelFormat{flags: pfFourCC, fourCC: "DXT1"}, 0, data))
	assert.Equal(t, image.Rect(0, 0, 5, 5), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(4, 4))
}

// bc4Block is a BC4 block with endpoints a0 and a1 and every texel using index
func bc4Block(a0, a1 uint8, index uint64) []byte {
	b := []byte{a0, a1, 0, 0, 0, 0, 0, 0}
	var indices uint64
	for i := 0; i < 16; i++ {
		indices |= index << (3 * uint(i))
	}
	for i := 0; i < 6; i++ {
		b[2+i] = byte(indices >> (8 * uint(i)))
	}
	return b
}

func TestBC2(t *testing.T) {
	alpha := bytes.Repeat([]byte{0x5a}, 8) // texels alternate 0xa and 0x5
	data := append(alpha, bc1Block(0x07e0, 0x07e0, 0)...)
	img := decode(t, surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "DXT3"}, 0, data))
	assert.Equal(t, color.NRGBA{G: 255, A: 0xaa}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 0x55}, img.NRGBAAt(1, 0))
}

func TestBC3(t *testing.T) {
	data := append(bc4Block(200, 100, 1), bc1Block(0x001f, 0xf800, 0)...)
	img := decode(t, surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "DXT5"}, 0, data))
	// BC3 color blocks never use the transparent entry
	assert.Equal(t, color.NRGBA{B: 255, A: 100}, img.NRGBAAt(2, 1))

	data = append(bc4Block(100, 200, 7), bc1Block(0x001f, 0xf800, 0)...)
	img = decode(t, surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "DXT5"}, 0, data))
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).A)
}

func TestBC4AndBC5(t *testing.T) {
	img := decode(t, surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "ATI1"}, 0, bc4Block(70, 0, 0)))
	assert.Equal(t, color.NRGBA{R: 70, G: 70, B: 70, A: 255}, img.NRGBAAt(1, 1))

	data := append(bc4Block(10, 0, 0), bc4Block(0, 20, 1)...)
	img = decode(t, surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "DX10"}, 83, data))
	assert.Equal(t, color.NRGBA{R: 10, G: 20, A: 255}, img.NRGBAAt(3, 0))
}

// bitWriter packs fields from the least significant bit, the order BC7 reads them in
type bitWriter struct {
	lo, hi uint64
	pos    uint
}

func (w *bitWriter) write(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		bit := v >> i & 1
		if w.pos < 64 {
			w.lo |= bit << w.pos
		} else {
			w.hi |= bit << (w.pos - 64)
		}
		w.pos++
	}
}

func (w *bitWriter) bytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:], w.lo)
	binary.LittleEndian.PutUint64(b[8:], w.hi)
	return b
}

func bc7Surface(block []byte) []byte {
	return surface(4, 4, pixelFormat{flags: pfFourCC, fourCC: "DX10"}, 98, block)
}

func TestBC7Mode6(t *testing.T) {
	w := &bitWriter{}
	w.write(1<<6, 7)
	endpoints := [4][2]uint64{{127, 0}, {0, 0}, {64, 0}, {127, 0}} // per channel: e0, e1
	for _, ch := range endpoints {
		w.write(ch[0], 7)
		w.write(ch[1], 7)
	}
	w.write(1, 1) // p-bit of e0
	w.write(0, 1) // p-bit of e1
	w.write(0, 3) // anchor texel
	for i := 1; i < 16; i++ {
		if i == 15 {
			w.write(15, 4)
		} else {
			w.write(0, 4)
		}
	}
	require.Equal(t, uint(128), w.pos)

	img := decode(t, bc7Surface(w.bytes()))
	// the p-bit of e0 also lands in green
	assert.Equal(t, color.NRGBA{R: 255, G: 1, B: 129, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(3, 3))
}

func TestBC7Mode5Rotation(t *testing.T) {
	w := &bitWriter{}
	w.write(1<<5, 6)
	w.write(1, 2) // swap red and alpha
	for _, v := range [][2]uint64{{127, 127}, {0, 0}, {0, 0}} {
		w.write(v[0], 7)
		w.write(v[1], 7)
	}
	w.write(10, 8)
	w.write(10, 8)
	w.write(0, 31)
	w.write(0, 31)
	require.Equal(t, uint(128), w.pos)

	img := decode(t, bc7Surface(w.bytes()))
	assert.Equal(t, color.NRGBA{R: 10, A: 255}, img.NRGBAAt(2, 2))
}

func TestBC7Mode1Partition(t *testing.T) {
	// partition 13 puts the top two rows in subset 0 and the bottom two in subset 1
	w := &bitWriter{}
	w.write(1<<1, 2)
	w.write(13, 6)
	for _, v := range [3][4]uint64{{63, 63, 0, 0}, {0, 0, 63, 63}, {0, 0, 0, 0}} {
		for _, e := range v {
			w.write(e, 6)
		}
	}
	w.write(1, 1) // shared p-bit of subset 0
	w.write(1, 1) // shared p-bit of subset 1
	for i := 0; i < 16; i++ {
		bits := uint(3)
		if i == 0 || i == int(bc7Anchors2[13]) {
			bits = 2
		}
		w.write(0, bits)
	}
	require.Equal(t, uint(128), w.pos)

	img := decode(t, bc7Surface(w.bytes()))
	assert.Equal(t, color.NRGBA{R: 255, G: 2, B: 2, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 2, B: 2, A: 255}, img.NRGBAAt(3, 1))
	assert.Equal(t, color.NRGBA{R: 2, G: 255, B: 2, A: 255}, img.NRGBAAt(0, 2))
	assert.Equal(t, color.NRGBA{R: 2, G: 255, B: 2, A: 255}, img.NRGBAAt(3, 3))
}

func TestBC7Reserved(t *testing.T) {
	img := decode(t, bc7Surface(make([]byte, 16)))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
}

// partition tables place the anchor of every subset but the first inside that subset
func TestBC7Anchors(t *testing.T) {
	for p := 0; p < 64; p++ {
		assert.Equal(t, uint8(1), bc7Partitions2[p][bc7Anchors2[p]], "partition2 %d", p)
		assert.Equal(t, uint8(1), bc7Partitions3[p][bc7Anchors3a[p]], "partition3 %d", p)
		assert.Equal(t, uint8(2), bc7Partitions3[p][bc7Anchors3b[p]], "partition3 %d", p)
		assert.Equal(t, uint8(0), bc7Partitions2[p][0])
		assert.Equal(t, uint8(0), bc7Partitions3[p][0])
	}
}

func TestErrors(t *testing.T) {
	_, _, err := image.Decode(bytes.NewReader(surface(1, 1, pixelFormat{flags: pfFourCC, fourCC: "DX10"}, 95, make([]byte, 16))))
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, _, err = image.Decode(bytes.NewReader(surface(1, 1, pixelFormat{flags: pfFourCC, fourCC: "ETC1"}, 0, nil)))
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = Decode(bytes.NewReader([]byte("DDS short")))
	assert.Error(t, err)

	_, err = Decode(bytes.NewReader(surface(4, 4, rgba32, 0, []byte{1, 2, 3})))
	assert.Error(t, err)
}
