package main

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, string(EncodeSetPixel(12, 7, Color{0xff, 0x00, 0xaa})), "PX 12 7 ff00aa\n")
	assert.Equal(t, string(EncodeGetPixel(0, 1023)), "PX 0 1023\n")
	assert.Equal(t, string(EncodeGetSize()), "SIZE\n")
}

func TestDecodeColor(t *testing.T) {
	cases := []struct {
		line string
		want Color
		ok   bool
	}{
		{"PX 1 2 ff00aa", Color{0xff, 0x00, 0xaa}, true},
		{"PX 1 2 FF00AA", Color{0xff, 0x00, 0xaa}, true},
		{"  PX 1 2 0a0b0c \r\n", Color{0x0a, 0x0b, 0x0c}, true},
		{"ff00aa", Color{0xff, 0x00, 0xaa}, true},
		{"PX 1 2 ff00", Color{}, false},
		{"PX 1 2 ff00aa00", Color{}, false},
		{"PX 1 2 gg00aa", Color{}, false},
		{"PX 1 2 #f00aa", Color{}, false},
		{"ERROR unknown command", Color{}, false},
		{"", Color{}, false},
	}
	for _, c := range cases {
		got, ok := DecodeColor(c.line)
		assert.Equal(t, ok, c.ok)
		assert.Equal(t, got, c.want)
	}
}

func TestColorRoundTrip(t *testing.T) {
	for _, s := range []string{"000000", "ffffff", "ff0000", "00ff00", "0000ff", "123abc", "a0b1c2"} {
		c := mustColor(s)
		decoded, ok := DecodeColor(string(EncodeSetPixel(3, 4, c)))
		assert.Equal(t, ok, true)
		assert.Equal(t, decoded, c)
		assert.Equal(t, decoded.Hex(), s)

		again, ok := DecodeColor(string(EncodeSetPixel(3, 4, decoded)))
		assert.Equal(t, ok, true)
		assert.Equal(t, again, decoded)
	}
}

func TestDecodeSize(t *testing.T) {
	w, h, err := DecodeSize("SIZE 800 600\n")
	assert.Equal(t, err, nil)
	assert.Equal(t, w, 800)
	assert.Equal(t, h, 600)

	w, h, err = DecodeSize("SIZE 0 0")
	assert.Equal(t, err, nil)
	assert.Equal(t, w, 0)
	assert.Equal(t, h, 0)

	for _, line := range []string{"", "SIZE", "SIZE 800", "SIZE 800 600 1", "SIZE a 600", "SIZE 800 b", "SIZE -1 600", "SIZE 800 -600"} {
		_, _, err := DecodeSize(line)
		assert.Equal(t, errors.Is(err, ErrProtocol), true)
	}
}
