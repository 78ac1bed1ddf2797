package main

import (
	"strconv"
	"strings"
)

// Line protocol, one command per line:
//
//	PX <x> <y> <rrggbb>   set, no reply
//	PX <x> <y>            get, reply "PX <x> <y> <rrggbb>"
//	SIZE                  reply "SIZE <w> <h>"

func EncodeSetPixel(x, y int, c Color) []byte {
	return []byte("PX " + strconv.Itoa(x) + " " + strconv.Itoa(y) + " " + c.Hex() + "\n")
}

func EncodeGetPixel(x, y int) []byte {
	return []byte("PX " + strconv.Itoa(x) + " " + strconv.Itoa(y) + "\n")
}

func EncodeGetSize() []byte {
	return []byte("SIZE\n")
}

// DecodeColor reads the color out of a get reply. ok is false for a malformed
// reply, which callers treat as an unknown color rather than a failure.
func DecodeColor(line string) (c Color, ok bool) {
	fields := strings.Split(strings.TrimSpace(line), " ")
	last := fields[len(fields)-1]
	if len(last) != 6 {
		return Color{}, false
	}
	c, err := ParseHexColor(last)
	if err != nil {
		return Color{}, false
	}
	return c, true
}

func DecodeSize(line string) (width, height int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, protocolError(line, "size reply needs 3 fields")
	}
	width, err = strconv.Atoi(fields[1])
	if err != nil || width < 0 {
		return 0, 0, protocolError(line, "bad width")
	}
	height, err = strconv.Atoi(fields[2])
	if err != nil || height < 0 {
		return 0, 0, protocolError(line, "bad height")
	}
	return width, height, nil
}
