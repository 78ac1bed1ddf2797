package main

import (
	"fmt"
	"sync"
)

// Target is the image to reproduce on the server, row-major.
type Target struct {
	Width, Height int
	pix           []Color
}

func NewTarget(width, height int) *Target {
	return &Target{width, height, make([]Color, width*height)}
}

// TargetFromRows builds a target from rows of equal length; rows[y][x].
func TargetFromRows(rows [][]Color) (*Target, error) {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	t := NewTarget(width, height)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d pixels, expected %d", y, len(row), width)
		}
		copy(t.pix[y*width:(y+1)*width], row)
	}
	return t, nil
}

func (t *Target) At(x, y int) Color {
	return t.pix[y*t.Width+x]
}

func (t *Target) Set(x, y int, c Color) {
	t.pix[y*t.Width+x] = c
}

// Snapshot is what a run believes the server holds: the target color where it
// wrote, the observed color where it skipped. Pixels never reached stay zero.
type Snapshot struct {
	sync.RWMutex
	width, height int
	data          []byte
}

func NewSnapshot(width, height int) *Snapshot {
	return &Snapshot{width: width, height: height, data: make([]byte, width*height*3)}
}

func (s *Snapshot) Width() int {
	return s.width
}

func (s *Snapshot) Height() int {
	return s.height
}

// SetRow stores colors starting at (x, y).
func (s *Snapshot) SetRow(x, y int, colors []Color) {
	s.Lock()
	defer s.Unlock()
	offset := (y*s.width + x) * 3
	for _, c := range colors {
		s.data[offset] = c.R
		s.data[offset+1] = c.G
		s.data[offset+2] = c.B
		offset += 3
	}
}

func (s *Snapshot) At(x, y int) Color {
	s.RLock()
	defer s.RUnlock()
	offset := (y*s.width + x) * 3
	return Color{s.data[offset], s.data[offset+1], s.data[offset+2]}
}

// Bytes returns a copy of the raw RGB data.
func (s *Snapshot) Bytes() []byte {
	s.RLock()
	defer s.RUnlock()
	return append([]byte(nil), s.data...)
}

// Compressed returns the raw RGB data as an lz4 frame.
func (s *Snapshot) Compressed() ([]byte, error) {
	return Compress(s.Bytes())
}
