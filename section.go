package main

import (
	"encoding/json"
	"iter"
	"strconv"
)

type Point struct {
	X, Y int
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(&[]int{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func NewPoint(x, y int) *Point {
	return &Point{x, y}
}

// Segment is the half-open rectangle [TopLeft, BotRight) one connection is
// responsible for.
type Segment struct {
	TopLeft  Point  `json:"topLeft"`
	BotRight Point  `json:"botRight"`
	Id       string `json:"id"`
}

func (s Segment) Width() int {
	return (s.BotRight.X - s.TopLeft.X)
}

func (s Segment) Height() int {
	return (s.BotRight.Y - s.TopLeft.Y)
}

func (s Segment) Empty() bool {
	return s.Width() <= 0 || s.Height() <= 0
}

// PartitionRows splits a width x height canvas into n full-width row bands of
// height/n rows each. The remainder rows go to the last band, so with n >
// height every band but the last is empty.
func PartitionRows(height, width, n int) ([]Segment, error) {
	if n <= 0 {
		return nil, ErrInvalidPartition
	}
	rowsPer := height / n
	segments := make([]Segment, n)
	for i := range n {
		startRow := i * rowsPer
		endRow := (i + 1) * rowsPer
		if i == n-1 {
			endRow = height
		}
		segments[i] = Segment{
			TopLeft:  *NewPoint(0, startRow),
			BotRight: *NewPoint(width, endRow),
			Id:       strconv.Itoa(i),
		}
	}
	return segments, nil
}

// Rows iterates the segment's row indices top to bottom.
func (s Segment) Rows() iter.Seq[int] {
	return func(yield func(int) bool) {
		for y := s.TopLeft.Y; y < s.BotRight.Y; y++ {
			if !yield(y) {
				return
			}
		}
	}
}

// Points iterates the segment in row-major order.
func (s Segment) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y := range s.Rows() {
			for x := s.TopLeft.X; x < s.BotRight.X; x++ {
				if !yield(Point{x, y}) {
					return
				}
			}
		}
	}
}
