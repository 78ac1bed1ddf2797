package main

import (
	"fmt"
	"image"
	"os"

	"github.com/golang/glog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageSource prepares the target for a canvas of the given size.
type ImageSource interface {
	Target(width, height int) (*Target, error)
}

// FileImageSource decodes an image file and stretches it over the whole
// canvas. With a palette every pixel is snapped to the closest palette color.
type FileImageSource struct {
	Path    string
	Palette *Palette
}

func getImageFromFilePath(filePath string) (image.Image, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	image, _, err := image.Decode(f)
	return image, err
}

func (s *FileImageSource) Target(width, height int) (*Target, error) {
	img, err := getImageFromFilePath(s.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load image from path %s: %w", s.Path, err)
	}
	glog.Infof("loaded image %s (%dx%d), resizing to %dx%d\n", s.Path, img.Bounds().Dx(), img.Bounds().Dy(), width, height)
	return TargetFromImage(ResizeImage(img, width, height), s.Palette)
}

// TargetFromImage copies img into a target, quantizing through palette when
// it is non-empty.
func TargetFromImage(img image.Image, palette *Palette) (*Target, error) {
	bounds := img.Bounds()
	t := NewTarget(bounds.Dx(), bounds.Dy())
	for y := range t.Height {
		for x := range t.Width {
			c := *FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			if palette != nil && palette.Len() > 0 {
				closest, err := palette.Closest(c)
				if err != nil {
					return nil, err
				}
				c = closest
			}
			t.Set(x, y, c)
		}
	}
	return t, nil
}

// GridSource serves a fixed target regardless of the canvas size, as long as
// the sizes agree.
type GridSource struct {
	target *Target
}

func NewGridSource(rows [][]Color) (*GridSource, error) {
	t, err := TargetFromRows(rows)
	if err != nil {
		return nil, err
	}
	return &GridSource{t}, nil
}

func (s *GridSource) Target(width, height int) (*Target, error) {
	if s.target.Width != width || s.target.Height != height {
		return nil, fmt.Errorf("grid is %dx%d but canvas is %dx%d", s.target.Width, s.target.Height, width, height)
	}
	return s.target, nil
}
