package main

import (
	"image"

	"golang.org/x/image/draw"
)

// http://golang.org/doc/articles/image_draw.html
func ResizeImage(old image.Image, w, h int) image.Image {
	resized := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(resized, resized.Bounds(), old, old.Bounds(), draw.Src, nil)

	return resized
}
