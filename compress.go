package main

import (
	"bytes"
	"io"

	"github.com/golang/glog"
	"github.com/pierrec/lz4/v4"
)

// Compress packs snapshot data into one lz4 frame carrying the content size
// and checksum.
func Compress(data []byte) ([]byte, error) {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if err := writer.Apply(lz4.ChecksumOption(true), lz4.SizeOption(uint64(len(data)))); err != nil {
		return nil, err
	}

	if _, err := writer.Write(data); err != nil {
		glog.Warningf("could not compress snapshot data: %v\n", err)
		return nil, err
	}

	if err := writer.Close(); err != nil {
		glog.Warningf("could not close writer after compressing snapshot data: %v\n", err)
		return nil, err
	}

	return compressed.Bytes(), nil
}

func Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
