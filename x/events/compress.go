package events

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/iov-one/weave-editions/errors"
)

const compressionLevel = 9

func compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	w := brotli.NewWriterV2(&buf, compressionLevel)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "brotli write: %s", err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "brotli close: %s", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "brotli read: %s", err)
	}
	return raw, nil
}
