package game

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

func ToGob[T any](from T) ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := gob.NewEncoder(buf)
	if err := encoder.Encode(from); err != nil {
		return nil, fmt.Errorf("can't convert to gob: %w", err)
	}
	return buf.Bytes(), nil
}

func FromGob[T any](from []byte, to *T) error {
	buf := bytes.NewBuffer(from)
	decoder := gob.NewDecoder(buf)
	if err := decoder.Decode(to); err != nil {
		return fmt.Errorf("can't convert from gob: %w", err)
	}
	return nil
}

// ReverseStrings reverses a slice of strings in place
func ReverseStrings(xs []string) {
	for i := 0; i < len(xs)/2; i++ {
		xs[i], xs[len(xs)-1-i] = xs[len(xs)-1-i], xs[i]
	}
}
