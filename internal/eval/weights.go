package eval

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// WeightsSize is the length of an encoded weight file.
const WeightsSize = Turns * NumFeatures * 8

// ErrWeightsSize is returned when a weight file is not exactly WeightsSize bytes.
var ErrWeightsSize = errors.New("weight file size mismatch")

// Weights holds the fitted feature weights of every turn.
type Weights [Turns][NumFeatures]float64

// WriteTo encodes the weights as big-endian float64s, turn by turn, in
// place, stable, mobility order.
func (w *Weights) WriteTo(dst io.Writer) (int64, error) {
	bw := bufio.NewWriter(dst)
	var buf [8]byte
	var n int64
	for turn := range w {
		for _, v := range w[turn] {
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
			m, err := bw.Write(buf[:])
			n += int64(m)
			if err != nil {
				return n, fmt.Errorf("write turn %d: %w", turn, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush weights: %w", err)
	}
	return n, nil
}

// ReadWeights decodes a weight file written by WriteTo.
func ReadWeights(r io.Reader) (*Weights, error) {
	data, err := io.ReadAll(io.LimitReader(r, WeightsSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) != WeightsSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrWeightsSize, len(data), WeightsSize)
	}
	w := new(Weights)
	for i := 0; i < Turns*NumFeatures; i++ {
		w[i/NumFeatures][i%NumFeatures] = math.Float64frombits(binary.BigEndian.Uint64(data[i*8:]))
	}
	return w, nil
}
