// Package npyfile reads and writes the 1-D NumPy array artifacts the roll
// tools exchange: roll-cmd writes offset-prefixed count arrays, entropy reads
// them back. Reading transparently handles gzip, bzip2 and xz wrapped
// artifacts; writing always produces a plain .npy file.
package npyfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/sbinet/npyio"
)

var (
	// ErrEmptyArray reports a structurally valid artifact with shape (0,).
	// The tools treat a zero-length array as corrupt input.
	ErrEmptyArray = errors.New("array is empty")

	// ErrNotVector reports an artifact whose shape is not one-dimensional.
	ErrNotVector = errors.New("array is not one-dimensional")
)

// Array is a decoded 1-D numeric array artifact. Values are widened to
// float64 regardless of the stored dtype.
type Array struct {
	Values      []float64
	DType       string // numpy dtype descriptor, e.g. "<i8"
	Compression Compression
}

// Len returns the number of elements in the array.
func (a *Array) Len() int { return len(a.Values) }

// Read loads a 1-D numeric array artifact from disk. The file may be a plain
// .npy file or a gzip/bzip2/xz compressed one; compression is detected from
// magic bytes, never from the file name.
func Read(path string) (*Array, error) {
	compression, err := DetectCompression(path)
	if err != nil {
		return nil, err
	}
	r, err := openDecompressing(path, compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	arr, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	arr.Compression = compression
	return arr, nil
}

// Decode decodes a plain (uncompressed) .npy stream into an Array.
func Decode(r io.Reader) (*Array, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read numpy header: %w", err)
	}

	shape := nr.Header.Descr.Shape
	if len(shape) != 1 {
		return nil, fmt.Errorf("%w: shape %v", ErrNotVector, shape)
	}
	if shape[0] == 0 {
		return nil, ErrEmptyArray
	}

	values, err := readValues(nr, shape[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read array data: %w", err)
	}
	return &Array{Values: values, DType: nr.Header.Descr.Type}, nil
}

// readValues reads n elements of the header's dtype and widens them to
// float64. npyio insists on an exact element type match, so dispatch on the
// dtype's kind.
func readValues(nr *npyio.Reader, n int) ([]float64, error) {
	rt := npyio.TypeFrom(nr.Header.Descr.Type)
	if rt == nil {
		return nil, fmt.Errorf("unsupported dtype %q", nr.Header.Descr.Type)
	}
	switch rt.Kind() {
	case reflect.Int8:
		return readAs[int8](nr, n)
	case reflect.Int16:
		return readAs[int16](nr, n)
	case reflect.Int32:
		return readAs[int32](nr, n)
	case reflect.Int64:
		return readAs[int64](nr, n)
	case reflect.Uint8:
		return readAs[uint8](nr, n)
	case reflect.Uint16:
		return readAs[uint16](nr, n)
	case reflect.Uint32:
		return readAs[uint32](nr, n)
	case reflect.Uint64:
		return readAs[uint64](nr, n)
	case reflect.Float32:
		return readAs[float32](nr, n)
	case reflect.Float64:
		return readAs[float64](nr, n)
	default:
		// bool, complex and string dtypes have no place in a count array
		return nil, fmt.Errorf("unsupported dtype %q", nr.Header.Descr.Type)
	}
}

type element interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func readAs[T element](nr *npyio.Reader, n int) ([]float64, error) {
	buf := make([]T, n)
	if err := nr.Read(&buf); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, v := range buf {
		out[i] = float64(v)
	}
	return out, nil
}

// WriteInt64 writes data as a plain .npy artifact with dtype <i8, the layout
// np.load and the original tooling expect.
func WriteInt64(path string, data []int64) error {
	return writeFile(path, data)
}

// WriteFloat64 writes data as a plain .npy artifact with dtype <f8.
func WriteFloat64(path string, data []float64) error {
	return writeFile(path, data)
}

func writeFile(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := npyio.Write(f, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
