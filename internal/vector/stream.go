package vector

import (
	"errors"
	"fmt"
	"io"
)

// ErrShortFrame is returned when the stream ends before a field or payload
// has been read in full.
var ErrShortFrame = errors.New("vector: short frame")

// chunkValues is the number of elements decoded per underlying read.
const chunkValues = 512

// Reader reads frames from a stream.
type Reader struct {
	r   io.Reader
	buf []byte
	tmp []float64

	// BeforeRead, when set, is called before every read from the underlying
	// stream. Connections use it to push their read deadline forward.
	BeforeRead func() error
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   r,
		buf: make([]byte, chunkValues*ValueSize),
		tmp: make([]float64, 0, chunkValues),
	}
}

func (r *Reader) readFull(p []byte) error {
	if r.BeforeRead != nil {
		if err := r.BeforeRead(); err != nil {
			return err
		}
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrShortFrame, err)
		}
		return err
	}
	return nil
}

func (r *Reader) readUint32() (uint32, error) {
	p := r.buf[:CountSize]
	if err := r.readFull(p); err != nil {
		return 0, err
	}
	return NewDecoder(p).Uint32()
}

// ReadCount reads the vector count that opens a batch.
func (r *Reader) ReadCount() (uint32, error) {
	n, err := r.readUint32()
	if err != nil {
		return 0, fmt.Errorf("read vector count: %w", err)
	}
	return n, nil
}

// ReadLength reads the element count of the next vector.
func (r *Reader) ReadLength() (uint32, error) {
	n, err := r.readUint32()
	if err != nil {
		return 0, fmt.Errorf("read vector length: %w", err)
	}
	return n, nil
}

// payload reads n elements in chunks, handing each decoded chunk to fn.
func (r *Reader) payload(n uint32, fn func([]float64)) error {
	for left := n; left > 0; {
		k := min(left, chunkValues)
		p := r.buf[:int(k)*ValueSize]
		if err := r.readFull(p); err != nil {
			return fmt.Errorf("read vector payload: %w", err)
		}
		values, err := NewDecoder(p).Float64s(r.tmp[:0], k)
		if err != nil {
			return err
		}
		fn(values)
		left -= k
	}
	return nil
}

// ReadPayloadSum reads n elements and returns their compensated sum without
// holding the whole vector in memory. It returns only after all n*8 bytes
// have been read.
func (r *Reader) ReadPayloadSum(n uint32) (float64, error) {
	var s Summer
	if err := r.payload(n, s.AddAll); err != nil {
		return 0, err
	}
	return s.Sum(), nil
}

// ReadVector reads one length-prefixed vector, appending its elements to dst.
func (r *Reader) ReadVector(dst []float64) ([]float64, error) {
	n, err := r.ReadLength()
	if err != nil {
		return dst, err
	}
	err = r.payload(n, func(values []float64) {
		dst = append(dst, values...)
	})
	return dst, err
}

// ReadSum reads one float64 sum.
func (r *Reader) ReadSum() (float64, error) {
	p := r.buf[:ValueSize]
	if err := r.readFull(p); err != nil {
		return 0, fmt.Errorf("read sum: %w", err)
	}
	return NewDecoder(p).Float64()
}

// Writer writes frames to a stream. Each call issues a single Write.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) flush() error {
	_, err := w.w.Write(w.buf)
	w.buf = w.buf[:0]
	return err
}

// WriteCount writes the vector count that opens a batch.
func (w *Writer) WriteCount(n uint32) error {
	w.buf = AppendUint32(w.buf[:0], n)
	if err := w.flush(); err != nil {
		return fmt.Errorf("write vector count: %w", err)
	}
	return nil
}

// WriteVector writes one length-prefixed vector.
func (w *Writer) WriteVector(values []float64) error {
	w.buf = AppendVector(w.buf[:0], values)
	if err := w.flush(); err != nil {
		return fmt.Errorf("write vector: %w", err)
	}
	return nil
}

// WriteSum writes one float64 sum.
func (w *Writer) WriteSum(sum float64) error {
	w.buf = AppendFloat64(w.buf[:0], sum)
	if err := w.flush(); err != nil {
		return fmt.Errorf("write sum: %w", err)
	}
	return nil
}
