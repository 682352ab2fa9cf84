package cordsearch

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Binary I/O primitives shared by every on-disk file format in this
// package: fixed-width little-endian integers and floats, and
// u32-length-prefixed UTF-8 strings. No padding, no magic numbers, no
// versioning — the layout is exactly what the writer emits, byte for
// byte, matching the segment format's binary contract.

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeF32(w io.Writer, v float32) error {
	return writeU32(w, math.Float32bits(v))
}

func readF32(r io.Reader) (float32, error) {
	u, err := readU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// writeString writes a u32 byte-length prefix followed by the raw
// UTF-8 bytes, no NUL terminator.
func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string body: %w", err)
	}
	return string(buf), nil
}

// newBufReader/newBufWriter wrap the standard buffered I/O helpers with
// 64 KiB buffers. The segment reader uses newBufReader for docs.bin and
// the lexicon; the writer uses newBufWriter for docs.bin, terms.bin and
// forward.bin. Barrel files are written unbuffered.
func newBufReader(r io.Reader) *bufio.Reader {
	return bufio.NewReaderSize(r, 64*1024)
}

func newBufWriter(w io.Writer) *bufio.Writer {
	return bufio.NewWriterSize(w, 64*1024)
}
