package npy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/robert-malhotra/go-czi/czi"
	binpkg "github.com/robert-malhotra/go-czi/internal/binary"
	"github.com/robert-malhotra/go-czi/internal/pixel"
	"github.com/robert-malhotra/go-czi/internal/shape"
)

// Magic is the signature at the start of every .npy stream.
const Magic = "\x93NUMPY"

const (
	versionMajor = 1
	versionMinor = 0
	headerAlign  = 64
	maxHeaderLen = 1<<16 - 1
)

// Common errors
var (
	ErrInvalidMagic   = errors.New("not a .npy stream")
	ErrVersion        = errors.New("unsupported .npy version")
	ErrHeader         = errors.New("malformed .npy header")
	ErrFortranOrder   = errors.New("fortran order arrays are not supported")
	ErrDescr          = errors.New("unsupported dtype")
	ErrLabels         = errors.New("dimension labels do not match array rank")
	ErrHeaderTooLarge = errors.New("header exceeds version 1.0 limit")
)

// defaultLabels are given to leading axes of an array read without labels.
// None of them has a meaning in the canonical dimension order.
const defaultLabels = "ADEFGJKLNOPQUW"

// hostOrder is the byte order character of the host.
func hostOrder() byte {
	if cpu.IsBigEndian {
		return '>'
	}
	return '<'
}

// Descr returns the NumPy dtype string for the element kind in host byte order.
func Descr(k czi.Kind) (string, error) {
	code := k.Code()
	if code == "" {
		return "", fmt.Errorf("%w: element kind %s", ErrDescr, k)
	}
	if k.Size() == 1 {
		return "|" + code, nil
	}
	return string(hostOrder()) + code, nil
}

// header renders the version 1.0 header dictionary, padded so the data
// starts on a 64 byte boundary.
func header(descr string, extents []int) (string, error) {
	var b strings.Builder
	b.WriteString("{'descr': '")
	b.WriteString(descr)
	b.WriteString("', 'fortran_order': False, 'shape': (")
	for i, e := range extents {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(e))
	}
	if len(extents) == 1 {
		b.WriteByte(',')
	}
	b.WriteString("), }")

	// magic + version + uint16 length + dict + '\n'
	pre := len(Magic) + 2 + 2
	n := b.Len() + 1
	if pad := (headerAlign - (pre+n)%headerAlign) % headerAlign; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteByte('\n')
	if b.Len() > maxHeaderLen {
		return "", fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, b.Len())
	}
	return b.String(), nil
}

// Write writes a as a version 1.0 .npy stream. Samples are written in host
// byte order and the descr says so. An array with an empty shape is written
// with shape (0,).
func Write(w io.Writer, a *czi.Array) error {
	descr, err := Descr(a.Kind())
	if err != nil {
		return err
	}
	extents := a.Shape.Extents()
	if len(extents) == 0 {
		extents = []int{0}
	}
	hdr, err := header(descr, extents)
	if err != nil {
		return err
	}

	bw := binpkg.NewWriter(w, binary.LittleEndian)
	bw.WriteBytes([]byte(Magic))
	bw.WriteUint8(versionMajor)
	bw.WriteUint8(versionMinor)
	bw.WriteUint16(uint16(len(hdr)))
	bw.WriteBytes([]byte(hdr))
	bw.WriteBytes(a.Bytes())
	if err := bw.Err(); err != nil {
		return fmt.Errorf("write npy: %w", err)
	}
	return nil
}

// Read reads a version 1.0 .npy stream. Samples stored in the other byte
// order are swapped to host order.
//
// .npy carries no axis labels. Unless WithDims is given, the last two axes
// are labelled Y and X and leading axes get placeholder labels.
func Read(r io.Reader, opts ...ReadOption) (*czi.Array, error) {
	o := buildReadOptions(opts)
	br := binpkg.NewReader(r, binary.LittleEndian)

	magic, err := br.ReadBytes(len(Magic))
	if err != nil {
		return nil, fmt.Errorf("read npy magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, ErrInvalidMagic
	}
	major, err := br.ReadUint8()
	if err != nil {
		return nil, err
	}
	if _, err := br.ReadUint8(); err != nil {
		return nil, err
	}
	if major != versionMajor {
		return nil, fmt.Errorf("%w: %d", ErrVersion, major)
	}
	n, err := br.ReadUint16()
	if err != nil {
		return nil, err
	}
	raw, err := br.ReadBytes(int(n))
	if err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}

	descr, extents, err := parseHeader(string(raw))
	if err != nil {
		return nil, err
	}
	order, kind, err := parseDescr(descr)
	if err != nil {
		return nil, err
	}

	if len(extents) == 0 {
		return nil, fmt.Errorf("%w: scalar arrays are not supported", ErrHeader)
	}
	s, err := labelShape(o.dims, extents)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	count, size := s.Len(), kind.Size()
	if count > math.MaxInt/size {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrHeader, count, size)
	}

	// the header alone must not decide how much is allocated
	var data bytes.Buffer
	if _, err := io.CopyN(&data, r, int64(count*size)); err != nil {
		return nil, fmt.Errorf("read npy data (%d elements): %w", count, err)
	}
	buf, err := czi.NewBuffer(kind, count)
	if err != nil {
		return nil, err
	}
	copy(buf.Bytes(), data.Bytes())
	if order != hostOrder() && size > 1 {
		swap(buf.Bytes(), size)
	}

	format := o.format
	if format == pixel.Invalid {
		if format, err = pixel.FormatFor(kind, 1); err != nil {
			return nil, err
		}
	}
	if k, err := pixel.KindOf(format); err != nil || k != kind {
		return nil, fmt.Errorf("%w: %s does not store %s elements", czi.ErrElementKind, format, kind)
	}
	return czi.NewArray(s, buf, format)
}

// parseHeader extracts descr and shape from a header dictionary.
func parseHeader(h string) (string, []int, error) {
	h = strings.TrimSpace(h)
	if !strings.HasPrefix(h, "{") || !strings.HasSuffix(h, "}") {
		return "", nil, fmt.Errorf("%w: %q", ErrHeader, h)
	}

	descr, err := dictValue(h, "descr")
	if err != nil {
		return "", nil, err
	}
	descr = strings.Trim(descr, "'\"")

	fortran, err := dictValue(h, "fortran_order")
	if err != nil {
		return "", nil, err
	}
	switch fortran {
	case "False":
	case "True":
		return "", nil, ErrFortranOrder
	default:
		return "", nil, fmt.Errorf("%w: fortran_order %q", ErrHeader, fortran)
	}

	tuple, err := dictValue(h, "shape")
	if err != nil {
		return "", nil, err
	}
	if !strings.HasPrefix(tuple, "(") || !strings.HasSuffix(tuple, ")") {
		return "", nil, fmt.Errorf("%w: shape %q", ErrHeader, tuple)
	}
	var extents []int
	for _, part := range strings.Split(tuple[1:len(tuple)-1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSuffix(part, "L"))
		if err != nil || v < 0 {
			return "", nil, fmt.Errorf("%w: shape entry %q", ErrHeader, part)
		}
		extents = append(extents, v)
	}
	return descr, extents, nil
}

// dictValue returns the raw text of the value stored under key.
func dictValue(h, key string) (string, error) {
	i := strings.Index(h, "'"+key+"'")
	if i < 0 {
		return "", fmt.Errorf("%w: missing key %q", ErrHeader, key)
	}
	rest := strings.TrimSpace(h[i+len(key)+2:])
	if !strings.HasPrefix(rest, ":") {
		return "", fmt.Errorf("%w: no value for %q", ErrHeader, key)
	}
	rest = strings.TrimSpace(rest[1:])
	if rest == "" {
		return "", fmt.Errorf("%w: no value for %q", ErrHeader, key)
	}

	var end int
	switch rest[0] {
	case '(':
		end = strings.IndexByte(rest, ')') + 1
	case '\'', '"':
		end = strings.IndexByte(rest[1:], rest[0]) + 2
	default:
		end = strings.IndexAny(rest, ",}")
	}
	if end <= 0 {
		return "", fmt.Errorf("%w: unterminated value for %q", ErrHeader, key)
	}
	return strings.TrimSpace(rest[:end]), nil
}

// parseDescr splits a dtype string into byte order and element kind.
func parseDescr(descr string) (byte, czi.Kind, error) {
	if len(descr) < 2 {
		return 0, pixel.KindInvalid, fmt.Errorf("%w: %q", ErrDescr, descr)
	}
	order := descr[0]
	switch order {
	case '<', '>', '|':
	case '=':
		order = hostOrder()
	default:
		return 0, pixel.KindInvalid, fmt.Errorf("%w: byte order in %q", ErrDescr, descr)
	}
	kind, err := pixel.KindFromCode(descr[1:])
	if err != nil {
		return 0, pixel.KindInvalid, fmt.Errorf("%w: %w", ErrDescr, err)
	}
	if order == '|' && kind.Size() > 1 {
		return 0, pixel.KindInvalid, fmt.Errorf("%w: %q has no byte order", ErrDescr, descr)
	}
	return order, kind, nil
}

// labelShape attaches labels to extents. The shape (0,) is the empty array.
func labelShape(dims string, extents []int) (czi.Shape, error) {
	if len(extents) == 1 && extents[0] == 0 {
		return czi.Shape{}, nil
	}
	if dims == "" {
		dims = placeholderDims(len(extents))
	}
	if len(dims) != len(extents) {
		return nil, fmt.Errorf("%w: %q for rank %d", ErrLabels, dims, len(extents))
	}
	s := make(czi.Shape, len(extents))
	for i, e := range extents {
		s[i] = shape.Entry{Dim: shape.Dim(dims[i]), Extent: e}
	}
	return s, nil
}

func placeholderDims(rank int) string {
	switch {
	case rank == 1:
		return "X"
	case rank-2 <= len(defaultLabels):
		return defaultLabels[:rank-2] + "YX"
	}
	return ""
}

// swap reverses the byte order of every size byte element in place.
func swap(data []byte, size int) {
	for i := 0; i+size <= len(data); i += size {
		e := data[i : i+size]
		for l, r := 0, size-1; l < r; l, r = l+1, r-1 {
			e[l], e[r] = e[r], e[l]
		}
	}
}

// Encode returns the .npy encoding of a.
func Encode(a *czi.Array) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
