package pixel

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format identifies the pixel encoding of a decoded bitmap.
// Values follow the libCZI PixelType numbering.
type Format uint8

const (
	Gray8              Format = 0  // 8-bit grayscale
	Gray16             Format = 1  // 16-bit grayscale
	Gray32Float        Format = 2  // 4-byte float grayscale
	Bgr24              Format = 3  // 8-bit triples (order B, G, R)
	Bgr48              Format = 4  // 16-bit triples (order B, G, R)
	Bgr96Float         Format = 8  // 4-byte float triples (order B, G, R)
	Bgra32             Format = 9  // 8-bit quadruples, not storable
	Gray64ComplexFloat Format = 10 // complex, not storable
	Bgr192ComplexFloat Format = 11 // complex triples, not storable
	Gray32             Format = 12 // 32-bit integer grayscale
	Gray64Float        Format = 13 // 8-byte float grayscale, not storable

	// Invalid is returned by Parse for unknown names and by adapters that
	// cannot map a source image onto any format.
	Invalid Format = 0xff
)

// Kind is the Go element type used to store samples of a format.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindFloat32
)

// ErrUnsupported is matched by every error returned for a format outside
// the supported set.
var ErrUnsupported = errors.New("unsupported pixel type")

// UnsupportedError carries the offending format id.
type UnsupportedError struct {
	Format Format
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported pixel type %s (id %d)", e.Format, uint8(e.Format))
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

type info struct {
	name     string
	kind     Kind
	channels int
	gray     Format
}

// registry holds the storable formats. It is read-only after package init.
var registry = map[Format]info{
	Gray8:       {name: "Gray8", kind: KindUint8, channels: 1, gray: Gray8},
	Gray16:      {name: "Gray16", kind: KindUint16, channels: 1, gray: Gray16},
	Gray32:      {name: "Gray32", kind: KindUint32, channels: 1, gray: Gray32},
	Gray32Float: {name: "Gray32Float", kind: KindFloat32, channels: 1, gray: Gray32Float},
	Bgr24:       {name: "Bgr24", kind: KindUint8, channels: 3, gray: Gray8},
	Bgr48:       {name: "Bgr48", kind: KindUint16, channels: 3, gray: Gray16},
	Bgr96Float:  {name: "Bgr96Float", kind: KindFloat32, channels: 3, gray: Gray32Float},
}

// knownNames names formats that exist but cannot be stored, for error messages.
var knownNames = map[Format]string{
	Bgra32:             "Bgra32",
	Gray64ComplexFloat: "Gray64ComplexFloat",
	Bgr192ComplexFloat: "Bgr192ComplexFloat",
	Gray64Float:        "Gray64Float",
}

func lookup(f Format) (info, error) {
	in, ok := registry[f]
	if !ok {
		return info{}, &UnsupportedError{Format: f}
	}
	return in, nil
}

// ByteWidth returns the size in bytes of one stored element of the format.
func ByteWidth(f Format) (int, error) {
	in, err := lookup(f)
	if err != nil {
		return 0, err
	}
	return in.kind.Size(), nil
}

// Channels returns the number of samples per pixel: 1 or 3.
func Channels(f Format) (int, error) {
	in, err := lookup(f)
	if err != nil {
		return 0, err
	}
	return in.channels, nil
}

// KindOf returns the element kind used to store the format.
func KindOf(f Format) (Kind, error) {
	in, err := lookup(f)
	if err != nil {
		return KindInvalid, err
	}
	return in.kind, nil
}

// Supported reports whether the format can be stored.
func (f Format) Supported() bool {
	_, ok := registry[f]
	return ok
}

// IsColor reports whether the format is a supported 3-channel format.
func (f Format) IsColor() bool {
	in, ok := registry[f]
	return ok && in.channels == 3
}

// IsFloat reports whether the format stores floating-point samples.
func (f Format) IsFloat() bool {
	in, ok := registry[f]
	return ok && in.kind == KindFloat32
}

// Gray returns the single-channel format sharing this format's storage.
func (f Format) Gray() (Format, error) {
	in, err := lookup(f)
	if err != nil {
		return Invalid, err
	}
	return in.gray, nil
}

func (f Format) String() string {
	if in, ok := registry[f]; ok {
		return in.name
	}
	if name, ok := knownNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelType(%d)", uint8(f))
}

// Title returns a display name such as "Bgr96 Float".
func (f Format) Title() string {
	name := f.String()
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(strings.ToLower(b.String()))
}

// Parse returns the format with the given name, ignoring case.
func Parse(name string) (Format, error) {
	for f, in := range registry {
		if strings.EqualFold(in.name, name) {
			return f, nil
		}
	}
	for f, n := range knownNames {
		if strings.EqualFold(n, name) {
			return Invalid, &UnsupportedError{Format: f}
		}
	}
	return Invalid, fmt.Errorf("%w: unknown name %q", ErrUnsupported, name)
}

// All returns the supported formats in id order.
func All() []Format {
	out := make([]Format, 0, len(registry))
	for f := Format(0); f < Invalid; f++ {
		if _, ok := registry[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Size returns the element size in bytes, or 0 for KindInvalid.
func (k Kind) Size() int {
	switch k {
	case KindUint8:
		return 1
	case KindUint16:
		return 2
	case KindUint32, KindFloat32:
		return 4
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindFloat32:
		return "float32"
	default:
		return "invalid"
	}
}

// Code returns the NumPy type character and size, e.g. "u2" or "f4".
func (k Kind) Code() string {
	switch k {
	case KindUint8:
		return "u1"
	case KindUint16:
		return "u2"
	case KindUint32:
		return "u4"
	case KindFloat32:
		return "f4"
	default:
		return ""
	}
}

// KindFromCode is the inverse of Kind.Code.
func KindFromCode(code string) (Kind, error) {
	switch code {
	case "u1":
		return KindUint8, nil
	case "u2":
		return KindUint16, nil
	case "u4":
		return KindUint32, nil
	case "f4":
		return KindFloat32, nil
	default:
		return KindInvalid, fmt.Errorf("unsupported element code %q", code)
	}
}

// FormatFor returns the storable format with the given kind and channel count.
func FormatFor(k Kind, channels int) (Format, error) {
	for _, f := range All() {
		in := registry[f]
		if in.kind == k && in.channels == channels {
			return f, nil
		}
	}
	return Invalid, fmt.Errorf("%w: no format with %s elements and %d channels", ErrUnsupported, k, channels)
}
