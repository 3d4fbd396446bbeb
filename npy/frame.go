package npy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-czi/czi"
	binpkg "github.com/robert-malhotra/go-czi/internal/binary"
	"github.com/robert-malhotra/go-czi/internal/filter"
)

// FrameMagic starts a filtered stream.
const FrameMagic = "CZPF"

const (
	frameVersion    = 1
	maxFrameFilters = 16
)

// ErrFrame is returned for a damaged or unknown filtered stream.
var ErrFrame = errors.New("invalid filtered frame")

// Filtered frame layout, all integers little-endian:
//
//	magic    [4]byte "CZPF"
//	version  uint8
//	nfilters uint8
//	filters  nfilters x (id uint16, client data uint32)
//	length   uint64  payload bytes
//	payload  .npy stream encoded by the filters in order

// WriteFiltered writes a as a .npy stream passed through a filter pipeline.
// The default pipeline is zstd at its default level.
func WriteFiltered(w io.Writer, a *czi.Array, opts ...WriteOption) error {
	o := defaultWriteOptions()
	for _, opt := range opts {
		opt(o)
	}
	p, err := filter.NewPipeline(o.infos(a.Kind().Size()))
	if err != nil {
		return err
	}

	raw, err := Encode(a)
	if err != nil {
		return err
	}
	payload, err := p.Encode(raw)
	if err != nil {
		return fmt.Errorf("filter npy payload: %w", err)
	}

	bw := binpkg.NewWriter(w, binary.LittleEndian)
	bw.WriteBytes([]byte(FrameMagic))
	bw.WriteUint8(frameVersion)
	bw.WriteUint8(uint8(p.Len()))
	for _, info := range p.Infos() {
		bw.WriteUint16(info.ID)
		bw.WriteUint32(info.ClientData)
	}
	bw.WriteUint64(uint64(len(payload)))
	bw.WriteBytes(payload)
	if err := bw.Err(); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFiltered reads a stream written by WriteFiltered.
func ReadFiltered(r io.Reader, opts ...ReadOption) (*czi.Array, error) {
	br := binpkg.NewReader(r, binary.LittleEndian)

	magic, err := br.ReadBytes(len(FrameMagic))
	if err != nil {
		return nil, fmt.Errorf("read frame magic: %w", err)
	}
	if string(magic) != FrameMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrFrame, magic)
	}
	version, err := br.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != frameVersion {
		return nil, fmt.Errorf("%w: version %d", ErrFrame, version)
	}
	n, err := br.ReadUint8()
	if err != nil {
		return nil, err
	}
	if n > maxFrameFilters {
		return nil, fmt.Errorf("%w: %d filters", ErrFrame, n)
	}

	infos := make([]filter.Info, n)
	for i := range infos {
		if infos[i].ID, err = br.ReadUint16(); err != nil {
			return nil, err
		}
		if infos[i].ClientData, err = br.ReadUint32(); err != nil {
			return nil, err
		}
	}
	p, err := filter.NewPipeline(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrame, err)
	}

	length, err := br.ReadUint64()
	if err != nil {
		return nil, err
	}
	if int64(length) < 0 {
		return nil, fmt.Errorf("%w: payload length %d", ErrFrame, length)
	}
	var payload bytes.Buffer
	if _, err := io.CopyN(&payload, r, int64(length)); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", length, err)
	}
	raw, err := p.Decode(payload.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrame, err)
	}
	return Read(bytes.NewReader(raw), opts...)
}
