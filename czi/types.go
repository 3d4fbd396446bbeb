package czi

import (
	"github.com/robert-malhotra/go-czi/internal/pixel"
	"github.com/robert-malhotra/go-czi/internal/shape"
)

// PixelFormat identifies the pixel encoding of a decoded bitmap.
type PixelFormat = pixel.Format

// Kind is the element type of a buffer.
type Kind = pixel.Kind

// Supported pixel formats.
const (
	Gray8       = pixel.Gray8
	Gray16      = pixel.Gray16
	Gray32      = pixel.Gray32
	Gray32Float = pixel.Gray32Float
	Bgr24       = pixel.Bgr24
	Bgr48       = pixel.Bgr48
	Bgr96Float  = pixel.Bgr96Float
)

// Element kinds.
const (
	KindUint8   = pixel.KindUint8
	KindUint16  = pixel.KindUint16
	KindUint32  = pixel.KindUint32
	KindFloat32 = pixel.KindFloat32
)

// Dim is a single-character dimension label.
type Dim = shape.Dim

// Shape is an ordered list of labelled axes.
type Shape = shape.Shape

// ShapeEntry is one labelled axis of a Shape.
type ShapeEntry = shape.Entry

// Dimension labels.
const (
	DimB = shape.B
	DimV = shape.V
	DimH = shape.H
	DimI = shape.I
	DimS = shape.S
	DimR = shape.R
	DimT = shape.T
	DimC = shape.C
	DimZ = shape.Z
	DimM = shape.M
	DimY = shape.Y
	DimX = shape.X
)
