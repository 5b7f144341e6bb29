// Package assets resolves the stable handles carried by draw commands into
// borrowable pixel data.
//
// Commands never hold pointers to assets. They carry typed handles
// (ImageRef, DataRef, ColorMapRef, FontCharRef) that a Provider resolves at
// dispatch time, so an asset stays valid for every command queued before
// its deletion command.
package assets

import "fmt"

// ImageRef is a handle to an image in a Provider.
type ImageRef uint32

// DataRef is a handle to opaque caller data in a Provider.
type DataRef uint32

// ColorMapRef is a handle to a 256-entry palette.
type ColorMapRef uint32

// InvalidRef is the sentinel value for an invalid reference.
const InvalidRef = ^uint32(0)

// IsValid returns true if the reference is not InvalidRef.
func (r ImageRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// IsValid returns true if the reference is not InvalidRef.
func (r DataRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// IsValid returns true if the reference is not InvalidRef.
func (r ColorMapRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// FontCharRef addresses one glyph: a font page and a character in it.
type FontCharRef struct {
	Page uint32
	Char rune
}

// String returns a compact representation for logs.
func (r FontCharRef) String() string {
	return fmt.Sprintf("%d:%q", r.Page, r.Char)
}
