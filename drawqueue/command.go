package drawqueue

import (
	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/assets"
	"github.com/gogpu/framekit/canvas"
)

// CommandType identifies the kind of a draw command.
type CommandType uint8

const (
	// Primitive commands
	CmdLine     CommandType = iota // Line between two inclusive endpoints
	CmdRect                        // Rectangle outline
	CmdFillRect                    // Filled rectangle

	// Image commands
	CmdImage       // Image at a position
	CmdFilledImage // Image shape filled with one color
	CmdGlyphChar   // Font character with optional backing
	CmdCopy        // Region copy between screens
	CmdCopyToImage // Region copy from a screen into an image

	// State commands
	CmdScissorEnable  // Clip MAIN screen drawing
	CmdScissorDisable // Remove the MAIN screen clip
	CmdSetMipmap      // Attach a mipmap to an image

	// Resource commands
	CmdDeleteImage // Release an image
	CmdDeleteData  // Release a data object

	// Control commands
	CmdWaitForSignal // Fire a signal when reached
	CmdReinitVideo   // Recreate the video pipeline
	CmdCallback      // Run a function on the render goroutine
)

var commandTypeNames = [...]string{
	CmdLine:           "Line",
	CmdRect:           "Rect",
	CmdFillRect:       "FillRect",
	CmdImage:          "Image",
	CmdFilledImage:    "FilledImage",
	CmdGlyphChar:      "GlyphChar",
	CmdCopy:           "Copy",
	CmdCopyToImage:    "CopyToImage",
	CmdScissorEnable:  "ScissorEnable",
	CmdScissorDisable: "ScissorDisable",
	CmdSetMipmap:      "SetMipmap",
	CmdDeleteImage:    "DeleteImage",
	CmdDeleteData:     "DeleteData",
	CmdWaitForSignal:  "WaitForSignal",
	CmdReinitVideo:    "ReinitVideo",
	CmdCallback:       "Callback",
}

// String returns a human-readable name for the command type.
func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return "Unknown"
}

// Command is a queued drawing operation. Commands are plain values; asset
// references are handles resolved by the consumer at dispatch time.
type Command interface {
	// Type returns the command type for dispatch.
	Type() CommandType
}

// ---------------------------------------------------------------------------
// Primitive Commands
// ---------------------------------------------------------------------------

// LineCommand draws a line. Both endpoints are drawn.
type LineCommand struct {
	Screen framekit.Screen
	X1, Y1 int
	X2, Y2 int
	Color  framekit.Color
}

// Type implements Command.
func (LineCommand) Type() CommandType { return CmdLine }

// RectCommand draws the outline of Rect.
type RectCommand struct {
	Screen framekit.Screen
	Rect   framekit.Rect
	Color  framekit.Color
}

// Type implements Command.
func (RectCommand) Type() CommandType { return CmdRect }

// FillRectCommand fills Rect.
type FillRectCommand struct {
	Screen framekit.Screen
	Rect   framekit.Rect
	Color  framekit.Color
}

// Type implements Command.
func (FillRectCommand) Type() CommandType { return CmdFillRect }

// ---------------------------------------------------------------------------
// Image Commands
// ---------------------------------------------------------------------------

// ImageCommand draws an image with its hot spot at At.
type ImageCommand struct {
	Screen framekit.Screen
	Image  assets.ImageRef
	At     framekit.Point

	// ColorMap overrides the image palette for indexed images when valid.
	ColorMap assets.ColorMapRef

	// Scale is in 1/256 units. Zero means unscaled.
	Scale int
	Mode  canvas.ScaleMode
	Blend canvas.DrawMode
}

// Type implements Command.
func (ImageCommand) Type() CommandType { return CmdImage }

// FilledImageCommand paints Color through the image's alpha.
type FilledImageCommand struct {
	Screen framekit.Screen
	Image  assets.ImageRef
	At     framekit.Point
	Color  framekit.Color

	// Scale is in 1/256 units. Zero means unscaled.
	Scale int
	Mode  canvas.ScaleMode
}

// Type implements Command.
func (FilledImageCommand) Type() CommandType { return CmdFilledImage }

// GlyphCommand draws one font character with its pen position at At.
type GlyphCommand struct {
	Screen framekit.Screen
	Char   assets.FontCharRef
	At     framekit.Point
	Color  framekit.Color

	// Backing is drawn beneath the glyph when valid.
	Backing assets.ImageRef
}

// Type implements Command.
func (GlyphCommand) Type() CommandType { return CmdGlyphChar }

// CopyCommand copies SrcRect of Src to At on Dst. Src and Dst may be the
// same screen.
type CopyCommand struct {
	Src     framekit.Screen
	Dst     framekit.Screen
	SrcRect framekit.Rect
	At      framekit.Point
}

// Type implements Command.
func (CopyCommand) Type() CommandType { return CmdCopy }

// CopyToImageCommand copies Rect of Screen to the origin of Image.
type CopyToImageCommand struct {
	Screen framekit.Screen
	Rect   framekit.Rect
	Image  assets.ImageRef
}

// Type implements Command.
func (CopyToImageCommand) Type() CommandType { return CmdCopyToImage }

// ---------------------------------------------------------------------------
// State Commands
// ---------------------------------------------------------------------------

// ScissorEnableCommand restricts later MAIN screen drawing to Rect.
type ScissorEnableCommand struct {
	Rect framekit.Rect
}

// Type implements Command.
func (ScissorEnableCommand) Type() CommandType { return CmdScissorEnable }

// ScissorDisableCommand removes the MAIN screen clip.
type ScissorDisableCommand struct{}

// Type implements Command.
func (ScissorDisableCommand) Type() CommandType { return CmdScissorDisable }

// SetMipmapCommand attaches Mipmap to Image.
type SetMipmapCommand struct {
	Image   assets.ImageRef
	Mipmap  assets.ImageRef
	HotSpot framekit.Point
}

// Type implements Command.
func (SetMipmapCommand) Type() CommandType { return CmdSetMipmap }

// ---------------------------------------------------------------------------
// Resource Commands
// ---------------------------------------------------------------------------

// DeleteImageCommand releases an image after every earlier command that
// references it has been dispatched.
type DeleteImageCommand struct {
	Image assets.ImageRef
}

// Type implements Command.
func (DeleteImageCommand) Type() CommandType { return CmdDeleteImage }

// DeleteDataCommand releases a data object.
type DeleteDataCommand struct {
	Data assets.DataRef
}

// Type implements Command.
func (DeleteDataCommand) Type() CommandType { return CmdDeleteData }

// ---------------------------------------------------------------------------
// Control Commands
// ---------------------------------------------------------------------------

// WaitForSignalCommand fires Signal when the consumer reaches it.
type WaitForSignalCommand struct {
	Signal *Signal
}

// Type implements Command.
func (WaitForSignalCommand) Type() CommandType { return CmdWaitForSignal }

// ReinitVideoCommand recreates the video pipeline on the render goroutine.
type ReinitVideoCommand struct{}

// Type implements Command.
func (ReinitVideoCommand) Type() CommandType { return CmdReinitVideo }

// CallbackCommand runs Fn on the render goroutine. Fn runs inside Flush,
// so it must not block on Push or wait for a signal.
type CallbackCommand struct {
	Fn func()
}

// Type implements Command.
func (CallbackCommand) Type() CommandType { return CmdCallback }
