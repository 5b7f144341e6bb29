package drawqueue

import "testing"

func TestCommandTypes(t *testing.T) {
	tests := []struct {
		cmd  Command
		want CommandType
		name string
	}{
		{LineCommand{}, CmdLine, "Line"},
		{RectCommand{}, CmdRect, "Rect"},
		{FillRectCommand{}, CmdFillRect, "FillRect"},
		{ImageCommand{}, CmdImage, "Image"},
		{FilledImageCommand{}, CmdFilledImage, "FilledImage"},
		{GlyphCommand{}, CmdGlyphChar, "GlyphChar"},
		{CopyCommand{}, CmdCopy, "Copy"},
		{CopyToImageCommand{}, CmdCopyToImage, "CopyToImage"},
		{ScissorEnableCommand{}, CmdScissorEnable, "ScissorEnable"},
		{ScissorDisableCommand{}, CmdScissorDisable, "ScissorDisable"},
		{SetMipmapCommand{}, CmdSetMipmap, "SetMipmap"},
		{DeleteImageCommand{}, CmdDeleteImage, "DeleteImage"},
		{DeleteDataCommand{}, CmdDeleteData, "DeleteData"},
		{WaitForSignalCommand{}, CmdWaitForSignal, "WaitForSignal"},
		{ReinitVideoCommand{}, CmdReinitVideo, "ReinitVideo"},
		{CallbackCommand{}, CmdCallback, "Callback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
			if got := tt.want.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
	if len(tests) != len(commandTypeNames) {
		t.Errorf("tested %d command types, names table has %d", len(tests), len(commandTypeNames))
	}
}

func TestCommandTypeUnknown(t *testing.T) {
	if got := CommandType(200).String(); got != "Unknown" {
		t.Errorf("CommandType(200).String() = %q, want Unknown", got)
	}
}

func TestSignal(t *testing.T) {
	s := NewSignal()
	if s.Fired() {
		t.Fatal("new signal reports fired")
	}
	s.Fire()
	s.Fire()
	if !s.Fired() {
		t.Fatal("Fired() = false after Fire")
	}
	s.Wait()
	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after Fire")
	}
}
