//go:build !headless

package ebiten

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/backend"
	"github.com/gogpu/framekit/canvas"
)

func openBackend(t *testing.T) *Backend {
	t.Helper()
	b := New()
	if err := b.Open(backend.SurfaceConfig{Width: 4, Height: 3, WindowWidth: 8, WindowHeight: 6}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.NameEbiten) {
		t.Fatal("ebiten backend not registered")
	}
	b, err := backend.NewBackend(backend.NameEbiten)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.Name() != backend.NameEbiten {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestOpen(t *testing.T) {
	b := openBackend(t)
	if err := b.Open(backend.SurfaceConfig{Width: 1, Height: 1}); !errors.Is(err, backend.ErrAlreadyOpen) {
		t.Errorf("second Open() = %v, want ErrAlreadyOpen", err)
	}
	info := b.Info()
	if info.Width != 8 || info.Height != 6 {
		t.Errorf("Info() = %dx%d, want 8x6", info.Width, info.Height)
	}
	if w, h := (&game{b: b}).Layout(100, 100); w != 8 || h != 6 {
		t.Errorf("Layout() = %dx%d, want window 8x6", w, h)
	}

	bad := New()
	if err := bad.Open(backend.SurfaceConfig{}); !errors.Is(err, framekit.ErrInvalidArgument) {
		t.Errorf("Open(zero) = %v, want ErrInvalidArgument", err)
	}
}

func TestNotOpen(t *testing.T) {
	b := New()
	if _, err := b.CreateTexture(1, 1, canvas.RGBX8888); !errors.Is(err, backend.ErrNotOpen) {
		t.Errorf("CreateTexture() = %v", err)
	}
	if err := b.Clear(); !errors.Is(err, backend.ErrNotOpen) {
		t.Errorf("Clear() = %v", err)
	}
	if err := b.Present(); !errors.Is(err, backend.ErrNotOpen) {
		t.Errorf("Present() = %v", err)
	}
	if err := b.Run(func() error { return nil }); !errors.Is(err, backend.ErrNotOpen) {
		t.Errorf("Run() = %v", err)
	}
}

func TestUpdateTexturePremultiplies(t *testing.T) {
	b := openBackend(t)
	id, err := b.CreateTexture(1, 1, canvas.RGBA8)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.UpdateTexture(id, []byte{200, 100, 50, 128}, 4); err != nil {
		t.Fatalf("UpdateTexture() error = %v", err)
	}
	tex := b.textures[id]
	if !tex.dirty {
		t.Error("texture not marked dirty")
	}
	if want := []byte{100, 50, 25, 128}; string(tex.pix) != string(want) {
		t.Errorf("pix = %v, want %v", tex.pix, want)
	}
	if err := b.UpdateTexture(99, nil, 0); !errors.Is(err, backend.ErrUnknownTexture) {
		t.Errorf("UpdateTexture(99) = %v", err)
	}
	if _, err := b.CreateTexture(1, 1, canvas.Indexed8); !errors.Is(err, backend.ErrUnsupportedFormat) {
		t.Errorf("CreateTexture(Indexed8) = %v", err)
	}
}

func TestDisplayList(t *testing.T) {
	b := openBackend(t)
	id, _ := b.CreateTexture(4, 3, canvas.RGBX8888)

	_ = b.SetBlendMode(backend.BlendNone)
	_ = b.SetDrawColor(framekit.Black)
	_ = b.Clear()
	_ = b.Copy(id, nil, nil, 255)
	_ = b.SetBlendMode(backend.BlendAlpha)
	_ = b.SetDrawColor(framekit.RGBA(0, 0, 0, 100))
	clip := framekit.RectXYWH(1, 1, 2, 1)
	_ = b.FillRect(&clip)

	if len(b.shown) != 0 {
		t.Fatal("ops visible before Present")
	}
	if err := b.Present(); err != nil {
		t.Fatal(err)
	}
	if len(b.shown) != 3 || len(b.pending) != 0 {
		t.Fatalf("shown, pending = %d, %d; want 3, 0", len(b.shown), len(b.pending))
	}
	if o := b.shown[1]; o.kind != opCopy || !o.wholeSrc || !o.wholeDst || o.blendMode != backend.BlendNone {
		t.Errorf("copy op = %+v", o)
	}
	if o := b.shown[2]; o.kind != opFill || o.dst != image.Rect(1, 1, 3, 2) || o.color.A != 100 || o.blendMode != backend.BlendAlpha {
		t.Errorf("fill op = %+v", o)
	}

	// Clear restarts the list.
	_ = b.FillRect(nil)
	_ = b.Clear()
	if len(b.pending) != 1 || b.pending[0].kind != opClear {
		t.Errorf("pending after Clear = %+v", b.pending)
	}
	if b.Frames() != 1 {
		t.Errorf("Frames() = %d", b.Frames())
	}
	if err := b.Copy(42, nil, nil, 255); !errors.Is(err, backend.ErrUnknownTexture) {
		t.Errorf("Copy(42) = %v", err)
	}
}

func TestToWindowScalesLogicalRects(t *testing.T) {
	b := openBackend(t)
	w, h := (&game{b: b}).Layout(0, 0)
	bounds := image.Rect(0, 0, w, h)

	tests := []struct {
		name string
		o    op
		want image.Rectangle
	}{
		{"whole", op{wholeDst: true}, image.Rect(0, 0, 8, 6)},
		{"full logical", op{dst: image.Rect(0, 0, 4, 3)}, image.Rect(0, 0, 8, 6)},
		{"inner", op{dst: image.Rect(1, 1, 3, 2)}, image.Rect(2, 2, 6, 4)},
		{"clipped", op{dst: image.Rect(3, 2, 6, 5)}, image.Rect(6, 4, 8, 6)},
		{"outside", op{dst: image.Rect(5, 5, 6, 6)}, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.toWindow(&tt.o, bounds); got != tt.want {
				t.Errorf("toWindow(%v) = %v, want %v", tt.o.dst, got, tt.want)
			}
		})
	}
}

func TestUpdateStopsOnFrameError(t *testing.T) {
	b := openBackend(t)
	boom := errors.New("boom")
	calls := 0
	b.frame = func() error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	}
	g := &game{b: b}
	if err := g.Update(); err != nil {
		t.Fatalf("first Update() = %v", err)
	}
	if err := g.Update(); err == nil {
		t.Fatal("Update() = nil after frame error")
	}
	if !errors.Is(b.err, boom) {
		t.Errorf("recorded error = %v, want boom", b.err)
	}
}
