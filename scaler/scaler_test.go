package scaler

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/framekit"
)

var allKinds = []Kind{HQ, XBRZ}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		factor  int
		wantErr error
	}{
		{"hq2x", HQ, 2, nil},
		{"xbrz4x", XBRZ, 4, nil},
		{"factor 1", HQ, 1, ErrUnsupportedFactor},
		{"factor 5", XBRZ, 5, ErrUnsupportedFactor},
		{"unknown kind", Kind(7), 2, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.kind, tt.factor)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, framekit.ErrInvalidArgument) {
					t.Errorf("error %v should wrap ErrInvalidArgument", err)
				}
				return
			}
			defer s.Close()
			if s.Factor() != tt.factor || s.Kind() != tt.kind {
				t.Errorf("got %v", s)
			}
		})
	}
}

func TestString(t *testing.T) {
	s, _ := New(XBRZ, 3)
	if got := s.String(); got != "XBRZ3x" {
		t.Errorf("String() = %q, want XBRZ3x", got)
	}
	if got := Kind(9).String(); got != "Kind(9)" {
		t.Errorf("Kind(9).String() = %q", got)
	}
}

func TestScaleDimensionLaw(t *testing.T) {
	const w, h = 7, 5
	src := bytes.Repeat([]byte{10, 20, 30, 0xFF}, w*h)

	for _, kind := range allKinds {
		for f := MinFactor; f <= MaxFactor; f++ {
			s, err := New(kind, f)
			if err != nil {
				t.Fatal(err)
			}
			t.Run(s.String(), func(t *testing.T) {
				ow, oh := s.OutputSize(w, h)
				if ow != w*f || oh != h*f {
					t.Fatalf("OutputSize() = %dx%d, want %dx%d", ow, oh, w*f, h*f)
				}
				dst := bytes.Repeat([]byte{0xAB}, ow*oh*4)
				if err := s.Scale(dst, src, w, h); err != nil {
					t.Fatal(err)
				}
				// A uniform source must come out uniform, which also proves
				// every output pixel was written.
				if want := bytes.Repeat([]byte{10, 20, 30, 0xFF}, ow*oh); !bytes.Equal(dst, want) {
					t.Error("uniform source produced non-uniform output")
				}
			})
		}
	}
}

func TestScaleBufferValidation(t *testing.T) {
	s, _ := New(HQ, 2)
	src := make([]byte, 4*4*4)

	if err := s.Scale(make([]byte, 8*8*4-1), src, 4, 4); !errors.Is(err, ErrBufferSize) {
		t.Errorf("short dst error = %v, want ErrBufferSize", err)
	}
	if err := s.Scale(make([]byte, 8*8*4), src[:10], 4, 4); !errors.Is(err, ErrBufferSize) {
		t.Errorf("short src error = %v, want ErrBufferSize", err)
	}
	if err := s.Scale(nil, nil, 0, 4); !errors.Is(err, framekit.ErrInvalidArgument) {
		t.Errorf("zero width error = %v, want ErrInvalidArgument", err)
	}

	s.Close()
	s.Close()
	if err := s.Scale(make([]byte, 8*8*4), src, 4, 4); !errors.Is(err, ErrClosed) {
		t.Errorf("Scale after Close error = %v, want ErrClosed", err)
	}
}

// staircase returns a w x w image that is black where x+y < w and white
// elsewhere.
func staircase(w int) []byte {
	buf := make([]byte, w*w*4)
	for y := range w {
		for x := range w {
			v := byte(0)
			if x+y >= w {
				v = 0xFF
			}
			copy(buf[(y*w+x)*4:], []byte{v, v, v, 0xFF})
		}
	}
	return buf
}

func pixelAt(buf []byte, w, x, y int) rgba {
	return load(buf, (y*w+x)*4)
}

func TestDiagonalEdgeIsSmoothed(t *testing.T) {
	const w = 4
	src := staircase(w)

	tests := []struct {
		kind Kind
		want rgba
	}{
		{HQ, rgba{191, 191, 191, 0xFF}},
		{XBRZ, rgba{0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, _ := New(tt.kind, 2)
			dst := make([]byte, w*w*4*4)
			if err := s.Scale(dst, src, w, w); err != nil {
				t.Fatal(err)
			}
			// Source (1,2) is black with white below, right and diagonal;
			// its bottom-right output pixel is (3,5).
			if got := pixelAt(dst, w*2, 3, 5); got != tt.want {
				t.Errorf("corner pixel = %v, want %v", got, tt.want)
			}
			if got := pixelAt(dst, w*2, 2, 4); got != (rgba{0, 0, 0, 0xFF}) {
				t.Errorf("inner pixel = %v, want black", got)
			}
		})
	}
}

func TestHorizontalLineStaysCrisp(t *testing.T) {
	const w, h = 4, 3
	src := make([]byte, w*h*4)
	for i := range src {
		src[i] = 0
		if i%4 == 3 || (i >= w*4 && i < 2*w*4) {
			src[i] = 0xFF
		}
	}

	for _, kind := range allKinds {
		for f := MinFactor; f <= MaxFactor; f++ {
			s, _ := New(kind, f)
			t.Run(s.String(), func(t *testing.T) {
				dst := make([]byte, w*h*f*f*4)
				if err := s.Scale(dst, src, w, h); err != nil {
					t.Fatal(err)
				}
				for y := range h * f {
					want := byte(0)
					if y >= f && y < 2*f {
						want = 0xFF
					}
					for x := range w * f {
						if got := pixelAt(dst, w*f, x, y)[0]; got != want {
							t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want)
						}
					}
				}
			})
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	const w, h = 40, 33
	src := make([]byte, w*h*4)
	for i := range src {
		src[i] = byte(i*7 + i/13)
	}

	for _, kind := range allKinds {
		serial, _ := New(kind, 3)
		par, _ := New(kind, 3, WithWorkers(4))
		t.Run(kind.String(), func(t *testing.T) {
			defer par.Close()
			a := make([]byte, w*h*9*4)
			b := make([]byte, w*h*9*4)
			if err := serial.Scale(a, src, w, h); err != nil {
				t.Fatal(err)
			}
			if err := par.Scale(b, src, w, h); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(a, b) {
				t.Error("parallel output differs from serial output")
			}
		})
	}
}

func TestLogActiveOnce(t *testing.T) {
	var out bytes.Buffer
	framekit.SetLogger(slog.New(slog.NewTextHandler(&out, nil)))
	defer framekit.SetLogger(nil)

	s, _ := New(HQ, 2)
	s.LogActive()
	s.LogActive()

	if n := strings.Count(out.String(), "software scaler active"); n != 1 {
		t.Errorf("logged %d times, want 1", n)
	}
	if !strings.Contains(out.String(), "scaler=HQ2x") {
		t.Errorf("log line missing scaler name: %s", out.String())
	}
}
