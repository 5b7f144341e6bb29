package image

import "testing"

func TestSampleNearest(t *testing.T) {
	buf, _ := NewImageBuf(2, 1, FormatRGBA8)
	_ = buf.SetRGBA(0, 0, 0, 0, 0, 255)
	_ = buf.SetRGBA(1, 0, 200, 200, 200, 255)

	tests := []struct {
		fx   float64
		want uint8
	}{
		{0.2, 0},
		{0.99, 0},
		{1.0, 200},
		{-5, 0},
		{10, 200},
	}
	for _, tt := range tests {
		if r, _, _, _ := SampleNearest(buf, tt.fx, 0.5); r != tt.want {
			t.Errorf("SampleNearest(%v) = %d, want %d", tt.fx, r, tt.want)
		}
	}
}

func TestSampleBilinear(t *testing.T) {
	buf, _ := NewImageBuf(2, 1, FormatRGBA8)
	_ = buf.SetRGBA(0, 0, 0, 0, 0, 255)
	_ = buf.SetRGBA(1, 0, 200, 200, 200, 255)

	tests := []struct {
		name string
		fx   float64
		want uint8
	}{
		{"left center", 0.5, 0},
		{"midpoint", 1.0, 100},
		{"right center", 1.5, 200},
		{"clamped", 5, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r, _, _, _ := Sample(buf, tt.fx, 0.5, InterpBilinear); r != tt.want {
				t.Errorf("r = %d, want %d", r, tt.want)
			}
		})
	}
}
