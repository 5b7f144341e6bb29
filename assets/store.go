package assets

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/canvas"
	"github.com/gogpu/framekit/internal/cache"
)

// PaletteSize is the number of entries in a colormap.
const PaletteSize = 256

// DefaultGlyphCacheSize is the number of rendered glyphs a Store keeps.
const DefaultGlyphCacheSize = 1024

// ErrNilImage is returned when registering an image without pixels.
var ErrNilImage = fmt.Errorf("assets: nil image: %w", framekit.ErrInvalidArgument)

// ErrPaletteSize is returned by SetPalette for palettes longer than PaletteSize.
var ErrPaletteSize = errors.New("assets: palette exceeds 256 entries")

type glyphKey struct {
	page uint32
	char rune
}

// Store is an in-memory Provider. Handles index slices and are never
// reused, so a deleted handle stays invalid.
//
// Thread safety: Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	images   []*Image
	data     []any
	palettes map[ColorMapRef][]framekit.Color
	fonts    map[uint32]GlyphSource
	glyphs   *cache.Cache[glyphKey, *Glyph]

	paletteSource PaletteSource
}

var _ Provider = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	glyphCache int
}

// WithGlyphCacheSize bounds the rendered glyph cache. Zero or less keeps
// every glyph.
func WithGlyphCacheSize(n int) StoreOption {
	return func(o *storeOptions) {
		o.glyphCache = n
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	o := storeOptions{glyphCache: DefaultGlyphCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		images:   make([]*Image, 0, 64),
		palettes: make(map[ColorMapRef][]framekit.Color),
		fonts:    make(map[uint32]GlyphSource),
		glyphs:   cache.New[glyphKey, *Glyph](o.glyphCache),
	}
}

// AddImage registers a canvas with its hot spot and returns its handle.
func (s *Store) AddImage(c *canvas.Canvas, hot framekit.Point) (ImageRef, error) {
	if c == nil {
		return ImageRef(InvalidRef), ErrNilImage
	}
	return s.add(&Image{Canvas: c, HotSpot: hot}), nil
}

// AddPNG decodes a PNG and registers it. Paletted files keep their indices
// and carry their palette.
func (s *Store) AddPNG(r io.Reader, hot framekit.Point) (ImageRef, error) {
	c, pal, err := canvas.DecodePNG(r)
	if err != nil {
		return ImageRef(InvalidRef), fmt.Errorf("assets: %w", err)
	}
	return s.add(&Image{Canvas: c, HotSpot: hot, Palette: pal}), nil
}

func (s *Store) add(img *Image) ImageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
	// #nosec G115 -- store size is bounded by available memory, well under uint32 max
	return ImageRef(uint32(len(s.images) - 1))
}

// Image returns the image for ref.
func (s *Store) Image(ref ImageRef) (*Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(ref) >= len(s.images) || s.images[ref] == nil {
		return nil, false
	}
	return s.images[ref], true
}

// DeleteImage invalidates ref. Other images using it as a mipmap keep
// their reference until they are deleted themselves.
func (s *Store) DeleteImage(ref ImageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(ref) < len(s.images) {
		s.images[ref] = nil
	}
}

// SetMipmap attaches mip as the pre-reduced copy of img.
func (s *Store) SetMipmap(img, mip ImageRef, hot framekit.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(img) >= len(s.images) || s.images[img] == nil {
		return
	}
	var m *Image
	if int(mip) < len(s.images) {
		m = s.images[mip]
	}
	// Images are shared with the render goroutine; replace, don't mutate.
	updated := *s.images[img]
	updated.Mipmap = m
	updated.MipmapHot = hot
	s.images[img] = &updated
}

// ImageCount returns the number of handles issued, deleted ones included.
func (s *Store) ImageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// AddData registers opaque caller data.
func (s *Store) AddData(v any) DataRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, v)
	// #nosec G115 -- store size is bounded by available memory, well under uint32 max
	return DataRef(uint32(len(s.data) - 1))
}

// Data returns the data for ref.
func (s *Store) Data(ref DataRef) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(ref) >= len(s.data) || s.data[ref] == nil {
		return nil, false
	}
	return s.data[ref], true
}

// DeleteData invalidates ref.
func (s *Store) DeleteData(ref DataRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(ref) < len(s.data) {
		s.data[ref] = nil
	}
}

// SetPalette stores a colormap owned by the store. Shorter palettes are
// padded with transparent entries.
func (s *Store) SetPalette(ref ColorMapRef, colors []framekit.Color) error {
	if len(colors) > PaletteSize {
		return ErrPaletteSize
	}
	pal := make([]framekit.Color, PaletteSize)
	copy(pal, colors)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.palettes[ref] = pal
	return nil
}

// SetPaletteSource makes src the fallback for colormaps the store does not
// hold itself. Pass nil to remove it.
func (s *Store) SetPaletteSource(src PaletteSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paletteSource = src
}

// Palette returns the colormap for ref.
func (s *Store) Palette(ref ColorMapRef) ([]framekit.Color, bool) {
	s.mu.RLock()
	pal, ok := s.palettes[ref]
	src := s.paletteSource
	s.mu.RUnlock()

	if ok {
		return pal, true
	}
	if src != nil {
		return src.Palette(ref)
	}
	return nil, false
}

// AddFont registers a glyph source as font page.
// Replacing a page drops its cached glyphs.
func (s *Store) AddFont(page uint32, src GlyphSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fonts[page] = src
	s.glyphs.DeleteFunc(func(k glyphKey) bool { return k.page == page })
}

// Glyph renders and caches the glyph for ref.
func (s *Store) Glyph(ref FontCharRef) (*Glyph, bool) {
	key := glyphKey{page: ref.Page, char: ref.Char}

	s.mu.RLock()
	src := s.fonts[ref.Page]
	s.mu.RUnlock()

	g, cached := s.glyphs.Get(key)

	if cached {
		return g, g != nil
	}
	if src == nil {
		return nil, false
	}

	g, ok := src.Glyph(ref.Char)
	if !ok {
		g = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fonts[ref.Page] == src {
		s.glyphs.Set(key, g)
	}
	return g, g != nil
}

// CacheStats is a snapshot of the rendered glyph cache counters.
type CacheStats = cache.Stats

// GlyphCacheStats reports the rendered glyph cache counters.
func (s *Store) GlyphCacheStats() CacheStats {
	return s.glyphs.Stats()
}
