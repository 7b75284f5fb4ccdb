package artwork

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func squareImage(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func squareJPEG(t testing.TB, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, squareImage(size), nil))
	return buf.Bytes()
}

func squarePNG(t testing.TB, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, squareImage(size)))
	return buf.Bytes()
}

func widthOf(t testing.TB, data []byte) int {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeCatalog serves artwork refs from maps and renders JPEGs of the
// requested size.
type fakeCatalog struct {
	t testing.TB

	mu          sync.Mutex
	refs        map[Key]ArtworkRef
	results     map[string][]NamedResult
	lookupErr   error
	searchErr   error
	fetchErr    error
	payload     func(width int) []byte
	fetchWidths []int
	fetchCtxErr error

	// gate, when set, holds Fetch until closed. fetchStarted is signalled
	// (non-blocking) each time Fetch is entered.
	gate         chan struct{}
	fetchStarted chan struct{}

	lookups  atomic.Int32
	searches atomic.Int32
	fetches  atomic.Int32
}

func newFakeCatalog(t testing.TB) *fakeCatalog {
	return &fakeCatalog{
		t:            t,
		refs:         make(map[Key]ArtworkRef),
		results:      make(map[string][]NamedResult),
		fetchStarted: make(chan struct{}, 64),
	}
}

func (f *fakeCatalog) addRef(key Key) ArtworkRef {
	ref := ArtworkRef{URL: "https://art.example/" + key.String() + "/100x100bb.jpg"}
	f.mu.Lock()
	f.refs[key] = ref
	f.mu.Unlock()
	return ref
}

func (f *fakeCatalog) setFetchErr(err error) {
	f.mu.Lock()
	f.fetchErr = err
	f.mu.Unlock()
}

func (f *fakeCatalog) Lookup(ctx context.Context, class EntityClass, id string) (ArtworkRef, error) {
	f.lookups.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return ArtworkRef{}, f.lookupErr
	}
	ref, ok := f.refs[Key{Class: class, ID: id}]
	if !ok {
		return ArtworkRef{}, ErrNotFound
	}
	return ref, nil
}

func (f *fakeCatalog) Search(ctx context.Context, class EntityClass, text string) ([]NamedResult, error) {
	f.searches.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[class.String()+":"+text], nil
}

func (f *fakeCatalog) Fetch(ctx context.Context, ref ArtworkRef, width int) ([]byte, error) {
	f.fetches.Add(1)
	select {
	case f.fetchStarted <- struct{}{}:
	default:
	}

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchWidths = append(f.fetchWidths, width)
	f.fetchCtxErr = ctx.Err()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.payload != nil {
		return f.payload(width), nil
	}
	return squareJPEG(f.t, width), nil
}

func (f *fakeCatalog) widths() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.fetchWidths...)
}

type testCache struct {
	*ImageCache
	catalog *fakeCatalog
	policy  *StaticPolicy
	memory  *MemoryStore
	disk    *DiskStore
}

func newTestCache(t testing.TB, cat *fakeCatalog, policy *StaticPolicy, disk *DiskStore) *testCache {
	t.Helper()
	if disk == nil {
		disk = NewDiskStore(memfs.New())
	}
	memory, err := NewMemoryStore(16)
	require.NoError(t, err)
	log := quietLogger()
	c := New(Options{
		Memory: memory,
		Disk:   disk,
		Remote: NewRemoteResolver(cat, policy, log),
		Policy: policy,
		Logger: log,
	})
	return &testCache{ImageCache: c, catalog: cat, policy: policy, memory: memory, disk: disk}
}
