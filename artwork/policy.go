package artwork

import (
	"fmt"
	"image"
	"strings"
	"sync/atomic"
)

// Resolution is the user-facing artwork size setting.
type Resolution string

const (
	Small  Resolution = "small"
	Normal Resolution = "normal"
	Big    Resolution = "big"
)

// Width returns the square edge length in pixels for r. Unknown values
// fall back to Normal.
func (r Resolution) Width() int {
	switch r {
	case Small:
		return 256
	case Big:
		return 768
	default:
		return 512
	}
}

func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case Small, Normal, Big:
		return r, nil
	default:
		return "", fmt.Errorf("invalid artwork resolution: %s", s)
	}
}

// SizePolicy reports the currently configured target width. Implementations
// must return the live value on every call; callers never cache it.
type SizePolicy interface {
	TargetWidth() int
}

// Conforms reports whether an artifact of the given width matches the
// policy right now. Anything other than an exact match is stale.
func Conforms(p SizePolicy, width int) bool {
	return width == p.TargetWidth()
}

// conformsConfig reports whether a stored artifact is a square of the
// target width.
func conformsConfig(p SizePolicy, cfg image.Config) bool {
	return cfg.Width == cfg.Height && Conforms(p, cfg.Width)
}

// StaticPolicy is a SizePolicy whose value only changes through Set.
type StaticPolicy struct {
	width atomic.Int64
}

func NewStaticPolicy(r Resolution) *StaticPolicy {
	p := &StaticPolicy{}
	p.Set(r)
	return p
}

func (p *StaticPolicy) Set(r Resolution) {
	p.width.Store(int64(r.Width()))
}

func (p *StaticPolicy) TargetWidth() int {
	return int(p.width.Load())
}
