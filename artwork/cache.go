package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const DefaultResolveTimeout = 45 * time.Second

// Tier says where a resolved image came from.
type Tier int

const (
	TierNone Tier = iota
	TierMemory
	TierDisk
	TierRemote
)

func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierDisk:
		return "disk"
	case TierRemote:
		return "remote"
	default:
		return "none"
	}
}

// Result is the outcome of one Lookup.
type Result struct {
	Image *CachedImage
	Tier  Tier
}

// Stats counts pipeline outcomes since the cache was created.
type Stats struct {
	MemoryHits     int64
	DiskHits       int64
	RemoteFetches  int64
	NotFound       int64
	Failures       int64
	StaleEvictions int64
	// Coalesced counts callers that joined a resolution another caller started.
	Coalesced int64
}

type Options struct {
	Memory *MemoryStore
	Disk   *DiskStore
	Remote Resolver
	// Policy defaults to a static Normal policy.
	Policy SizePolicy
	Logger logrus.FieldLogger
	// Timeout bounds one shared disk+remote resolution.
	Timeout time.Duration
}

// ImageCache resolves artwork through memory, disk and the catalog, in that
// order. Concurrent requests for the same key share a single resolution.
type ImageCache struct {
	memory  *MemoryStore
	disk    *DiskStore
	remote  Resolver
	policy  SizePolicy
	log     logrus.FieldLogger
	timeout time.Duration

	group singleflight.Group

	memoryHits     atomic.Int64
	diskHits       atomic.Int64
	remoteFetches  atomic.Int64
	notFound       atomic.Int64
	failures       atomic.Int64
	staleEvictions atomic.Int64
	coalesced      atomic.Int64
}

func New(opts Options) *ImageCache {
	c := &ImageCache{
		memory:  opts.Memory,
		disk:    opts.Disk,
		remote:  opts.Remote,
		policy:  opts.Policy,
		log:     opts.Logger,
		timeout: opts.Timeout,
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.timeout <= 0 {
		c.timeout = DefaultResolveTimeout
	}
	if c.policy == nil {
		c.policy = NewStaticPolicy(Normal)
	}
	if c.memory == nil {
		c.memory, _ = NewMemoryStore(DefaultMemoryCapacity)
	}
	return c
}

// Resolve returns the artwork for the entity, or nil when none is available.
// It never fails; problems are logged.
func (c *ImageCache) Resolve(ctx context.Context, class EntityClass, identity, displayName string) *CachedImage {
	return c.Lookup(ctx, class, identity, displayName).Image
}

// Lookup is Resolve that also reports which tier answered.
func (c *ImageCache) Lookup(ctx context.Context, class EntityClass, identity, displayName string) Result {
	key := KeyFor(class, identity)
	if key.IsZero() {
		return Result{}
	}

	if img, ok := c.fromMemory(key); ok {
		return Result{Image: img, Tier: TierMemory}
	}

	if err := ctx.Err(); err != nil {
		c.log.WithField("key", key.String()).Debugf("Not resolving artwork: %v", err)
		return Result{}
	}

	// leader is only written by the flight this caller started, before its
	// result is delivered on ch.
	leader := false
	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		leader = true
		// Detached from the first caller so its cancellation does not fail
		// everyone else waiting on this key.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.resolveShared(sctx, key, displayName), nil
	})

	select {
	case <-ctx.Done():
		c.log.WithField("key", key.String()).Debugf("Stopped waiting for artwork: %v", ctx.Err())
		return Result{}
	case res := <-ch:
		if res.Shared && !leader {
			c.coalesced.Add(1)
		}
		return res.Val.(Result)
	}
}

func (c *ImageCache) fromMemory(key Key) (*CachedImage, bool) {
	img, ok := c.memory.Get(key)
	if !ok {
		return nil, false
	}
	if !Conforms(c.policy, img.Width) {
		c.log.WithFields(logrus.Fields{"key": key.String(), "tier": TierMemory.String()}).
			Debugf("Cached width %d does not match target %d", img.Width, c.policy.TargetWidth())
		return nil, false
	}
	c.memoryHits.Add(1)
	return img, true
}

func (c *ImageCache) resolveShared(ctx context.Context, key Key, displayName string) Result {
	// A flight that finished just before this one started may have filled memory.
	if img, ok := c.fromMemory(key); ok {
		return Result{Image: img, Tier: TierMemory}
	}

	if img, ok := c.fromDisk(key); ok {
		c.memory.Put(key, img)
		return Result{Image: img, Tier: TierDisk}
	}

	if c.remote == nil {
		return Result{}
	}

	entry := c.log.WithField("key", key.String())
	c.remoteFetches.Add(1)
	img, err := c.remote.Resolve(ctx, key, displayName)
	if err != nil {
		var te *TransientError
		switch {
		case errors.Is(err, ErrNotFound):
			c.notFound.Add(1)
			entry.Debug("No artwork in catalog")
		case errors.As(err, &te):
			c.failures.Add(1)
			entry.WithField("stage", te.Stage).Warnf("Failed to resolve artwork: %v", te.Err)
		default:
			c.failures.Add(1)
			entry.Warnf("Failed to resolve artwork: %v", err)
		}
		return Result{}
	}

	if c.disk != nil {
		if err := c.disk.Put(key, img.Data); err != nil {
			entry.WithField("stage", StageStore).Warnf("Failed to persist artwork: %v", err)
		}
	}
	c.memory.Put(key, img)
	entry.Debugf("Resolved artwork remotely at %dpx", img.Width)
	return Result{Image: img, Tier: TierRemote}
}

// fromDisk loads and validates the stored artifact. Stale or unreadable
// artifacts are deleted and reported as a miss.
func (c *ImageCache) fromDisk(key Key) (*CachedImage, bool) {
	if c.disk == nil {
		return nil, false
	}
	data, ok := c.disk.Get(key)
	if !ok {
		return nil, false
	}

	entry := c.log.WithFields(logrus.Fields{"key": key.String(), "tier": TierDisk.String()})

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil && !conformsConfig(c.policy, cfg) {
		c.staleEvictions.Add(1)
		entry.Debugf("Evicting stored artwork: %dx%d, target %d", cfg.Width, cfg.Height, c.policy.TargetWidth())
		c.deleteArtifact(entry, key)
		return nil, false
	}

	var img image.Image
	if err == nil {
		img, _, err = decodeArtwork(data)
	}
	if err != nil {
		entry.Warnf("Discarding unreadable artwork: %v", err)
		c.deleteArtifact(entry, key)
		return nil, false
	}

	c.diskHits.Add(1)
	return &CachedImage{Key: key, Image: img, Width: cfg.Width, Data: data}, true
}

func (c *ImageCache) deleteArtifact(entry logrus.FieldLogger, key Key) {
	if err := c.disk.Delete(key); err != nil {
		entry.Warnf("Failed to delete artwork: %v", err)
	}
}

// Stats returns a snapshot of the pipeline counters.
func (c *ImageCache) Stats() Stats {
	return Stats{
		MemoryHits:     c.memoryHits.Load(),
		DiskHits:       c.diskHits.Load(),
		RemoteFetches:  c.remoteFetches.Load(),
		NotFound:       c.notFound.Load(),
		Failures:       c.failures.Load(),
		StaleEvictions: c.staleEvictions.Load(),
		Coalesced:      c.coalesced.Load(),
	}
}

// Policy returns the size policy the cache checks against.
func (c *ImageCache) Policy() SizePolicy {
	return c.policy
}
