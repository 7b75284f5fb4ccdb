package artwork

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ArtworkRef points at a catalog artwork that can be requested at any size.
type ArtworkRef struct {
	URL string
}

func (r ArtworkRef) IsZero() bool {
	return r.URL == ""
}

// NamedResult is one hit of a catalog name search.
type NamedResult struct {
	Name    string
	Artwork ArtworkRef
}

// Catalog is the external catalog service. Lookup returns ErrNotFound when
// the id is unknown or has no artwork.
type Catalog interface {
	Lookup(ctx context.Context, class EntityClass, id string) (ArtworkRef, error)
	Search(ctx context.Context, class EntityClass, text string) ([]NamedResult, error)
	Fetch(ctx context.Context, ref ArtworkRef, width int) ([]byte, error)
}

// Resolver produces artwork for a key from outside the local tiers.
type Resolver interface {
	Resolve(ctx context.Context, key Key, displayName string) (*CachedImage, error)
}

// RemoteResolver resolves artwork through a Catalog: direct lookup first,
// then an exact-name search, then a download at the policy width.
type RemoteResolver struct {
	catalog Catalog
	policy  SizePolicy
	log     logrus.FieldLogger
}

func NewRemoteResolver(catalog Catalog, policy SizePolicy, log logrus.FieldLogger) *RemoteResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RemoteResolver{catalog: catalog, policy: policy, log: log}
}

// Resolve returns the artwork for key, ErrNotFound, or a *TransientError.
func (r *RemoteResolver) Resolve(ctx context.Context, key Key, displayName string) (*CachedImage, error) {
	ref, err := r.findRef(ctx, key, displayName)
	if err != nil {
		return nil, err
	}

	width := r.policy.TargetWidth()
	data, err := r.catalog.Fetch(ctx, ref, width)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &TransientError{Stage: StageDownload, Key: key, Err: err}
	}

	img, format, err := decodeArtwork(data)
	if err != nil {
		return nil, &TransientError{Stage: StageDecode, Key: key, Err: err}
	}
	img, encoded, err := conformImage(img, format, data, width)
	if err != nil {
		return nil, &TransientError{Stage: StageDecode, Key: key, Err: err}
	}

	return &CachedImage{Key: key, Image: img, Width: width, Data: encoded}, nil
}

func (r *RemoteResolver) findRef(ctx context.Context, key Key, displayName string) (ArtworkRef, error) {
	var transient error

	ref, err := r.catalog.Lookup(ctx, key.Class, key.ID)
	switch {
	case err == nil && !ref.IsZero():
		return ref, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		transient = &TransientError{Stage: StageLookup, Key: key, Err: err}
		r.log.WithFields(logrus.Fields{"key": key.String(), "stage": StageLookup}).Debugf("Direct lookup failed: %v", err)
	}

	if displayName != "" {
		results, err := r.catalog.Search(ctx, key.Class, displayName)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return ArtworkRef{}, &TransientError{Stage: StageSearch, Key: key, Err: err}
		}
		for _, res := range results {
			if res.Name == displayName && !res.Artwork.IsZero() {
				return res.Artwork, nil
			}
		}
	}

	if transient != nil {
		return ArtworkRef{}, transient
	}
	return ArtworkRef{}, ErrNotFound
}
