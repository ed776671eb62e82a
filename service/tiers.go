package service

import (
	"context"
	"doghouse/catalog"
	"doghouse/dogapi"
	"doghouse/models"
	"fmt"
)

// Tier names accepted in DOG_TIERS.
const (
	TierStorage = "storage"
	TierAPI     = "api"
	TierLocal   = "local"
)

// Source tags reported to clients.
const (
	SourceDB    = "db"
	SourceAPI   = "api"
	SourceLocal = "local"
)

// Tier is one data source in the /dog fallback chain.
type Tier interface {
	Name() string
	Source() string
	// FetchOne returns one record. Errors wrapping ErrStorageUnavailable or
	// ErrUpstream let the chain move on; ErrEmpty ends it.
	FetchOne(ctx context.Context) (*models.Dog, error)
}

type storageTier struct {
	svc *DogService
}

func (t storageTier) Name() string   { return TierStorage }
func (t storageTier) Source() string { return SourceDB }

func (t storageTier) FetchOne(ctx context.Context) (*models.Dog, error) {
	conn, err := t.svc.ReadyConn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dog, err := conn.FetchRandom(ctx)
	if err != nil {
		return nil, wrapSentinel(err.Error(), ErrStorageUnavailable)
	}
	if dog == nil || dog.Normalized().Empty() {
		return nil, ErrEmpty
	}
	return dog, nil
}

type apiTier struct {
	client *dogapi.Client
}

func (t apiTier) Name() string   { return TierAPI }
func (t apiTier) Source() string { return SourceAPI }

func (t apiTier) FetchOne(ctx context.Context) (*models.Dog, error) {
	img, err := t.client.RandomImage(ctx)
	if err != nil {
		return nil, wrapSentinel(err.Error(), ErrUpstream)
	}
	return &models.Dog{Image: &img}, nil
}

type localTier struct {
	catalog *catalog.Catalog
}

func (t localTier) Name() string   { return TierLocal }
func (t localTier) Source() string { return SourceLocal }

func (t localTier) FetchOne(ctx context.Context) (*models.Dog, error) {
	dog, ok := t.catalog.Random()
	if !ok {
		return nil, wrapSentinel("local catalog is empty", ErrEmpty)
	}
	return &dog, nil
}

// buildTiers resolves tier names in order. An empty list means storage only.
func (s *DogService) buildTiers(names []string) ([]Tier, error) {
	if len(names) == 0 {
		names = []string{TierStorage}
	}

	seen := make(map[string]bool, len(names))
	tiers := make([]Tier, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("tier %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case TierStorage:
			tiers = append(tiers, storageTier{svc: s})
		case TierAPI:
			if s.api == nil {
				return nil, fmt.Errorf("tier %q requires a dog api client", name)
			}
			tiers = append(tiers, apiTier{client: s.api})
		case TierLocal:
			tiers = append(tiers, localTier{catalog: s.catalog})
		default:
			return nil, fmt.Errorf("unknown tier %q", name)
		}
	}
	return tiers, nil
}
