package service

import (
	"context"
	"doghouse/catalog"
	"doghouse/database"
	"doghouse/dogapi"
	"doghouse/metrics"
	"doghouse/models"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// DogResult is a record picked for /dog together with the tier that served it.
type DogResult struct {
	Dog    models.Dog
	Source string
}

// Listing is the /data payload.
type Listing struct {
	Total  int              `json:"total"`
	Items  []models.DogRead `json:"items"`
	Source string           `json:"source"`
}

// DogOptions configures a DogService.
type DogOptions struct {
	AutoSeed bool
	Tiers    []string
}

// DogService coordinates storage, the external API and the local catalog.
type DogService struct {
	repo     *database.Repository
	catalog  *catalog.Catalog
	api      *dogapi.Client
	autoSeed bool
	tiers    []Tier

	// seedChecked flips once per service lifetime after the first seed attempt.
	seedChecked atomic.Bool
}

// NewDogService constructs the coordinator. api may be nil when the chain has no api tier.
func NewDogService(repo *database.Repository, cat *catalog.Catalog, api *dogapi.Client, opts DogOptions) (*DogService, error) {
	s := &DogService{
		repo:     repo,
		catalog:  cat,
		api:      api,
		autoSeed: opts.AutoSeed,
	}

	tiers, err := s.buildTiers(opts.Tiers)
	if err != nil {
		return nil, fmt.Errorf("invalid tier chain: %w", err)
	}
	s.tiers = tiers
	return s, nil
}

// TierNames returns the active chain in order.
func (s *DogService) TierNames() []string {
	names := make([]string, len(s.tiers))
	for i, t := range s.tiers {
		names[i] = t.Name()
	}
	return names
}

// ResetSeedCheck re-arms the one-time seed.
func (s *DogService) ResetSeedCheck() {
	s.seedChecked.Store(false)
}

// ReadyConn opens a connection, makes sure the table exists and runs the
// one-time seed. Any failure is reported as ErrStorageUnavailable and leaves
// no connection open.
func (s *DogService) ReadyConn(ctx context.Context) (*database.Conn, error) {
	conn, err := s.repo.Connect(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotConfigured) {
			log.Debug().Msg("Storage not configured")
		} else {
			log.Warn().Err(err).Msg("Storage connect failed")
		}
		return nil, wrapSentinel(err.Error(), ErrStorageUnavailable)
	}

	if err := conn.EnsureSchema(ctx); err != nil {
		_ = conn.Close()
		log.Error().Err(err).Msg("Schema check failed")
		return nil, wrapSentinel(err.Error(), ErrStorageUnavailable)
	}

	if s.autoSeed && !s.seedChecked.Load() {
		s.seed(ctx, conn)
		s.seedChecked.Store(true)
	}
	return conn, nil
}

func (s *DogService) seed(ctx context.Context, conn *database.Conn) {
	seeded, err := conn.SeedIfEmpty(ctx, s.catalog.Items())
	switch {
	case err != nil:
		metrics.RecordSeed("failed")
		log.Warn().Err(err).Msg("Seeding from local catalog failed")
	case seeded:
		metrics.RecordSeed("seeded")
		log.Info().Int("count", len(s.catalog.Items())).Msg("Seeded empty dogs table from local catalog")
	default:
		metrics.RecordSeed("skipped")
		log.Debug().Msg("Dogs table already populated, seed skipped")
	}
}

// ResolveDog walks the tier chain. The first tier that returns a record wins;
// an unavailable tier hands over to the next one; an empty tier ends the
// chain with ErrEmpty. When every tier is unavailable the last error is returned.
func (s *DogService) ResolveDog(ctx context.Context) (DogResult, error) {
	var lastErr error
	for _, tier := range s.tiers {
		dog, err := tier.FetchOne(ctx)
		if err == nil {
			metrics.RecordTierOutcome(tier.Name(), "success")
			return DogResult{Dog: *dog, Source: tier.Source()}, nil
		}

		lastErr = err
		if !fallsThrough(err) {
			metrics.RecordTierOutcome(tier.Name(), "empty")
			return DogResult{}, err
		}
		metrics.RecordTierOutcome(tier.Name(), "unavailable")
		log.Debug().Err(err).Str("tier", tier.Name()).Msg("Tier unavailable, trying next")
	}
	return DogResult{}, lastErr
}

// ListDogs returns stored rows, or the enumerated local catalog when storage
// cannot be used. It never fails.
func (s *DogService) ListDogs(ctx context.Context) Listing {
	if conn, err := s.ReadyConn(ctx); err == nil {
		dogs, listErr := conn.ListItems(ctx)
		_ = conn.Close()
		if listErr == nil {
			items := make([]models.DogRead, len(dogs))
			for i, d := range dogs {
				items[i] = d.ToRead()
			}
			metrics.RecordListing(SourceDB)
			return Listing{Total: len(items), Items: items, Source: SourceDB}
		}
		log.Warn().Err(listErr).Msg("Listing from storage failed, using local catalog")
	}

	items := s.catalog.Enumerated()
	metrics.RecordListing(SourceLocal)
	return Listing{Total: len(items), Items: items, Source: SourceLocal}
}

// SaveDog validates and stores a submitted record. Validation happens before any I/O.
func (s *DogService) SaveDog(ctx context.Context, req models.DogCreate) (*models.Dog, error) {
	req.Normalize()
	if req.Empty() {
		return nil, ErrInvalidDog
	}

	conn, err := s.ReadyConn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dog, err := conn.Insert(ctx, req.Name, req.Image)
	if err != nil {
		log.Error().Err(err).Msg("Saving dog failed")
		return nil, wrapSentinel(err.Error(), ErrWrite)
	}

	log.Info().Uint("id", dog.ID).Str("name", models.Deref(dog.Name)).Msg("Dog saved")
	return dog, nil
}
