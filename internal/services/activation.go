package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/mlmodel"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/repos"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/storage"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

type ActivationStage string

const (
	StageLookup     ActivationStage = "lookup"
	StageDownload   ActivationStage = "download"
	StageLoad       ActivationStage = "load"
	StageRecheck    ActivationStage = "recheck"
	StageDeactivate ActivationStage = "deactivate"
	StageActivate   ActivationStage = "activate"
)

// ActivationError reports which step of the activation sequence failed, so
// callers can tell a clean failure from one that left the cache and the
// store disagreeing.
type ActivationError struct {
	Stage ActivationStage
	Err   error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activation failed at %s: %v", e.Stage, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// StoreState tells the caller what to assume about persisted state after
// the failure, and whether a retry is advised.
func (e *ActivationError) StoreState() string {
	switch e.Stage {
	case StageDeactivate:
		return "all links deactivated, cache rolled back; retry activation"
	case StageActivate:
		return "scenario left with zero active links; retry activation or reconcile"
	default:
		return "no persisted state changed"
	}
}

type ActivationService interface {
	// Activate makes modelID the sole active model for scenarioID, keeping
	// the in-memory cache and the store consistent across partial failures.
	Activate(ctx context.Context, scenarioID, modelID uuid.UUID) error
	// Reconcile repairs a scenario that has no active link by re-activating
	// the model on its most recently updated link. Returns the active model.
	Reconcile(ctx context.Context, scenarioID uuid.UUID) (uuid.UUID, error)
}

type activationService struct {
	db        *gorm.DB
	log       *logger.Logger
	modelRepo repos.ModelRepo
	linkRepo  repos.ScenarioModelRepo
	bucket    storage.BucketService
	cache     *mlmodel.Cache
	timeout   time.Duration

	downloads singleflight.Group

	mu            sync.Mutex
	scenarioLocks map[uuid.UUID]*sync.Mutex
}

func NewActivationService(
	db *gorm.DB,
	log *logger.Logger,
	modelRepo repos.ModelRepo,
	linkRepo repos.ScenarioModelRepo,
	bucket storage.BucketService,
	cache *mlmodel.Cache,
	timeout time.Duration,
) ActivationService {
	return &activationService{
		db:            db,
		log:           log.With("service", "ActivationService"),
		modelRepo:     modelRepo,
		linkRepo:      linkRepo,
		bucket:        bucket,
		cache:         cache,
		timeout:       timeout,
		scenarioLocks: map[uuid.UUID]*sync.Mutex{},
	}
}

// scenarioLock serializes activations per scenario. Without it two
// concurrent activations could both pass the deactivate step and then race
// the activate step, leaving two active links.
func (s *activationService) scenarioLock(scenarioID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.scenarioLocks[scenarioID]
	if !ok {
		lock = &sync.Mutex{}
		s.scenarioLocks[scenarioID] = lock
	}
	return lock
}

func (s *activationService) Activate(ctx context.Context, scenarioID, modelID uuid.UUID) error {
	lock := s.scenarioLock(scenarioID)
	lock.Lock()
	defer lock.Unlock()

	log := s.log.With("scenario_id", scenarioID, "model_id", modelID)

	// Step 1: resolve the stored filename.
	model, err := s.modelRepo.GetByID(ctx, nil, modelID)
	if err != nil {
		log.Warn("Model lookup failed", "error", err)
		return &ActivationError{Stage: StageLookup, Err: err}
	}

	// Step 2: fetch the artifact. Concurrent activations of the same model
	// share one download.
	key := fmt.Sprintf("%s/%s", model.ModelID, model.ModelFilename)
	raw, err := s.downloadArtifact(ctx, key)
	if err != nil {
		log.Error("Artifact download failed", "key", key, "error", err)
		return &ActivationError{Stage: StageDownload, Err: err}
	}

	// Step 3: load into the cache. On failure the cache has already
	// restored its prior state, nothing to clean up here.
	if err := s.cache.LoadFromBytes(raw); err != nil {
		log.Error("Artifact failed to load", "key", key, "error", err)
		return &ActivationError{Stage: StageLoad, Err: err}
	}

	// Step 4: defensive re-check before mutating persisted state.
	if _, err := s.modelRepo.GetByID(ctx, nil, modelID); err != nil {
		log.Warn("Model disappeared before flag flip", "error", err)
		return &ActivationError{Stage: StageRecheck, Err: err}
	}

	// Step 5: deactivate every link for the scenario. If this write fails
	// the cache now holds a model the store never activated, so roll the
	// cache back before surfacing the failure.
	if err := s.withStoreTimeout(ctx, func(stepCtx context.Context) error {
		return s.linkRepo.DeactivateAllForScenario(stepCtx, nil, scenarioID)
	}); err != nil {
		log.Error("Deactivating scenario links failed, rolling back cache", "error", err)
		if rbErr := s.cache.Rollback(); rbErr != nil {
			log.Error("Cache rollback after deactivate failure also failed", "error", rbErr)
		}
		return &ActivationError{Stage: StageDeactivate, Err: fmt.Errorf("%w: %v", apperr.ErrPersistence, err)}
	}

	// Step 6: activate the target link. A failure here leaves the scenario
	// with zero active links while the cache keeps the new model; the cache
	// is intentionally not rolled back, callers are told to retry or
	// reconcile. Flipping both flags in one conditional store operation
	// would close this window, pending product confirmation.
	if err := s.withStoreTimeout(ctx, func(stepCtx context.Context) error {
		return s.linkRepo.ActivateLink(stepCtx, nil, scenarioID, modelID)
	}); err != nil {
		log.Error("Activating target link failed, scenario has zero active links", "error", err)
		return &ActivationError{Stage: StageActivate, Err: fmt.Errorf("%w: %v", apperr.ErrPersistence, err)}
	}

	// Lifecycle bookkeeping outside the consistency-critical sequence.
	if err := s.modelRepo.SetStatus(ctx, nil, modelID, types.ModelStatusDeployed); err != nil {
		log.Warn("Could not mark model deployed", "error", err)
	}

	log.Info("Model activated")
	return nil
}

func (s *activationService) downloadArtifact(ctx context.Context, key string) ([]byte, error) {
	raw, err, _ := s.downloads.Do(key, func() (interface{}, error) {
		return s.bucket.DownloadFile(ctx, storage.BucketCategoryModels, key)
	})
	if err != nil {
		return nil, err
	}
	return raw.([]byte), nil
}

// withStoreTimeout bounds a persisted write; a timeout is indistinguishable
// from any other store failure for rollback purposes.
func (s *activationService) withStoreTimeout(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(stepCtx)
}

func (s *activationService) Reconcile(ctx context.Context, scenarioID uuid.UUID) (uuid.UUID, error) {
	active, err := s.linkRepo.GetActiveByScenarioID(ctx, nil, scenarioID)
	if err == nil {
		return active.ModelID, nil
	}

	latest, err := s.linkRepo.LatestForScenario(ctx, nil, scenarioID)
	if err != nil {
		return uuid.Nil, err
	}

	s.log.Warn("Scenario has zero active links, re-activating latest",
		"scenario_id", scenarioID, "model_id", latest.ModelID)
	if err := s.Activate(ctx, scenarioID, latest.ModelID); err != nil {
		return uuid.Nil, err
	}
	return latest.ModelID, nil
}
