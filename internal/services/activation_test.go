package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/mlmodel"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

type stubScorer struct {
	name string
	p1   float64
	err  error
	last mlmodel.FeatureRow
	mu   sync.Mutex
}

func (s *stubScorer) PredictProba(row mlmodel.FeatureRow) ([2]float64, error) {
	s.mu.Lock()
	s.last = row
	s.mu.Unlock()
	if s.err != nil {
		return [2]float64{}, s.err
	}
	return [2]float64{1 - s.p1, s.p1}, nil
}

// testDecode treats artifact bytes as a scorer name; "bad" fails to decode.
func testDecode(raw []byte) (mlmodel.Scorer, error) {
	if string(raw) == "bad" {
		return nil, fmt.Errorf("not a model")
	}
	return &stubScorer{name: string(raw), p1: 0.7}, nil
}

func cachedName(t *testing.T, cache *mlmodel.Cache) string {
	t.Helper()
	scorer, ok := cache.Current()
	if !ok {
		t.Fatalf("expected a cached model")
	}
	return scorer.(*stubScorer).name
}

type activationFixture struct {
	scenarioID uuid.UUID
	models     *fakeModelRepo
	links      *fakeLinkRepo
	bucket     *fakeBucket
	cache      *mlmodel.Cache
	svc        ActivationService
}

func newActivationFixture(t *testing.T) *activationFixture {
	t.Helper()
	log := logger.NewNop()
	f := &activationFixture{
		scenarioID: uuid.New(),
		models:     newFakeModelRepo(),
		links:      &fakeLinkRepo{},
		bucket:     newFakeBucket(),
		cache:      mlmodel.NewCache(log, testDecode),
	}
	f.svc = NewActivationService(nil, log, f.models, f.links, f.bucket, f.cache, time.Second)
	return f
}

// addModel registers a model with an inactive link and a stored artifact.
func (f *activationFixture) addModel(t *testing.T, name string, artifact []byte) uuid.UUID {
	t.Helper()
	modelID := uuid.New()
	filename := name + ".json"
	f.models.models[modelID] = &types.MLModel{
		ModelID:       modelID,
		ModelName:     name,
		ModelFilename: filename,
		Status:        types.ModelStatusPending,
	}
	f.links.rows = append(f.links.rows, &types.ScenarioModel{
		ID:         uuid.New(),
		ScenarioID: f.scenarioID,
		ModelID:    modelID,
	})
	f.bucket.put("models", fmt.Sprintf("%s/%s", modelID, filename), artifact)
	return modelID
}

func TestActivate_Success(t *testing.T) {
	f := newActivationFixture(t)
	modelID := f.addModel(t, "modelA", []byte("modelA"))

	if err := f.svc.Activate(context.Background(), f.scenarioID, modelID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if n := f.links.activeCount(f.scenarioID); n != 1 {
		t.Fatalf("expected exactly one active link, got %d", n)
	}
	active, err := f.links.GetActiveByScenarioID(context.Background(), nil, f.scenarioID)
	if err != nil || active.ModelID != modelID {
		t.Fatalf("expected the target model active, got %v (err %v)", active, err)
	}
	if got := cachedName(t, f.cache); got != "modelA" {
		t.Fatalf("expected modelA cached, got %q", got)
	}
	if f.models.models[modelID].Status != types.ModelStatusDeployed {
		t.Fatalf("expected model marked deployed, got %s", f.models.models[modelID].Status)
	}
}

func TestActivate_SwitchDemotesPriorActive(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))
	modelB := f.addModel(t, "modelB", []byte("modelB"))

	ctx := context.Background()
	if err := f.svc.Activate(ctx, f.scenarioID, modelA); err != nil {
		t.Fatalf("activate A: %v", err)
	}
	if err := f.svc.Activate(ctx, f.scenarioID, modelB); err != nil {
		t.Fatalf("activate B: %v", err)
	}

	if n := f.links.activeCount(f.scenarioID); n != 1 {
		t.Fatalf("expected exactly one active link after switch, got %d", n)
	}
	active, _ := f.links.GetActiveByScenarioID(ctx, nil, f.scenarioID)
	if active.ModelID != modelB {
		t.Fatalf("expected modelB active after switch")
	}
}

func TestActivate_IdempotentRerun(t *testing.T) {
	f := newActivationFixture(t)
	modelID := f.addModel(t, "modelA", []byte("modelA"))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := f.svc.Activate(ctx, f.scenarioID, modelID); err != nil {
			t.Fatalf("activate run %d: %v", i, err)
		}
	}
	if n := f.links.activeCount(f.scenarioID); n != 1 {
		t.Fatalf("expected exactly one active link after rerun, got %d", n)
	}
	if got := cachedName(t, f.cache); got != "modelA" {
		t.Fatalf("expected modelA cached after rerun, got %q", got)
	}
}

func TestActivate_MissingModelFailsAtLookup(t *testing.T) {
	f := newActivationFixture(t)

	err := f.svc.Activate(context.Background(), f.scenarioID, uuid.New())
	var ae *ActivationError
	if !errors.As(err, &ae) || ae.Stage != StageLookup {
		t.Fatalf("expected lookup-stage failure, got %v", err)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok := f.cache.Current(); ok {
		t.Fatalf("cache must stay empty when lookup fails")
	}
}

func TestActivate_DownloadFailureLeavesEverythingUntouched(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))
	modelB := f.addModel(t, "modelB", []byte("modelB"))

	ctx := context.Background()
	if err := f.svc.Activate(ctx, f.scenarioID, modelA); err != nil {
		t.Fatalf("activate A: %v", err)
	}

	f.bucket.failDownload = fmt.Errorf("%w: transport down", apperr.ErrStorageUnavailable)
	err := f.svc.Activate(ctx, f.scenarioID, modelB)
	var ae *ActivationError
	if !errors.As(err, &ae) || ae.Stage != StageDownload {
		t.Fatalf("expected download-stage failure, got %v", err)
	}
	if !errors.Is(err, apperr.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if got := cachedName(t, f.cache); got != "modelA" {
		t.Fatalf("expected modelA still cached, got %q", got)
	}
	active, _ := f.links.GetActiveByScenarioID(ctx, nil, f.scenarioID)
	if active == nil || active.ModelID != modelA {
		t.Fatalf("expected modelA still active")
	}
}

func TestActivate_BadArtifactSelfHealsCache(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))
	broken := f.addModel(t, "broken", []byte("bad"))

	ctx := context.Background()
	if err := f.svc.Activate(ctx, f.scenarioID, modelA); err != nil {
		t.Fatalf("activate A: %v", err)
	}

	err := f.svc.Activate(ctx, f.scenarioID, broken)
	var ae *ActivationError
	if !errors.As(err, &ae) || ae.Stage != StageLoad {
		t.Fatalf("expected load-stage failure, got %v", err)
	}
	if !errors.Is(err, apperr.ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
	if got := cachedName(t, f.cache); got != "modelA" {
		t.Fatalf("expected modelA still cached after failed load, got %q", got)
	}
	if n := f.links.activeCount(f.scenarioID); n != 1 {
		t.Fatalf("store must be untouched by a failed load, active=%d", n)
	}
}

func TestActivate_RecheckFailureLeavesStoreUntouched(t *testing.T) {
	f := newActivationFixture(t)
	modelID := f.addModel(t, "modelA", []byte("modelA"))

	// First GetByID call resolves the filename, the second is the defensive
	// re-check before flag flips. Fail only the second.
	f.models.failFrom = 2
	err := f.svc.Activate(context.Background(), f.scenarioID, modelID)
	var ae *ActivationError
	if !errors.As(err, &ae) || ae.Stage != StageRecheck {
		t.Fatalf("expected recheck-stage failure, got %v", err)
	}
	if n := f.links.activeCount(f.scenarioID); n != 0 {
		t.Fatalf("no link flag may change when the re-check fails, active=%d", n)
	}
}

func TestActivate_DeactivateFailureRollsBackCache(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))
	modelB := f.addModel(t, "modelB", []byte("modelB"))

	ctx := context.Background()
	if err := f.svc.Activate(ctx, f.scenarioID, modelA); err != nil {
		t.Fatalf("activate A: %v", err)
	}

	f.links.failDeactivate = fmt.Errorf("store write refused")
	err := f.svc.Activate(ctx, f.scenarioID, modelB)
	var ae *ActivationError
	if !errors.As(err, &ae) || ae.Stage != StageDeactivate {
		t.Fatalf("expected deactivate-stage failure, got %v", err)
	}
	if !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	// The cache was rolled back to the model the store still has active.
	if got := cachedName(t, f.cache); got != "modelA" {
		t.Fatalf("expected cache rolled back to modelA, got %q", got)
	}
	active, _ := f.links.GetActiveByScenarioID(ctx, nil, f.scenarioID)
	if active == nil || active.ModelID != modelA {
		t.Fatalf("expected modelA still active in store")
	}
}

func TestActivate_ActivateFailureLeavesZeroActiveLinks(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))
	modelB := f.addModel(t, "modelB", []byte("modelB"))

	ctx := context.Background()
	if err := f.svc.Activate(ctx, f.scenarioID, modelA); err != nil {
		t.Fatalf("activate A: %v", err)
	}

	f.links.failActivate = fmt.Errorf("store write refused")
	err := f.svc.Activate(ctx, f.scenarioID, modelB)
	var ae *ActivationError
	if !errors.As(err, &ae) || ae.Stage != StageActivate {
		t.Fatalf("expected activate-stage failure, got %v", err)
	}
	// Known inconsistency window: every link deactivated, cache keeps the
	// new model, no automatic remediation.
	if n := f.links.activeCount(f.scenarioID); n != 0 {
		t.Fatalf("expected zero active links, got %d", n)
	}
	if got := cachedName(t, f.cache); got != "modelB" {
		t.Fatalf("expected cache to keep modelB, got %q", got)
	}
}

func TestActivate_ConcurrentActivationsKeepInvariant(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))
	modelB := f.addModel(t, "modelB", []byte("modelB"))

	var wg sync.WaitGroup
	for _, id := range []uuid.UUID{modelA, modelB} {
		wg.Add(1)
		go func(modelID uuid.UUID) {
			defer wg.Done()
			if err := f.svc.Activate(context.Background(), f.scenarioID, modelID); err != nil {
				t.Errorf("activate %s: %v", modelID, err)
			}
		}(id)
	}
	wg.Wait()

	if n := f.links.activeCount(f.scenarioID); n != 1 {
		t.Fatalf("expected exactly one active link after concurrent activations, got %d", n)
	}
}

func TestReconcile_RepairsZeroActiveScenario(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))
	modelB := f.addModel(t, "modelB", []byte("modelB"))

	ctx := context.Background()
	if err := f.svc.Activate(ctx, f.scenarioID, modelA); err != nil {
		t.Fatalf("activate A: %v", err)
	}

	// Reproduce the step-6 window, then clear the injected failure.
	f.links.failActivate = fmt.Errorf("store write refused")
	_ = f.svc.Activate(ctx, f.scenarioID, modelB)
	f.links.failActivate = nil
	if n := f.links.activeCount(f.scenarioID); n != 0 {
		t.Fatalf("precondition: expected zero active links, got %d", n)
	}

	repaired, err := f.svc.Reconcile(ctx, f.scenarioID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if repaired == uuid.Nil {
		t.Fatalf("expected a repaired model id")
	}
	if n := f.links.activeCount(f.scenarioID); n != 1 {
		t.Fatalf("expected exactly one active link after reconcile, got %d", n)
	}
}

func TestReconcile_NoopWhenActiveLinkExists(t *testing.T) {
	f := newActivationFixture(t)
	modelA := f.addModel(t, "modelA", []byte("modelA"))

	ctx := context.Background()
	if err := f.svc.Activate(ctx, f.scenarioID, modelA); err != nil {
		t.Fatalf("activate A: %v", err)
	}

	repaired, err := f.svc.Reconcile(ctx, f.scenarioID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if repaired != modelA {
		t.Fatalf("expected existing active model returned, got %s", repaired)
	}
}
