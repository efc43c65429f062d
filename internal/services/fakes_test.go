package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/storage"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

// In-memory fakes for the repo and bucket collaborators. Error-injection
// fields let tests fail a specific step of a sequence.

type fakeScenarioRepo struct {
	mu        sync.Mutex
	scenarios map[uuid.UUID]*types.Scenario
	getAllErr error
}

func newFakeScenarioRepo(scenarios ...*types.Scenario) *fakeScenarioRepo {
	r := &fakeScenarioRepo{scenarios: map[uuid.UUID]*types.Scenario{}}
	for _, s := range scenarios {
		r.scenarios[s.ScenarioID] = s
	}
	return r
}

func (r *fakeScenarioRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Scenario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getAllErr != nil {
		return nil, r.getAllErr
	}
	var out []*types.Scenario
	for _, s := range r.scenarios {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeScenarioRepo) GetByID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.Scenario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scenarios[scenarioID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s, nil
}

type fakeModelRepo struct {
	mu       sync.Mutex
	models   map[uuid.UUID]*types.MLModel
	creates  int
	getErr   error
	recheck  int // counts GetByID calls so tests can fail the re-check only
	failFrom int // fail GetByID from this call count onward (0 = never)
}

func newFakeModelRepo(models ...*types.MLModel) *fakeModelRepo {
	r := &fakeModelRepo{models: map[uuid.UUID]*types.MLModel{}}
	for _, m := range models {
		r.models[m.ModelID] = m
	}
	return r
}

func (r *fakeModelRepo) Create(ctx context.Context, tx *gorm.DB, model *types.MLModel) (*types.MLModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	r.models[model.ModelID] = model
	return model, nil
}

func (r *fakeModelRepo) GetByID(ctx context.Context, tx *gorm.DB, modelID uuid.UUID) (*types.MLModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recheck++
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.failFrom > 0 && r.recheck >= r.failFrom {
		return nil, apperr.ErrNotFound
	}
	m, ok := r.models[modelID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

func (r *fakeModelRepo) SetStatus(ctx context.Context, tx *gorm.DB, modelID uuid.UUID, status types.ModelStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[modelID]
	if !ok {
		return apperr.ErrNotFound
	}
	m.Status = status
	return nil
}

type fakeLinkRepo struct {
	mu             sync.Mutex
	rows           []*types.ScenarioModel
	failDeactivate error
	failActivate   error
}

func (r *fakeLinkRepo) Create(ctx context.Context, tx *gorm.DB, link *types.ScenarioModel) (*types.ScenarioModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, link)
	return link, nil
}

func (r *fakeLinkRepo) GetByScenarioID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) ([]*types.ScenarioModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.ScenarioModel
	for _, row := range r.rows {
		if row.ScenarioID == scenarioID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) GetActiveByScenarioID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.ScenarioModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ScenarioID == scenarioID && row.IsActive {
			return row, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeLinkRepo) DeactivateAllForScenario(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDeactivate != nil {
		return r.failDeactivate
	}
	for _, row := range r.rows {
		if row.ScenarioID == scenarioID {
			row.IsActive = false
		}
	}
	return nil
}

func (r *fakeLinkRepo) ActivateLink(ctx context.Context, tx *gorm.DB, scenarioID, modelID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failActivate != nil {
		return r.failActivate
	}
	for _, row := range r.rows {
		if row.ScenarioID == scenarioID && row.ModelID == modelID {
			row.IsActive = true
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (r *fakeLinkRepo) LatestForScenario(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.ScenarioModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *types.ScenarioModel
	for _, row := range r.rows {
		if row.ScenarioID == scenarioID {
			latest = row
		}
	}
	if latest == nil {
		return nil, apperr.ErrNotFound
	}
	return latest, nil
}

func (r *fakeLinkRepo) activeCount(scenarioID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.ScenarioID == scenarioID && row.IsActive {
			n++
		}
	}
	return n
}

type fakeTrainingDataRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.TrainingData
}

func newFakeTrainingDataRepo() *fakeTrainingDataRepo {
	return &fakeTrainingDataRepo{rows: map[uuid.UUID]*types.TrainingData{}}
}

func (r *fakeTrainingDataRepo) Create(ctx context.Context, tx *gorm.DB, data *types.TrainingData) (*types.TrainingData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[data.TrainingDataID] = data
	return data, nil
}

func (r *fakeTrainingDataRepo) GetByID(ctx context.Context, tx *gorm.DB, dataID uuid.UUID) (*types.TrainingData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[dataID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

type fakePredictionRepo struct {
	mu   sync.Mutex
	rows []*types.PredictionResponse
}

func (r *fakePredictionRepo) Create(ctx context.Context, tx *gorm.DB, prediction *types.PredictionResponse) (*types.PredictionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, prediction)
	return prediction, nil
}

type fakeBucket struct {
	mu           sync.Mutex
	objects      map[string][]byte
	uploads      int
	failUpload   error
	failDownload error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (b *fakeBucket) put(category storage.BucketCategory, key string, raw []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[string(category)+"/"+key] = raw
}

func (b *fakeBucket) UploadFile(ctx context.Context, category storage.BucketCategory, key string, file io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload != nil {
		return b.failUpload
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return err
	}
	b.uploads++
	b.objects[string(category)+"/"+key] = buf.Bytes()
	return nil
}

func (b *fakeBucket) DownloadFile(ctx context.Context, category storage.BucketCategory, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDownload != nil {
		return nil, b.failDownload
	}
	raw, ok := b.objects[string(category)+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%w: object %s missing", apperr.ErrStorageUnavailable, key)
	}
	return raw, nil
}

func (b *fakeBucket) GetPublicURL(category storage.BucketCategory, key string) string {
	return fmt.Sprintf("http://store.local/storage/v1/object/public/%s/%s", category, key)
}
