package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unilab/lab-reservation-api/internal/models"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

type stubLabStore struct {
	labs      []models.Lab
	listCalls int
}

func (s *stubLabStore) Create(context.Context, *models.Lab) error { return nil }

func (s *stubLabStore) FindByID(context.Context, string) (*models.Lab, error) {
	return nil, nil
}

func (s *stubLabStore) List(context.Context) ([]models.Lab, error) {
	s.listCalls++
	return s.labs, nil
}

func (s *stubLabStore) Update(context.Context, *models.Lab) error { return nil }
func (s *stubLabStore) DeleteByID(context.Context, string) error  { return nil }

type stubCatalogCache struct {
	labs     []models.Lab
	getErr   error
	setCalls int
}

func (c *stubCatalogCache) Get(_ context.Context, _ string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	if out, ok := dest.(*[]models.Lab); ok {
		*out = c.labs
	}
	return nil
}

func (c *stubCatalogCache) Set(context.Context, string, interface{}, time.Duration) error {
	c.setCalls++
	return nil
}

func (c *stubCatalogCache) DeleteByPattern(context.Context, string) error { return nil }

type stubCacheRecorder struct {
	ops []bool
}

func (r *stubCacheRecorder) RecordCacheOperation(hit bool) {
	r.ops = append(r.ops, hit)
}

func TestLabServiceListServedFromCache(t *testing.T) {
	store := &stubLabStore{}
	cache := &stubCatalogCache{labs: []models.Lab{{ID: "lab-1", Name: "Chemistry Lab A"}}}
	recorder := &stubCacheRecorder{}
	svc := NewLabService(store, cache, time.Minute, zap.NewNop(), WithLabCacheMetrics(recorder))

	labs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, labs, 1)
	require.Zero(t, store.listCalls)
	require.Equal(t, []bool{true}, recorder.ops)
}

func TestLabServiceListCacheMissFallsThrough(t *testing.T) {
	store := &stubLabStore{labs: []models.Lab{{ID: "lab-1"}, {ID: "lab-2"}}}
	cache := &stubCatalogCache{getErr: appErrors.ErrCacheMiss}
	recorder := &stubCacheRecorder{}
	svc := NewLabService(store, cache, time.Minute, zap.NewNop(), WithLabCacheMetrics(recorder))

	labs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, labs, 2)
	require.Equal(t, 1, store.listCalls)
	require.Equal(t, 1, cache.setCalls)
	require.Equal(t, []bool{false}, recorder.ops)
}

func TestLabServiceListWithoutCache(t *testing.T) {
	store := &stubLabStore{labs: []models.Lab{{ID: "lab-1"}}}
	recorder := &stubCacheRecorder{}
	svc := NewLabService(store, nil, time.Minute, zap.NewNop(), WithLabCacheMetrics(recorder))

	labs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, labs, 1)
	require.Empty(t, recorder.ops)
}
