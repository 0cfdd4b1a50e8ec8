// pkg/ingest/pipeline_test.go
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/cleaner"
	"github.com/smartwage/hr-ingress/pkg/mapper"
	"github.com/smartwage/hr-ingress/pkg/model"
	"github.com/smartwage/hr-ingress/pkg/store"
	"github.com/smartwage/hr-ingress/pkg/validator"
)

// memStore is an in-memory Store capturing everything the pipeline writes.
type memStore struct {
	mu      sync.Mutex
	nextID  int
	nodes   map[string]map[string]interface{}
	edges   map[string]string // fromID -> toID
	creates int
}

func newMemStore() *memStore {
	return &memStore{
		nextID: 100,
		nodes:  make(map[string]map[string]interface{}),
		edges:  make(map[string]string),
	}
}

func (m *memStore) Create(ctx context.Context, tenantID, entityType string, fields map[string]interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.nextID++
	id := fmt.Sprintf("%d", m.nextID)
	m.nodes[id] = fields
	return id, nil
}

func (m *memStore) Match(ctx context.Context, tenantID, entityType string, predicate map[string]interface{}) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, fields := range m.nodes {
		matched := true
		for k, v := range predicate {
			if fields[k] != v {
				matched = false
				break
			}
		}
		if matched {
			return &store.Record{ID: id, EntityType: entityType, Fields: fields}, nil
		}
	}
	return nil, nil
}

func (m *memStore) MatchByID(ctx context.Context, tenantID, entityType, id string) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fields, ok := m.nodes[id]; ok {
		return &store.Record{ID: id, EntityType: entityType, Fields: fields}, nil
	}
	return nil, nil
}

func (m *memStore) UpdateRelationship(ctx context.Context, tenantID, fromID, relType, toID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[fromID] = toID
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestPipeline(t *testing.T, st store.Store, outDir string, maxRows int) *Pipeline {
	t.Helper()
	logger := zap.NewNop()

	m, err := mapper.NewMapper(0.6, logger)
	require.NoError(t, err)
	c, err := cleaner.NewFieldCleaner(logger)
	require.NoError(t, err)
	v, err := validator.NewRecordValidator(st, logger)
	require.NoError(t, err)
	w, err := NewBatchWriter(logger)
	require.NoError(t, err)
	w = w.WithBatchSize(10)
	r, err := NewReporter(outDir, logger)
	require.NoError(t, err)

	p, err := NewPipeline(m, c, v, w, r, st, maxRows, logger)
	require.NoError(t, err)
	return p
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipelineEmployeeImport(t *testing.T) {
	st := newMemStore()
	outDir := t.TempDir()
	p := newTestPipeline(t, st, outDir, 5000)

	csvBody := strings.Join([]string{
		"First Name,Surname,Cell Number,Email Address,Employee No,Monthly Salary",
		"john,smith,082 123 4567,john@work.com,E1,R 55000",
		"jane,doe,0821234568,jane@,E2,60000",
		"ava,king,0821234569,ava@work.com,E3,",
	}, "\n")

	summary, err := p.Run(context.Background(), Params{
		TenantID:  "tenant-1",
		ActorID:   "actor-9",
		FilePath:  writeTempCSV(t, csvBody),
		Operation: model.OpEmployeeCreate,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 2, summary.ValidRows)
	assert.Equal(t, 1, summary.InvalidRows)
	assert.Equal(t, 2, summary.PersistedRows)
	assert.Equal(t, 0, summary.FailedRows)
	assert.Equal(t, summary.TotalRows, summary.ValidRows+summary.InvalidRows)

	assert.Equal(t, 6, summary.ColumnsMapped)
	assert.Contains(t, summary.Mapped, "first_name")
	assert.Contains(t, summary.Mapped, "mobile_number")

	assert.Equal(t, 2, st.creates)
	assert.FileExists(t, summary.Artifacts.SuccessCSV)
	assert.FileExists(t, summary.Artifacts.ErrorsCSV)
	assert.FileExists(t, summary.Artifacts.Summary)

	// Persisted entities carry tenant scoping, defaults and audit fields.
	for _, fields := range st.nodes {
		assert.Equal(t, "tenant-1", fields["employer_id"])
		assert.Equal(t, "actor-9", fields["created_by"])
		assert.Equal(t, "active", fields["status"])
		assert.NotEmpty(t, fields["uuid"])
		assert.NotEmpty(t, fields["created_at"])
	}
}

func TestPipelineMissingRequiredColumnAborts(t *testing.T) {
	st := newMemStore()
	p := newTestPipeline(t, st, t.TempDir(), 5000)

	csvBody := "First Name,Surname,Cell Number,Employee No\njohn,smith,0821234567,E1\n"

	summary, err := p.Run(context.Background(), Params{
		TenantID:  "tenant-1",
		ActorID:   "actor-9",
		FilePath:  writeTempCSV(t, csvBody),
		Operation: model.OpEmployeeCreate,
	})
	require.Error(t, err)
	assert.True(t, IsStructural(err))
	assert.Contains(t, err.Error(), "email")

	assert.Equal(t, 0, st.creates, "no records may be written after a structural failure")
	require.NotNil(t, summary)
	assert.FileExists(t, summary.Artifacts.Summary)
	assert.Empty(t, summary.Artifacts.SuccessCSV)
}

func TestPipelineRowCeilingAborts(t *testing.T) {
	st := newMemStore()
	p := newTestPipeline(t, st, t.TempDir(), 10)

	var b strings.Builder
	b.WriteString("First Name,Surname,Cell Number,Email Address,Employee No\n")
	for i := 0; i < 11; i++ {
		fmt.Fprintf(&b, "p%d,q%d,08212345%02d,p%d@work.com,E%d\n", i, i, i, i, i)
	}

	_, err := p.Run(context.Background(), Params{
		TenantID:  "tenant-1",
		ActorID:   "actor-9",
		FilePath:  writeTempCSV(t, b.String()),
		Operation: model.OpEmployeeCreate,
	})
	require.Error(t, err)
	assert.True(t, IsStructural(err))
	assert.Equal(t, 0, st.creates)
}

func TestPipelineManagerReassignment(t *testing.T) {
	st := newMemStore()
	st.nodes["1"] = map[string]interface{}{"first_name": "Jane"}
	st.nodes["2"] = map[string]interface{}{"first_name": "Sam"}
	p := newTestPipeline(t, st, t.TempDir(), 5000)

	csvBody := "Employee ID,New Manager\n1,2\n1,99\n"

	summary, err := p.Run(context.Background(), Params{
		TenantID:  "tenant-1",
		ActorID:   "actor-9",
		FilePath:  writeTempCSV(t, csvBody),
		Operation: model.OpManagerUpdate,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalRows)
	assert.Equal(t, 1, summary.PersistedRows)
	assert.Equal(t, 1, summary.InvalidRows)
	assert.Equal(t, "2", st.edges["1"])
}

func TestPipelineRejectsBadParams(t *testing.T) {
	st := newMemStore()
	p := newTestPipeline(t, st, t.TempDir(), 5000)

	_, err := p.Run(context.Background(), Params{
		ActorID:   "actor-9",
		FilePath:  "upload.csv",
		Operation: model.OpEmployeeCreate,
	})
	assert.ErrorContains(t, err, "tenant id")

	_, err = p.Run(context.Background(), Params{
		TenantID:  "tenant-1",
		ActorID:   "actor-9",
		FilePath:  "upload.csv",
		Operation: model.Operation("bulk_delete"),
	})
	assert.ErrorContains(t, err, "unknown operation")
}
