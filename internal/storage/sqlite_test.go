package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func record(ns, id string, vec ...float32) service.VectorRecord {
	return service.VectorRecord{
		Chunk: model.RegulationChunk{
			ID:             id,
			Namespace:      ns,
			Text:           "text " + id,
			SourceDocument: ns + ".pdf",
			Page:           1,
		},
		Embedding: vec,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStorage("  "); !errors.Is(err, ErrEmptyString) {
		t.Errorf("expected ErrEmptyString, got %v", err)
	}
}

func TestSQLiteStorage_QueryRanksByCosine(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	records := []service.VectorRecord{
		record("FCRA", "exact", 1, 0, 0),
		record("FCRA", "close", 0.9, 0.1, 0),
		record("FCRA", "orthogonal", 0, 1, 0),
		record("FCRA", "wrong-dims", 1, 0),
		record("FDCPA", "other-ns", 1, 0, 0),
	}
	if err := store.Upsert(ctx, records); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name    string
		k       int
		wantIDs []string
	}{
		{name: "top one", k: 1, wantIDs: []string{"exact"}},
		{name: "top two", k: 2, wantIDs: []string{"exact", "close"}},
		{name: "k larger than namespace", k: 10, wantIDs: []string{"exact", "close", "orthogonal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := store.Query(ctx, "FCRA", []float32{2, 0, 0}, tt.k)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(matches) != len(tt.wantIDs) {
				t.Fatalf("got %d matches, want %d", len(matches), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if matches[i].Chunk.ID != id {
					t.Errorf("match %d = %s, want %s", i, matches[i].Chunk.ID, id)
				}
				if matches[i].Chunk.Namespace != "FCRA" {
					t.Errorf("match %d namespace = %s", i, matches[i].Chunk.Namespace)
				}
			}
			if matches[0].Score < 0.999 {
				t.Errorf("exact match score = %f, want ~1", matches[0].Score)
			}
		})
	}
}

func TestSQLiteStorage_QueryInvalidArgs(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.Query(ctx, "FCRA", []float32{1}, 0); !errors.Is(err, ErrInvalidQueryArg) {
		t.Errorf("k=0: expected ErrInvalidQueryArg, got %v", err)
	}
	if _, err := store.Query(ctx, "", []float32{1}, 1); !errors.Is(err, ErrEmptyString) {
		t.Errorf("empty namespace: expected ErrEmptyString, got %v", err)
	}
	matches, err := store.Query(ctx, "missing", []float32{1}, 3)
	if err != nil || len(matches) != 0 {
		t.Errorf("unknown namespace: got %v, %v", matches, err)
	}
}

func TestSQLiteStorage_UpsertOverwritesAndValidates(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Upsert(ctx, []service.VectorRecord{record("FCRA", "a", 1, 0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	updated := record("FCRA", "a", 0, 1)
	updated.Chunk.Text = "updated"
	if err := store.Upsert(ctx, []service.VectorRecord{updated}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	count, err := store.CountVectors(ctx, "FCRA")
	if err != nil || count != 1 {
		t.Fatalf("CountVectors() = %d, %v; want 1", count, err)
	}
	matches, err := store.Query(ctx, "FCRA", []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if matches[0].Chunk.Text != "updated" {
		t.Errorf("text = %q, want updated", matches[0].Chunk.Text)
	}

	bad := []service.VectorRecord{record("FCRA", "b", 1, 0), record("FCRA", "", 1, 0)}
	if err := store.Upsert(ctx, bad); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("expected ErrInvalidVector, got %v", err)
	}
	if count, _ := store.CountVectors(ctx, "FCRA"); count != 1 {
		t.Errorf("invalid batch must not be partially written, count = %d", count)
	}
}

func TestSQLiteStorage_NamespaceManagement(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Upsert(ctx, []service.VectorRecord{
		record("FCRA", "a", 1),
		record("FCRA", "b", 1),
		record("FDCPA", "c", 1),
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	namespaces, err := store.ListNamespaces(ctx)
	if err != nil {
		t.Fatalf("ListNamespaces() error = %v", err)
	}
	if len(namespaces) != 2 || namespaces[0] != "FCRA" || namespaces[1] != "FDCPA" {
		t.Errorf("namespaces = %v", namespaces)
	}

	if err := store.DeleteIDs(ctx, "FCRA", []string{"a", "missing"}); err != nil {
		t.Fatalf("DeleteIDs() error = %v", err)
	}
	if count, _ := store.CountVectors(ctx, "FCRA"); count != 1 {
		t.Errorf("FCRA count = %d, want 1", count)
	}

	if err := store.DeleteNamespace(ctx, "FDCPA"); err != nil {
		t.Fatalf("DeleteNamespace() error = %v", err)
	}
	namespaces, _ = store.ListNamespaces(ctx)
	if len(namespaces) != 1 || namespaces[0] != "FCRA" {
		t.Errorf("namespaces after delete = %v", namespaces)
	}
}

func TestSQLiteStorage_DisputeRecords(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	days := 60
	remark := "late payment"
	first := &model.DisputeRecord{
		AccountStatus: "Open",
		PaymentDays:   &days,
		DisputeType:   model.CategoryDelinquentLate,
	}
	second := &model.DisputeRecord{
		AccountStatus:          "Closed",
		CreditorRemark:         &remark,
		DisputeType:            model.CategoryDerogatory,
		DisputeLetterGenerated: true,
		DisputeLetter:          "# Letter",
	}
	for _, rec := range []*model.DisputeRecord{first, second} {
		if err := store.SaveDisputeRecord(ctx, rec); err != nil {
			t.Fatalf("SaveDisputeRecord() error = %v", err)
		}
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Errorf("ids not assigned: %d, %d", first.ID, second.ID)
	}

	records, err := store.ListDisputeRecords(ctx, 0)
	if err != nil {
		t.Fatalf("ListDisputeRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != second.ID || records[0].DisputeLetter != "# Letter" || records[0].CreditorRemark == nil {
		t.Errorf("newest record mismatch: %+v", records[0])
	}
	if records[1].PaymentDays == nil || *records[1].PaymentDays != 60 {
		t.Errorf("payment days not round-tripped: %+v", records[1])
	}

	limited, _ := store.ListDisputeRecords(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored, got %d", len(limited))
	}

	invalid := &model.DisputeRecord{DisputeType: "Bogus"}
	if err := store.SaveDisputeRecord(ctx, invalid); !errors.Is(err, ErrInvalidDispute) {
		t.Errorf("expected ErrInvalidDispute, got %v", err)
	}
}

func TestSQLiteStorage_QueryDimensionMismatch(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Upsert(ctx, []service.VectorRecord{record("FCRA", "a", 1, 0, 0, 0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if _, err := store.Query(ctx, "FCRA", []float32{1, 0}, 1); !errors.Is(err, common.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if matches, err := store.Query(ctx, "FCRA", []float32{1, 0, 0, 0}, 1); err != nil || len(matches) != 1 {
		t.Errorf("matching size: got %v, %v", matches, err)
	}
	if matches, err := store.Query(ctx, "FDCPA", []float32{1, 0}, 1); err != nil || len(matches) != 0 {
		t.Errorf("empty namespace: got %v, %v", matches, err)
	}
}
