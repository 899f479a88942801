package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/store"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// testDB opens a fresh isolated database in t.TempDir().
// It is closed and deleted automatically when the test ends.
func testDB(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// makeTemporal builds a daily temporal dataset starting 2024-01-01.
func makeTemporal(name string, opens ...float64) model.Dataset {
	pts := make([]model.TemporalPoint, len(opens))
	for i, v := range opens {
		pts[i] = model.TemporalPoint{
			Date:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Open:  v,
			Close: v + 1,
		}
	}
	return model.Dataset{Name: name, Kind: model.KindTemporal, Temporal: pts}
}

// ─── Open / Path ──────────────────────────────────────────────────────────────

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open with nested path: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path: expected %q, got %q", path, s.Path())
	}
}

func TestMetaRecordsSchema(t *testing.T) {
	s := testDB(t)
	version, created, err := s.Meta()
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if version != "1" {
		t.Errorf("schema_version: expected 1, got %q", version)
	}
	if _, err := time.Parse(time.RFC3339, created); err != nil {
		t.Errorf("created_at should be RFC3339, got %q", created)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.PutDataset(makeTemporal("prices", 1, 2)); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}
	_, created, _ := s.Meta()
	s.Close()

	s, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, again, _ := s.Meta(); again != created {
		t.Errorf("created_at changed on reopen: %q -> %q", created, again)
	}
	if _, found, _ := s.GetDataset("prices"); !found {
		t.Error("dataset should survive reopen")
	}
}

// ─── Datasets ─────────────────────────────────────────────────────────────────

func TestPutGetTemporalDataset(t *testing.T) {
	s := testDB(t)
	ds := makeTemporal("prices", 3, 1, 4)
	if err := s.PutDataset(ds); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}

	got, found, err := s.GetDataset("prices")
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if !found {
		t.Fatal("expected to find dataset after put")
	}
	if got.Kind != model.KindTemporal || len(got.Temporal) != 3 {
		t.Fatalf("unexpected dataset: %+v", got)
	}
	for i, p := range got.Temporal {
		want := ds.Temporal[i]
		if !p.Date.Equal(want.Date) || p.Open != want.Open || p.Close != want.Close {
			t.Errorf("point %d: expected %+v, got %+v", i, want, p)
		}
	}
}

func TestPutGetOrdinalDataset(t *testing.T) {
	s := testDB(t)
	ds := model.Dataset{Name: "marks", Kind: model.KindOrdinal, Ordinal: []model.OrdinalPoint{
		{X: 1, Color: "#ff0000", Arrow: model.DirectionUp},
		{X: 2.5, Symbol: model.SymbolDiamond},
	}}
	if err := s.PutDataset(ds); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}
	got, _, err := s.GetDataset("marks")
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if len(got.Ordinal) != 2 || got.Ordinal[0] != ds.Ordinal[0] || got.Ordinal[1] != ds.Ordinal[1] {
		t.Errorf("ordinal round trip: got %+v", got.Ordinal)
	}
}

func TestGetDatasetNotFound(t *testing.T) {
	s := testDB(t)
	_, found, err := s.GetDataset("missing")
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if found {
		t.Error("expected not found for missing dataset")
	}
}

func TestEmptyDatasetIsFound(t *testing.T) {
	s := testDB(t)
	if err := s.PutDataset(model.Dataset{Name: "blank"}); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}
	got, found, err := s.GetDataset("blank")
	if err != nil || !found {
		t.Fatalf("expected empty dataset to be found, found=%v err=%v", found, err)
	}
	if got.Kind != model.KindTemporal || got.Len() != 0 {
		t.Errorf("unexpected %+v", got)
	}
}

func TestPutDatasetRejectsBadNames(t *testing.T) {
	s := testDB(t)
	for _, name := range []string{"", "two words", "tab\tname"} {
		if err := s.PutDataset(makeTemporal(name, 1)); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestPutDatasetOverwrites(t *testing.T) {
	s := testDB(t)
	_ = s.PutDataset(makeTemporal("prices", 1))
	_ = s.PutDataset(makeTemporal("prices", 1, 2, 3))
	got, _, _ := s.GetDataset("prices")
	if got.Len() != 3 {
		t.Errorf("expected overwritten dataset with 3 points, got %d", got.Len())
	}
}

func TestListDatasetsSorted(t *testing.T) {
	s := testDB(t)
	_ = s.PutDataset(makeTemporal("zeta", 1))
	_ = s.PutDataset(makeTemporal("alpha", 1, 2))
	_ = s.PutDataset(model.Dataset{Name: "mid", Kind: model.KindOrdinal, Ordinal: []model.OrdinalPoint{{X: 1}}})

	infos, err := s.ListDatasets()
	if err != nil {
		t.Fatalf("ListDatasets: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(infos))
	}
	wantNames := []string{"alpha", "mid", "zeta"}
	wantCounts := []int{2, 1, 1}
	for i, info := range infos {
		if info.Name != wantNames[i] || info.Count != wantCounts[i] {
			t.Errorf("info %d: expected %s/%d, got %s/%d", i, wantNames[i], wantCounts[i], info.Name, info.Count)
		}
		if info.SavedAt.IsZero() {
			t.Errorf("info %d: SavedAt should be stamped", i)
		}
	}
	if infos[1].Kind != model.KindOrdinal {
		t.Errorf("mid: expected ordinal kind, got %s", infos[1].Kind)
	}
}

func TestDeleteDataset(t *testing.T) {
	s := testDB(t)
	_ = s.PutDataset(makeTemporal("prices", 1))

	found, err := s.DeleteDataset("prices")
	if err != nil || !found {
		t.Fatalf("DeleteDataset: found=%v err=%v", found, err)
	}
	if _, ok, _ := s.GetDataset("prices"); ok {
		t.Error("dataset should be gone after delete")
	}
	found, err = s.DeleteDataset("prices")
	if err != nil || found {
		t.Errorf("second delete: found=%v err=%v", found, err)
	}
}

// ─── Snapshots ────────────────────────────────────────────────────────────────

func TestPutGetSnapshot(t *testing.T) {
	s := testDB(t)
	snap := store.Snapshot{
		ID:          "01JABCDEF0000000000000000",
		Name:        "weekly-area",
		CommandLine: "render area --dataset prices --format svg",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	if err := s.PutSnapshot(snap); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	got, found, err := s.GetSnapshot(snap.ID)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if !found {
		t.Fatal("expected to find snapshot after put")
	}
	if got.Name != snap.Name || got.CommandLine != snap.CommandLine {
		t.Errorf("unexpected snapshot %+v", got)
	}
	if !got.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("CreatedAt: expected %s, got %s", snap.CreatedAt, got.CreatedAt)
	}
}

func TestGetSnapshotNotFound(t *testing.T) {
	s := testDB(t)
	_, found, err := s.GetSnapshot("notexist")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if found {
		t.Error("expected not found for missing snapshot")
	}
}

func TestListSnapshotsOldestFirst(t *testing.T) {
	s := testDB(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// IDs sort opposite to creation time.
	for i, id := range []string{"C", "B", "A"} {
		_ = s.PutSnapshot(store.Snapshot{
			ID:          id,
			Name:        "snap-" + id,
			CommandLine: "render area",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	snaps, err := s.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	for i, id := range []string{"C", "B", "A"} {
		if snaps[i].ID != id {
			t.Errorf("snapshot %d: expected %s, got %s", i, id, snaps[i].ID)
		}
	}
}

func TestDeleteSnapshot(t *testing.T) {
	s := testDB(t)
	_ = s.PutSnapshot(store.Snapshot{ID: "DELETEME", Name: "test", CommandLine: "render area", CreatedAt: time.Now()})

	if err := s.DeleteSnapshot("DELETEME"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	_, found, err := s.GetSnapshot("DELETEME")
	if err != nil {
		t.Fatalf("GetSnapshot after delete: %v", err)
	}
	if found {
		t.Error("snapshot should not be found after delete")
	}
}

// ─── Stats / Clear ────────────────────────────────────────────────────────────

func TestStatsCountsRows(t *testing.T) {
	s := testDB(t)
	_ = s.PutDataset(makeTemporal("a", 1))
	_ = s.PutDataset(makeTemporal("b", 1))
	_ = s.PutSnapshot(store.Snapshot{ID: "S1", CommandLine: "render area", CreatedAt: time.Now()})

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(stats))
	}
	if stats[0].Name != "datasets" || stats[0].Count != 2 {
		t.Errorf("datasets: unexpected %+v", stats[0])
	}
	if stats[1].Name != "snapshots" || stats[1].Count != 1 {
		t.Errorf("snapshots: unexpected %+v", stats[1])
	}
	if stats[0].Bytes <= 0 {
		t.Error("datasets bucket should report a size")
	}
}

func TestClearBucketLeavesOthersIntact(t *testing.T) {
	s := testDB(t)
	_ = s.PutDataset(makeTemporal("a", 1))
	_ = s.PutSnapshot(store.Snapshot{ID: "S1", CommandLine: "render area", CreatedAt: time.Now()})

	if err := s.ClearBucket("datasets"); err != nil {
		t.Fatalf("ClearBucket: %v", err)
	}
	infos, _ := s.ListDatasets()
	snaps, _ := s.ListSnapshots()
	if len(infos) != 0 {
		t.Errorf("expected 0 datasets after clear, got %d", len(infos))
	}
	if len(snaps) != 1 {
		t.Errorf("snapshots should be intact, got %d", len(snaps))
	}
}

func TestClearBucketUnknown(t *testing.T) {
	s := testDB(t)
	if err := s.ClearBucket("_meta"); err == nil {
		t.Error("expected error clearing an internal bucket")
	}
}

func TestClearAll(t *testing.T) {
	s := testDB(t)
	_ = s.PutDataset(makeTemporal("a", 1))
	_ = s.PutSnapshot(store.Snapshot{ID: "S1", CommandLine: "render area", CreatedAt: time.Now()})

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	infos, _ := s.ListDatasets()
	snaps, _ := s.ListSnapshots()
	if len(infos) != 0 || len(snaps) != 0 {
		t.Errorf("ClearAll: datasets=%d snaps=%d (both should be 0)", len(infos), len(snaps))
	}
}

func TestCompactKeepsData(t *testing.T) {
	s := testDB(t)
	for i := 0; i < 50; i++ {
		name := "ds" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		if err := s.PutDataset(makeTemporal(name, 1, 2, 3, 4, 5, 6, 7, 8)); err != nil {
			t.Fatalf("PutDataset: %v", err)
		}
	}
	if err := s.ClearBucket("datasets"); err != nil {
		t.Fatalf("ClearBucket: %v", err)
	}
	if err := s.PutDataset(makeTemporal("kept", 9, 10)); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}

	path := s.Path()
	before, after, err := s.Compact()
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if before <= 0 || after <= 0 {
		t.Fatalf("sizes should be positive, got before=%d after=%d", before, after)
	}

	if s.Path() != path {
		t.Errorf("path changed: %q -> %q", path, s.Path())
	}
	if _, err := os.Stat(path + ".compact"); !os.IsNotExist(err) {
		t.Errorf("temporary file should be gone, stat err = %v", err)
	}

	got, ok, err := s.GetDataset("kept")
	if err != nil || !ok {
		t.Fatalf("GetDataset after compact: ok=%v err=%v", ok, err)
	}
	if got.Len() != 2 {
		t.Errorf("expected 2 points after compact, got %d", got.Len())
	}
	if err := s.PutDataset(makeTemporal("after", 1)); err != nil {
		t.Errorf("store should stay writable after compact: %v", err)
	}
}
