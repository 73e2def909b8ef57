package store

import (
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndReadHistoryOldestFirst(t *testing.T) {
	s := openTest(t)

	base := time.Unix(1700000000, 0)
	entries := []HistoryEntry{
		{Session: "repl", Source: "1 + 1", Result: "2", RanAt: base},
		{Session: "repl", Source: "2 + 2", Result: "4", RanAt: base.Add(time.Second)},
		{Session: "repl", Source: "3 + 3", Result: "6", RanAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := s.AppendHistory(e); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	got, err := s.History("repl", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Source != "2 + 2" || got[1].Source != "3 + 3" {
		t.Errorf("got %+v, want the two most recent entries oldest-first", got)
	}
}

func TestHistoryIsolatedBySession(t *testing.T) {
	s := openTest(t)
	s.AppendHistory(HistoryEntry{Session: "a", Source: "1", Result: "1", RanAt: time.Now()})
	s.AppendHistory(HistoryEntry{Session: "b", Source: "2", Result: "2", RanAt: time.Now()})

	got, err := s.History("a", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 1 || got[0].Source != "1" {
		t.Fatalf("got %+v, want only session a's entry", got)
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := openTest(t)
	blob := []byte{1, 2, 3, 4}

	if err := s.SaveSnapshot("checkpoint", blob); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, err := s.LoadSnapshot("checkpoint")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got) != len(blob) {
		t.Fatalf("got %v, want %v", got, blob)
	}
	for i := range blob {
		if got[i] != blob[i] {
			t.Fatalf("got %v, want %v", got, blob)
		}
	}
}

func TestSaveSnapshotOverwritesExisting(t *testing.T) {
	s := openTest(t)
	s.SaveSnapshot("checkpoint", []byte{1})
	s.SaveSnapshot("checkpoint", []byte{2, 2})

	got, err := s.LoadSnapshot("checkpoint")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 2 {
		t.Fatalf("got %v, want the newer snapshot to have replaced the old one", got)
	}
}

func TestLoadMissingSnapshotErrors(t *testing.T) {
	s := openTest(t)
	if _, err := s.LoadSnapshot("nope"); err == nil {
		t.Fatalf("expected an error loading a snapshot that was never saved")
	}
}
