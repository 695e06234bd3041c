package model

import (
	"os"
	"path/filepath"
	"testing"
)

type fittedStats struct {
	State  *StateManager
	Median []float64
	Vocab  map[string]int
}

func TestSaveLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "preprocessor.gob")

	state := NewStateManager()
	state.SetDimensions(2, 10)
	state.SetFitted()
	orig := &fittedStats{
		State:  state,
		Median: []float64{98.5, 2.25},
		Vocab:  map[string]int{"gas": 1, "diesel": 0},
	}

	if err := SaveModel(orig, path); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}

	var loaded fittedStats
	if err := LoadModel(&loaded, path); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}

	if !loaded.State.IsFitted() {
		t.Error("fitted flag lost in round trip")
	}
	if nf, ns := loaded.State.GetDimensions(); nf != 2 || ns != 10 {
		t.Errorf("dimensions = (%d, %d), want (2, 10)", nf, ns)
	}
	if loaded.Median[1] != 2.25 || loaded.Vocab["gas"] != 1 {
		t.Errorf("loaded = %+v", loaded)
	}

	// 一時ファイルが残っていないこと
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the model file, got %d entries", len(entries))
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	var loaded fittedStats
	if err := LoadModel(&loaded, filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStateManager_Require(t *testing.T) {
	s := NewStateManager()
	if err := s.RequireFitted("OneHotEncoder", "Transform"); err == nil {
		t.Error("expected NotFittedError before fit")
	}

	s.SetDimensions(3, 5)
	s.SetFitted()
	if err := s.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := s.RequireFeatures("Transform", 4); err == nil {
		t.Error("expected DimensionError for width mismatch")
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset should clear fitted flag")
	}
}
