package sweep

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubTrainer records every call and returns canned scores.
type stubTrainer struct {
	fixedCalls   int
	xvalCalls    int
	seenProfiles []bool
	seenParams   []ParameterSet
	fixedScore   float64
	xvalScores   []float64
	err          error
}

func (st *stubTrainer) RunFixed(model string, train, test *Dataset, wvPath string, profile bool, params ParameterSet) (float64, error) {
	st.fixedCalls++
	st.seenProfiles = append(st.seenProfiles, profile)
	st.seenParams = append(st.seenParams, params.Clone())
	return st.fixedScore, st.err
}

func (st *stubTrainer) CrossValidate(model string, data *Dataset, wvPath string, profile bool, folds int, params ParameterSet) ([]float64, error) {
	st.xvalCalls++
	st.seenProfiles = append(st.seenProfiles, profile)
	st.seenParams = append(st.seenParams, params.Clone())
	return st.xvalScores, st.err
}

// pinnedSpace shrinks the memnet grid to the two profile variants.
func pinnedSpace() Candidates {
	return Candidates{
		"max_vocabsize": {100_000},
		"max_seqlen":    {20},
		"max_prflen":    {20},
		"dropout":       {0.1},
		"lr":            {0.01},
		"batch_size":    {64},
		"dim_lstm":      {100},
		"num_layers":    {1},
	}
}

func searchFixture(t *testing.T, trainer Trainer, cfg SearchConfig) (*Search, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"train.csv", "test.csv", "data.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(testCorpus), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	cfg.Path = dir
	cfg.OutDir = dir
	s, err := NewSearch(cfg, trainer)
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	return s, dir
}

func readResults(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	return records
}

func TestNewSearch_RejectsLegacyModel(t *testing.T) {
	_, err := NewSearch(SearchConfig{Model: "svm"}, &stubTrainer{})
	if !errors.Is(err, ErrLegacyModel) {
		t.Fatalf("NewSearch(svm): got %v, want ErrLegacyModel", err)
	}
}

func TestNewSearch_RejectsUnknownModel(t *testing.T) {
	_, err := NewSearch(SearchConfig{Model: "bert"}, &stubTrainer{})
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Fatalf("NewSearch(bert): got %v, want ErrUnsupportedModel", err)
	}
}

func TestSearch_Fixed_EmitsOneRowPerSet(t *testing.T) {
	// GIVEN a two-set space and two repetitions
	trainer := &stubTrainer{fixedScore: 0.5}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model:  "memnet",
		Repeat: 2,
		Space:  pinnedSpace(),
	})
	assert.Len(t, s.Space(), 2)

	// WHEN the fixed-split sweep runs
	if err := s.Fixed("train.csv", "test.csv"); err != nil {
		t.Fatalf("Fixed: %v", err)
	}

	// THEN the trainer ran repeat times per set and one row per set landed
	assert.Equal(t, 4, trainer.fixedCalls)
	records := readResults(t, s.CSVPath())
	assert.Len(t, records, 3, "header plus one row per parameter set")

	header := records[0]
	assert.Contains(t, header, "profile")
	assert.Contains(t, header, "fmacro_1")
	assert.Contains(t, header, "fmacro_2")
	assert.Equal(t, "fmacro_std", header[len(header)-1])
	assert.Equal(t, "fmacro_avg", header[len(header)-2])
}

func TestSearch_Fixed_PopsProfileBeforeTraining(t *testing.T) {
	trainer := &stubTrainer{fixedScore: 0.5}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model:  "memnet",
		Repeat: 1,
		Space:  pinnedSpace(),
	})

	if err := s.Fixed("train.csv", "test.csv"); err != nil {
		t.Fatalf("Fixed: %v", err)
	}

	// the flag reaches the trainer as an argument, never as a parameter
	assert.ElementsMatch(t, []bool{false, true}, trainer.seenProfiles)
	for i, params := range trainer.seenParams {
		_, ok := params["profile"]
		assert.False(t, ok, "call %d still carries the profile key", i)
	}

	// but the CSV keeps the profile column populated
	records := readResults(t, s.CSVPath())
	profileCol := -1
	for i, name := range records[0] {
		if name == "profile" {
			profileCol = i
		}
	}
	if profileCol < 0 {
		t.Fatal("no profile column in header")
	}
	got := []string{records[1][profileCol], records[2][profileCol]}
	assert.ElementsMatch(t, []string{"false", "true"}, got)
}

func TestSearch_Fixed_FilterSkipsSets(t *testing.T) {
	trainer := &stubTrainer{fixedScore: 0.5}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model:  "memnet",
		Repeat: 1,
		Space:  pinnedSpace(),
		Filter: func(p ParameterSet) bool { return p["profile"] == true },
	})

	if err := s.Fixed("train.csv", "test.csv"); err != nil {
		t.Fatalf("Fixed: %v", err)
	}

	assert.Equal(t, 1, trainer.fixedCalls, "filtered set must not be trained")
	records := readResults(t, s.CSVPath())
	assert.Len(t, records, 2, "filtered set must not produce a row")
}

func TestSearch_Fixed_TrainerErrorAbortsSweep(t *testing.T) {
	trainer := &stubTrainer{err: errors.New("boom")}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model:  "memnet",
		Repeat: 2,
		Space:  pinnedSpace(),
	})

	err := s.Fixed("train.csv", "test.csv")
	assert.Error(t, err)
	assert.Equal(t, 1, trainer.fixedCalls, "first failure must abort the remaining sweep")
}

func TestSearch_Xval_UsesFoldScoresDirectly(t *testing.T) {
	trainer := &stubTrainer{xvalScores: []float64{0.5, 0.7, 0.9}}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model: "memnet",
		Folds: 3,
		Space: pinnedSpace(),
	})

	if err := s.Xval("data.csv"); err != nil {
		t.Fatalf("Xval: %v", err)
	}

	// one trainer call per set, no outer repetition
	assert.Equal(t, 2, trainer.xvalCalls)

	records := readResults(t, s.CSVPath())
	assert.Len(t, records, 3)
	header := records[0]
	assert.Contains(t, header, "fmacro_3")
	assert.NotContains(t, header, "fmacro_4")

	// average column holds the fold-score mean
	avgCol := len(header) - 2
	avg, err := strconv.ParseFloat(records[1][avgCol], 64)
	if err != nil {
		t.Fatalf("parse average cell: %v", err)
	}
	assert.InDelta(t, 0.7, avg, 1e-12)
}

func TestSearch_RandomMode_SamplesRequestedCount(t *testing.T) {
	trainer := &stubTrainer{xvalScores: []float64{0.5}}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model: "memnet",
		Rand:  5,
		Seed:  42,
	})

	assert.Len(t, s.Space(), 5)
	assert.Contains(t, filepath.Base(s.CSVPath()), "random_search-memnet-")
}

func TestSearch_GridMode_Basename(t *testing.T) {
	trainer := &stubTrainer{}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model: "memnet",
		Space: pinnedSpace(),
	})
	assert.Contains(t, filepath.Base(s.CSVPath()), "grid_search-memnet-")
	assert.Contains(t, filepath.Base(s.LogPath()), "grid_search-memnet-")
}

func TestSearch_Fixed_MissingDataFile(t *testing.T) {
	trainer := &stubTrainer{}
	s, _ := searchFixture(t, trainer, SearchConfig{
		Model:  "memnet",
		Repeat: 1,
		Space:  pinnedSpace(),
	})
	err := s.Fixed("absent.csv", "test.csv")
	assert.Error(t, err)
	assert.Equal(t, 0, trainer.fixedCalls)
}
