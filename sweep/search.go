package sweep

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FilterFunc decides whether a generated parameter set should be skipped.
// Returning true drops the set without evaluating or emitting it.
type FilterFunc func(ParameterSet) bool

// KeepAll is the default filter: no parameter set is skipped.
func KeepAll(ParameterSet) bool { return false }

// SearchConfig carries the sweep construction options.
type SearchConfig struct {
	// Model is the classifier name; any alias of a known family.
	Model string
	// WordVec is the word-embedding vector file path, joined onto Path.
	WordVec string
	// Rand, when positive, switches to random search with that many samples.
	Rand int
	// Repeat is the number of training runs per parameter set in fixed mode.
	Repeat int
	// Folds is the cross-validation fold count for xval mode.
	Folds int
	// Path is the root prefixed onto all data file paths.
	Path string
	// OutDir is where the result CSV and log file land.
	OutDir string
	// Seed drives the random sampler.
	Seed int64
	// Space optionally overrides grid candidate lists per parameter.
	Space Candidates
	// Filter optionally skips parameter sets; nil keeps all.
	Filter FilterFunc
}

// Search owns a parameter space and drives one sweep over it, delegating
// each configuration to the trainer and emitting one CSV row per retained
// parameter set. Purely sequential; the first failing training call aborts
// the remaining sweep.
type Search struct {
	cfg      SearchConfig
	trainer  Trainer
	space    ParameterSpace
	filter   FilterFunc
	wvPath   string
	basename string
	random   bool
}

// NewSearch validates the model choice, generates the parameter space and
// returns a controller ready to run. The model "svm" is rejected up front:
// it tunes itself during fitting, so sweeping it here is a configuration
// mistake, not a supported mode.
func NewSearch(cfg SearchConfig, trainer Trainer) (*Search, error) {
	if cfg.Model == "svm" {
		return nil, fmt.Errorf("%w: svm tunes its own parameters during fitting", ErrLegacyModel)
	}
	if trainer == nil {
		return nil, errors.New("trainer is required")
	}
	if cfg.Repeat <= 0 {
		cfg.Repeat = 3
	}
	if cfg.Folds <= 0 {
		cfg.Folds = 3
	}

	s := &Search{
		cfg:     cfg,
		trainer: trainer,
		filter:  cfg.Filter,
		random:  cfg.Rand > 0,
	}
	if s.filter == nil {
		s.filter = KeepAll
	}
	if cfg.WordVec != "" {
		s.wvPath = filepath.Join(cfg.Path, cfg.WordVec)
	}

	var err error
	if s.random {
		rng := rand.New(rand.NewSource(cfg.Seed))
		s.space, err = SampleSpace(cfg.Model, cfg.Rand, rng)
	} else {
		s.space, err = GridFrom(cfg.Model, cfg.Space)
	}
	if err != nil {
		return nil, err
	}
	if len(s.space) == 0 {
		return nil, errors.New("empty parameter space")
	}

	mode := "grid"
	if s.random {
		mode = "random"
	}
	s.basename = fmt.Sprintf("%s_search-%s-%s", mode, cfg.Model, time.Now().Format("02Jan2006"))
	return s, nil
}

// Space returns the generated parameter space.
func (s *Search) Space() ParameterSpace { return s.space }

// CSVPath returns the result file path for this sweep.
func (s *Search) CSVPath() string {
	return filepath.Join(s.cfg.OutDir, s.basename+".csv")
}

// LogPath returns the log file path sharing the sweep basename.
func (s *Search) LogPath() string {
	return filepath.Join(s.cfg.OutDir, s.basename+".log")
}

func (s *Search) searchName() string {
	if s.random {
		return "RANDOM SEARCH"
	}
	return "exhaustive GRID SEARCH"
}

// Fixed runs the sweep on a fixed train/test split. Both files are loaded
// once in profile and no-profile variants; each parameter set is trained
// Repeat times and its score sequence emitted as one CSV row.
func (s *Search) Fixed(trainfp, testfp string) error {
	logrus.Infof("%s on model %q for %d parameter combinations with %d repetitions",
		s.searchName(), s.cfg.Model, len(s.space), s.cfg.Repeat)

	trainfp = filepath.Join(s.cfg.Path, trainfp)
	testfp = filepath.Join(s.cfg.Path, testfp)
	train, err := LoadDataset(trainfp, false)
	if err != nil {
		return err
	}
	trainProf, err := LoadDataset(trainfp, true)
	if err != nil {
		return err
	}
	test, err := LoadDataset(testfp, false)
	if err != nil {
		return err
	}
	testProf, err := LoadDataset(testfp, true)
	if err != nil {
		return err
	}

	out, rw, err := s.openResults(s.cfg.Repeat)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, params := range s.space {
		if s.filter(params) {
			continue
		}
		logrus.Infof("params: %v", params)
		run := params.Clone()
		profile := run.PopBool("profile")

		scores := make([]float64, 0, s.cfg.Repeat)
		for i := 0; i < s.cfg.Repeat; i++ {
			if s.cfg.Repeat > 1 {
				logrus.Infof("iteration: %d", i+1)
			}
			tr, te := train, test
			if profile {
				tr, te = trainProf, testProf
			}
			score, err := s.trainer.RunFixed(s.cfg.Model, tr, te, s.wvPath, profile, run)
			if err != nil {
				return fmt.Errorf("train %q: %w", s.cfg.Model, err)
			}
			scores = append(scores, score)
		}
		if err := s.emit(rw, params, scores); err != nil {
			return err
		}
	}
	return nil
}

// Xval runs the sweep under k-fold cross validation on a single dataset.
// The per-fold score sequence comes straight from the trainer; there is no
// outer repetition loop.
func (s *Search) Xval(datafp string) error {
	logrus.Infof("%s on model %q for %d parameter combinations with %d-fold cross validation",
		s.searchName(), s.cfg.Model, len(s.space), s.cfg.Folds)

	datafp = filepath.Join(s.cfg.Path, datafp)
	data, err := LoadDataset(datafp, false)
	if err != nil {
		return err
	}
	dataProf, err := LoadDataset(datafp, true)
	if err != nil {
		return err
	}

	out, rw, err := s.openResults(s.cfg.Folds)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, params := range s.space {
		if s.filter(params) {
			continue
		}
		logrus.Infof("params: %v", params)
		run := params.Clone()
		profile := run.PopBool("profile")

		d := data
		if profile {
			d = dataProf
		}
		scores, err := s.trainer.CrossValidate(s.cfg.Model, d, s.wvPath, profile, s.cfg.Folds, run)
		if err != nil {
			return fmt.Errorf("cross-validate %q: %w", s.cfg.Model, err)
		}
		if err := s.emit(rw, params, scores); err != nil {
			return err
		}
	}
	return nil
}

// openResults creates the CSV file and writes its header. The header keys
// come from the first parameter set, so every set in a space must share the
// same key set (the generators guarantee this).
func (s *Search) openResults(scoreCols int) (*os.File, *ResultWriter, error) {
	out, err := os.Create(s.CSVPath())
	if err != nil {
		return nil, nil, fmt.Errorf("create result file: %w", err)
	}
	rw, err := NewResultWriter(out, s.space[0].Keys(), scoreCols)
	if err != nil {
		out.Close()
		return nil, nil, err
	}
	return out, rw, nil
}

func (s *Search) emit(rw *ResultWriter, params ParameterSet, scores []float64) error {
	res := RunResult{Params: params, Scores: scores}
	logrus.Infof("total scores: %d; fmacro average: %.4f; fmacro std dev: %.4f",
		len(scores), res.Average(), res.StdDev())
	return rw.Write(res)
}
