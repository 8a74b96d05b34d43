package sweep

import (
	"fmt"
	"math/rand"
)

// Trainer runs one training+evaluation cycle for a parameter set. The neural
// models themselves live outside this module; implementations adapt them to
// this seam. The profile flag selects the author-profile variant of the
// datasets, which is why it is removed from params before the call.
type Trainer interface {
	// RunFixed trains on train, evaluates on test and returns the fmacro score.
	RunFixed(model string, train, test *Dataset, wvPath string, profile bool, params ParameterSet) (float64, error)

	// CrossValidate runs k-fold cross validation on data and returns one
	// fmacro score per fold.
	CrossValidate(model string, data *Dataset, wvPath string, profile bool, folds int, params ParameterSet) ([]float64, error)
}

// BaselineTrainer predicts the majority stance label of the training split.
// It exists so sweeps run end to end without the external model backends;
// the scores it produces are the floor any real model must beat.
type BaselineTrainer struct {
	// Seed drives the fold shuffle in CrossValidate.
	Seed int64
}

// RunFixed scores the majority-class predictor of train against test.
func (b *BaselineTrainer) RunFixed(model string, train, test *Dataset, wvPath string, profile bool, params ParameterSet) (float64, error) {
	if train.Len() == 0 {
		return 0, fmt.Errorf("baseline trainer: empty training data")
	}
	majority := majorityLabel(train.Labels)
	pred := make([]string, test.Len())
	for i := range pred {
		pred[i] = majority
	}
	return MacroF1(test.Labels, pred), nil
}

// CrossValidate shuffles the instance indices with the configured seed,
// splits them into folds contiguous blocks and scores each held-out fold.
func (b *BaselineTrainer) CrossValidate(model string, data *Dataset, wvPath string, profile bool, folds int, params ParameterSet) ([]float64, error) {
	if folds < 2 {
		return nil, fmt.Errorf("baseline trainer: need at least 2 folds, got %d", folds)
	}
	if data.Len() < folds {
		return nil, fmt.Errorf("baseline trainer: %d instances cannot fill %d folds", data.Len(), folds)
	}

	rng := rand.New(rand.NewSource(b.Seed))
	indices := rng.Perm(data.Len())

	scores := make([]float64, 0, folds)
	for k := 0; k < folds; k++ {
		lo := k * data.Len() / folds
		hi := (k + 1) * data.Len() / folds
		heldOut := indices[lo:hi]
		rest := make([]int, 0, data.Len()-len(heldOut))
		rest = append(rest, indices[:lo]...)
		rest = append(rest, indices[hi:]...)

		score, err := b.RunFixed(model, data.Subset(rest), data.Subset(heldOut), wvPath, profile, params)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// majorityLabel returns the most frequent label, breaking ties by the
// lexicographically smallest label so results are deterministic.
func majorityLabel(labels []string) string {
	freq := map[string]int{}
	for _, label := range labels {
		freq[label]++
	}
	best, bestCount := "", -1
	for label, count := range freq {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best
}
