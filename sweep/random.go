package sweep

import (
	"math"
	"math/rand"
)

// SampleSpace draws n independent parameter sets for the model using rng.
// Each draw picks every hyperparameter fresh, so the space may contain
// duplicates. Unknown model names return ErrUnsupportedModel.
func SampleSpace(model string, n int, rng *rand.Rand) (ParameterSpace, error) {
	family, err := ResolveFamily(model)
	if err != nil {
		return nil, err
	}
	space := make(ParameterSpace, 0, n)
	for i := 0; i < n; i++ {
		space = append(space, sampleParams(family, rng))
	}
	return space, nil
}

// sampleParams draws one parameter set from the per-parameter distributions.
func sampleParams(family Family, rng *rand.Rand) ParameterSet {
	params := ParameterSet{
		"max_vocabsize": 10_000,
		"max_seqlen":    choiceInt(rng, 20, 40),
		// one predicted token is enough for single-label stance output
		"max_tgtlen":       1,
		"profile":          rng.Intn(2) == 1,
		"prf_cat":          rng.Intn(2) == 1,
		"max_prflen":       choiceInt(rng, 20, 40),
		"dropout":          uniform(rng, 0.1, 0.5),
		"lr":               math.Pow(10, uniform(rng, -5, -1)),
		"validation_split": 0.2,
		"epochs":           200, // early stopping cuts this short
		"batch_size":       1 << randInt(rng, 5, 9),
		"patience":         30,
	}
	switch family {
	case FamilyCrossNet:
		params["dim_lstm"] = 100 * randInt(rng, 1, 6)
		params["num_reason"] = 1
		params["dim_dense"] = 100 * randInt(rng, 1, 6)
	case FamilyMemNet:
		params["dim_lstm"] = 100 * randInt(rng, 1, 6)
		params["num_layers"] = randInt(rng, 1, 5)
		params["weight_tying"] = rng.Intn(2) == 1
	case FamilyTransformer:
		params["target"] = 1
		params["parallel"] = 1
		params["num_head"] = 1 << randInt(rng, 1, 4)
		params["num_layers"] = randInt(rng, 1, 5)
	}
	return params
}

// randInt draws uniformly from [lo, hi).
func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}

// uniform draws uniformly from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// choiceInt picks one of the given values uniformly.
func choiceInt(rng *rand.Rand, values ...int) int {
	return values[rng.Intn(len(values))]
}
