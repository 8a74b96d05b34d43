package sweep

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrUnsupportedModel is returned when a model name matches no known family.
var ErrUnsupportedModel = errors.New("unsupported model")

// ErrLegacyModel is returned for model choices that predate this tool and
// tune themselves during fitting, so an outer sweep would be meaningless.
var ErrLegacyModel = errors.New("legacy model is incompatible with parameter sweeps")

// Family identifies a group of model-name spellings that share the same
// model-specific hyperparameters.
type Family int

const (
	FamilyCrossNet Family = iota
	FamilyMemNet
	FamilyTransformer
)

func (f Family) String() string {
	switch f {
	case FamilyCrossNet:
		return "crossnet"
	case FamilyMemNet:
		return "memnet"
	case FamilyTransformer:
		return "transformer"
	default:
		return "unknown"
	}
}

// familyAliases maps every accepted model-name spelling to its family.
var familyAliases = map[string]Family{
	"crossnet": FamilyCrossNet, "cn": FamilyCrossNet,
	"CrossNet": FamilyCrossNet, "crossNet": FamilyCrossNet,
	"memnet": FamilyMemNet, "MemNet": FamilyMemNet, "mn": FamilyMemNet,
	"memNet": FamilyMemNet, "AttNet": FamilyMemNet, "attnet": FamilyMemNet,
	"tf": FamilyTransformer, "transformer": FamilyTransformer,
	"Transformer": FamilyTransformer,
}

// ResolveFamily maps a model name to its Family, or ErrUnsupportedModel.
func ResolveFamily(model string) (Family, error) {
	family, ok := familyAliases[model]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedModel, model)
	}
	return family, nil
}

// ParameterSet maps a hyperparameter name to its value for one configuration
// under test. Values are strings, numbers or booleans. A set handed to a
// training call must not be mutated afterwards; use Clone before popping keys.
type ParameterSet map[string]any

// ParameterSpace is an ordered sequence of parameter sets, produced once per
// sweep and consumed in order.
type ParameterSpace []ParameterSet

// Keys returns the parameter names in sorted order.
func (p ParameterSet) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the set.
func (p ParameterSet) Clone() ParameterSet {
	out := make(ParameterSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// PopBool removes name from the set and returns its boolean value.
// Numeric values are truthy when non-zero; a missing key is false.
func (p ParameterSet) PopBool(name string) bool {
	v, ok := p[name]
	if !ok {
		return false
	}
	delete(p, name)
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}

// FormatValue renders a parameter value for CSV output.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Candidates maps a hyperparameter name to its list of candidate values.
type Candidates map[string][]any

// Size returns the number of parameter sets a grid over c would contain.
func (c Candidates) Size() int {
	n := 1
	for _, values := range c {
		n *= len(values)
	}
	return n
}

// merge overlays o's candidate lists onto a copy of c.
func (c Candidates) merge(o Candidates) Candidates {
	out := make(Candidates, len(c))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range o {
		if len(v) > 0 {
			out[k] = v
		}
	}
	return out
}

// baseCandidates returns the grid candidates shared by all model families.
func baseCandidates() Candidates {
	return Candidates{
		"max_vocabsize": {100_000, 200_000, 300_000},
		"max_seqlen":    {20, 40},
		// one predicted token is enough for single-label stance output
		"max_tgtlen":       {1},
		"profile":          {false, true},
		"max_prflen":       {20, 40},
		"dropout":          {0.1, 0.3, 0.6, 0.9},
		"lr":               {0.1, 0.01, 0.001, 0.0001},
		"validation_split": {0.2},
		"epochs":           {200}, // early stopping cuts this short
		"batch_size":       {32, 64, 128, 256},
		"patience":         {30},
	}
}

// familyCandidates returns the model-specific grid candidates.
func familyCandidates(family Family) Candidates {
	switch family {
	case FamilyCrossNet:
		return Candidates{
			"dim_lstm":   {100, 200, 300},
			"num_reason": {1, 2, 3},
			"dim_dense":  {100, 200, 300},
		}
	case FamilyMemNet:
		return Candidates{
			"dim_lstm":   {100, 200, 300},
			"num_layers": {1, 2, 3, 4},
		}
	case FamilyTransformer:
		return Candidates{
			"target":     {false, true},
			"num_head":   {2, 4, 8},
			"num_layers": {1, 2, 3, 4},
		}
	default:
		return nil
	}
}

// GridCandidates builds the full candidate table for a model, or
// ErrUnsupportedModel for unknown names.
func GridCandidates(model string) (Candidates, error) {
	family, err := ResolveFamily(model)
	if err != nil {
		return nil, err
	}
	candidates := baseCandidates()
	for name, values := range familyCandidates(family) {
		candidates[name] = values
	}
	return candidates, nil
}

// Grid returns the exhaustive cartesian product of the model's candidate
// table as an ordered ParameterSpace.
func Grid(model string) (ParameterSpace, error) {
	return GridFrom(model, nil)
}

// GridFrom is Grid with candidate lists overridden by a preset, typically
// loaded from a space config file. Override keys replace the defaults.
func GridFrom(model string, overrides Candidates) (ParameterSpace, error) {
	candidates, err := GridCandidates(model)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		candidates = candidates.merge(overrides)
	}
	return expand(candidates), nil
}

// expand enumerates the cartesian product of the candidate lists. Keys are
// iterated in sorted order so the enumeration is deterministic.
func expand(candidates Candidates) ParameterSpace {
	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(candidates[k]) == 0 {
			return nil
		}
	}

	space := make(ParameterSpace, 0, candidates.Size())
	indices := make([]int, len(keys))
	for {
		params := make(ParameterSet, len(keys))
		for i, k := range keys {
			params[k] = candidates[k][indices[i]]
		}
		space = append(space, params)

		// odometer increment over the index vector
		pos := len(keys) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(candidates[keys[pos]]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return space
		}
	}
}
