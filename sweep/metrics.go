package sweep

import "sort"

// MacroF1 computes the macro-averaged F1 score of pred against gold: the
// unweighted mean of per-class F1 over the classes present in gold.
// Slices must have equal length; the score for mismatched or empty input
// is 0.
func MacroF1(gold, pred []string) float64 {
	if len(gold) == 0 || len(gold) != len(pred) {
		return 0
	}

	type counts struct{ tp, fp, fn int }
	perClass := map[string]*counts{}
	class := func(label string) *counts {
		c, ok := perClass[label]
		if !ok {
			c = &counts{}
			perClass[label] = c
		}
		return c
	}
	goldClasses := map[string]bool{}
	for i := range gold {
		goldClasses[gold[i]] = true
		if gold[i] == pred[i] {
			class(gold[i]).tp++
		} else {
			class(gold[i]).fn++
			class(pred[i]).fp++
		}
	}

	classes := make([]string, 0, len(goldClasses))
	for label := range goldClasses {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	sum := 0.0
	for _, label := range classes {
		c := perClass[label]
		var precision, recall float64
		if c.tp+c.fp > 0 {
			precision = float64(c.tp) / float64(c.tp+c.fp)
		}
		if c.tp+c.fn > 0 {
			recall = float64(c.tp) / float64(c.tp+c.fn)
		}
		if precision+recall > 0 {
			sum += 2 * precision * recall / (precision + recall)
		}
	}
	return sum / float64(len(classes))
}
