package sweep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Dataset holds one stance detection corpus: the instance texts, the
// debated targets, the gold stance labels and, when loaded with profile
// features, one author-profile string per instance.
type Dataset struct {
	Texts    []string
	Targets  []string
	Labels   []string
	Profiles []string // nil when loaded without profile features
}

// Len returns the number of instances.
func (d *Dataset) Len() int { return len(d.Labels) }

// LoadDataset reads a stance CSV with a header row naming at least the
// text, target and stance columns. When profile is true the profile column
// is required and its values are attached to the dataset.
func LoadDataset(path string, profile bool) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header %s: %w", path, err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"text", "target", "stance"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset %s: missing column %q", path, required)
		}
	}
	profileIdx, hasProfile := col["profile"]
	if profile && !hasProfile {
		return nil, fmt.Errorf("dataset %s: profile features requested but no profile column", path)
	}

	ds := &Dataset{}
	if profile {
		ds.Profiles = []string{}
	}
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read dataset %s: %w", path, err)
		}
		ds.Texts = append(ds.Texts, record[col["text"]])
		ds.Targets = append(ds.Targets, record[col["target"]])
		ds.Labels = append(ds.Labels, record[col["stance"]])
		if profile {
			ds.Profiles = append(ds.Profiles, record[profileIdx])
		}
	}
	return ds, nil
}

// Subset returns a dataset restricted to the given instance indices.
func (d *Dataset) Subset(indices []int) *Dataset {
	out := &Dataset{}
	if d.Profiles != nil {
		out.Profiles = make([]string, 0, len(indices))
	}
	for _, i := range indices {
		out.Texts = append(out.Texts, d.Texts[i])
		out.Targets = append(out.Targets, d.Targets[i])
		out.Labels = append(out.Labels, d.Labels[i])
		if d.Profiles != nil {
			out.Profiles = append(out.Profiles, d.Profiles[i])
		}
	}
	return out
}
