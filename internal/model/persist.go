package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Save writes the fitted pipeline as JSON.
func Save(w io.Writer, p *Pipeline) error {
	if err := p.fitted(); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// Load reads a pipeline written by Save and checks it is internally consistent.
func Load(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &p, nil
}

func (p *Pipeline) validate() error {
	if err := p.fitted(); err != nil {
		return err
	}
	n := len(p.Features)
	if n == 0 {
		return errors.New("no features")
	}
	if len(p.Scaler.Mean) != n || len(p.Scaler.Scale) != n {
		return fmt.Errorf("%w: scaler has %d/%d parameters for %d features",
			ErrShape, len(p.Scaler.Mean), len(p.Scaler.Scale), n)
	}
	for j, s := range p.Scaler.Scale {
		if s == 0 {
			return fmt.Errorf("scaler scale for %q is zero", p.Features[j])
		}
	}
	if p.Forest.NumFeatures != n {
		return fmt.Errorf("%w: forest fitted on %d features, pipeline lists %d", ErrShape, p.Forest.NumFeatures, n)
	}
	if len(p.Forest.Classes) == 0 || len(p.Forest.Trees) == 0 {
		return ErrNotFitted
	}
	for i, t := range p.Forest.Trees {
		if err := t.validate(n, len(p.Forest.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *DecisionTree) validate(numFeatures, numClasses int) error {
	if t == nil || len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if len(n.Value) != numClasses {
			return fmt.Errorf("node %d: %d class values, want %d", i, len(n.Value), numClasses)
		}
		if n.IsLeaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		// Children are always stored after their parent, which also rules out cycles.
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}
