// Package artifact inspects serialized model artifacts produced by an
// external training process. The only capability it relies on is reading
// back the ordered feature names the model was fitted on, when the artifact
// records them.
package artifact

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrArtifactLoad is matched by every failure to deserialize an artifact.
var ErrArtifactLoad = errors.New("load model artifact")

// Model is a deserialized artifact.
type Model interface {
	// Format names the serialization the artifact was read from.
	Format() string
	// FeatureNames returns the fitted feature names in model input order.
	// ok is false when the artifact does not record them.
	FeatureNames() (names []string, ok bool)
}

// Load deserializes an artifact. JSON manifests and LightGBM text models are
// recognized by their first bytes.
func Load(r io.Reader) (Model, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(64)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrArtifactLoad, err)
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", ErrArtifactLoad)
	}

	var m Model
	switch {
	case trimmed[0] == '{':
		m, err = decodeJSON(br)
	case bytes.HasPrefix(trimmed, []byte("tree")) || bytes.HasPrefix(trimmed, []byte("version=")):
		m, err = decodeLightGBM(br)
	default:
		return nil, fmt.Errorf("%w: unrecognized artifact format", ErrArtifactLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactLoad, err)
	}
	return m, nil
}

// Comparison lists the differences between a model's expected features and
// the features a prepared dataset provides.
type Comparison struct {
	Missing []string // expected by the model, absent from the dataset
	Extra   []string // present in the dataset, unknown to the model
	OrderOK bool     // shared names appear in the same relative order
}

// Match reports whether the dataset can be fed to the model as-is.
func (c Comparison) Match() bool {
	return len(c.Missing) == 0 && len(c.Extra) == 0 && c.OrderOK
}

// Compare checks prepared feature names against a model's fitted names.
func Compare(expected, actual []string) Comparison {
	var c Comparison
	for _, name := range expected {
		if !slices.Contains(actual, name) {
			c.Missing = append(c.Missing, name)
		}
	}
	for _, name := range actual {
		if !slices.Contains(expected, name) {
			c.Extra = append(c.Extra, name)
		}
	}

	var sharedExpected, sharedActual []string
	for _, name := range expected {
		if slices.Contains(actual, name) {
			sharedExpected = append(sharedExpected, name)
		}
	}
	for _, name := range actual {
		if slices.Contains(expected, name) {
			sharedActual = append(sharedActual, name)
		}
	}
	c.OrderOK = slices.Equal(sharedExpected, sharedActual)
	return c
}
