package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// jsonModel is a model manifest exported alongside a trained estimator.
// Keys follow scikit-learn's fitted attribute names.
type jsonModel struct {
	ModelType       string   `json:"model_type"`
	FeatureNamesIn  []string `json:"feature_names_in_"`
	NFeaturesIn     int      `json:"n_features_in_"`
	hasFeatureNames bool
}

func (m *jsonModel) Format() string { return "json" }

func (m *jsonModel) FeatureNames() ([]string, bool) {
	if !m.hasFeatureNames {
		return nil, false
	}
	return append([]string(nil), m.FeatureNamesIn...), true
}

func decodeJSON(r io.Reader) (*jsonModel, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json artifact: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json artifact: trailing data after manifest")
	}

	m := &jsonModel{}
	if v, ok := raw["model_type"]; ok {
		if err := json.Unmarshal(v, &m.ModelType); err != nil {
			return nil, fmt.Errorf("decode model_type: %w", err)
		}
	}
	if v, ok := raw["n_features_in_"]; ok {
		if err := json.Unmarshal(v, &m.NFeaturesIn); err != nil {
			return nil, fmt.Errorf("decode n_features_in_: %w", err)
		}
	}
	if v, ok := raw["feature_names_in_"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &m.FeatureNamesIn); err != nil {
			return nil, fmt.Errorf("decode feature_names_in_: %w", err)
		}
		m.hasFeatureNames = true
	}
	return m, nil
}
