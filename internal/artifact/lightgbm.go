package artifact

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// lightGBMModel is the header of a LightGBM text model. Only the key=value
// header section before the first Tree= block is read.
type lightGBMModel struct {
	Version      string
	names        []string
	hasNames     bool
	MaxFeatureID int
}

func (m *lightGBMModel) Format() string { return "lightgbm" }

func (m *lightGBMModel) FeatureNames() ([]string, bool) {
	if !m.hasNames {
		return nil, false
	}
	return append([]string(nil), m.names...), true
}

func decodeLightGBM(r io.Reader) (*lightGBMModel, error) {
	m := &lightGBMModel{MaxFeatureID: -1}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	sawHeader := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line == "tree" {
			sawHeader = sawHeader || line == "tree"
			continue
		}
		if strings.HasPrefix(line, "Tree=") {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		sawHeader = true
		switch key {
		case "version":
			m.Version = value
		case "max_feature_idx":
			if _, err := fmt.Sscanf(value, "%d", &m.MaxFeatureID); err != nil {
				return nil, fmt.Errorf("parse max_feature_idx: %w", err)
			}
		case "feature_names":
			m.names = strings.Fields(value)
			m.hasNames = len(m.names) > 0
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lightgbm model: %w", err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("lightgbm model has no header")
	}
	if m.hasNames && m.MaxFeatureID >= 0 && len(m.names) != m.MaxFeatureID+1 {
		return nil, fmt.Errorf("lightgbm model lists %d feature names but max_feature_idx=%d", len(m.names), m.MaxFeatureID)
	}
	return m, nil
}
