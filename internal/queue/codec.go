package queue

import (
	"encoding/json"
	"fmt"

	"github.com/metricadb/metrica/internal/models"
)

// encodeSamples serializes a batch as a JSON array
func encodeSamples(samples []models.Sample) ([]byte, error) {
	data, err := json.Marshal(samples)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sample batch: %w", err)
	}
	return data, nil
}

// decodeSamples accepts either a JSON array of samples or a single
// sample object, so producers can publish one sample without wrapping
// it.
func decodeSamples(data []byte) ([]models.Sample, error) {
	trimmed := firstNonSpace(data)
	if trimmed == '[' {
		var samples []models.Sample
		if err := json.Unmarshal(data, &samples); err != nil {
			return nil, fmt.Errorf("failed to decode sample batch: %w", err)
		}
		return samples, nil
	}

	var sample models.Sample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("failed to decode sample: %w", err)
	}
	return []models.Sample{sample}, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
