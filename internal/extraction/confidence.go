package extraction

import "github.com/antoinebi/antoine/internal/model"

// scoreConfidence computes per-field and overall confidence from the
// coerced raw field map, per spec §4.4: a field contributes its full
// weight if present and non-empty (strings len > 3; lists/objects
// len > 0; numbers > 0), else zero.
func scoreConfidence(raw map[string]any) (map[string]float64, float64) {
	scores := make(map[string]float64, len(model.FieldConfidenceWeights))
	var overall float64

	for field, weight := range model.FieldConfidenceWeights {
		contribution := 0.0
		if fieldPresent(raw[field]) {
			contribution = weight
		}
		scores[field] = contribution
		overall += contribution
	}

	return scores, overall
}

func fieldPresent(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return len(val) > 3
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	case float64:
		return val > 0
	case int:
		return val > 0
	case bool:
		return val
	default:
		return false
	}
}
