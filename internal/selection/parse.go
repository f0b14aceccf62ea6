package selection

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// parsedSelection is the normalized result of parsing the selection LLM's
// raw text output, before the strict membership filter against
// all_paths.
type parsedSelection struct {
	SelectedPaths    []string
	PathExplanations map[string]string
}

type objectForm struct {
	SelectedPaths    []string          `json:"selected_paths"`
	PathExplanations map[string]string `json:"path_explanations"`
}

// parseResponse implements SPEC_FULL.md §4.2's response-parsing decision
// table: try the object form first (first "{" to last "}"), then the
// bare-array legacy form (first "[" to last "]"), else fail. This is a
// decision table, not an exception ladder, per spec §9's explicit
// re-architecture note.
func parseResponse(raw string) (parsedSelection, error) {
	if obj, ok := tryObjectForm(raw); ok {
		return obj, nil
	}
	if arr, ok := tryArrayForm(raw); ok {
		return arr, nil
	}
	return parsedSelection{}, eris.New("selection: could not parse object or array form from model output")
}

func tryObjectForm(raw string) (parsedSelection, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end < start {
		return parsedSelection{}, false
	}
	var obj objectForm
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return parsedSelection{}, false
	}
	return parsedSelection{SelectedPaths: obj.SelectedPaths, PathExplanations: obj.PathExplanations}, true
}

func tryArrayForm(raw string) (parsedSelection, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < 0 || end < start {
		return parsedSelection{}, false
	}
	var arr []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &arr); err != nil {
		return parsedSelection{}, false
	}
	return parsedSelection{SelectedPaths: arr}, true
}

// filterKnownPaths enforces strict membership: every selected path must
// appear in allPaths; unknown paths are silently dropped.
func filterKnownPaths(selected []string, allPaths []string) []string {
	known := make(map[string]bool, len(allPaths))
	for _, p := range allPaths {
		known[p] = true
	}
	var out []string
	for _, p := range selected {
		if known[p] {
			out = append(out, p)
		}
	}
	return out
}
