package importer

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// ReadJSON loads a raw extraction payload from a JSON file.
func ReadJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: read json")
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, eris.Wrap(err, "importer: parse json")
	}
	if len(payload) == 0 {
		return nil, eris.Errorf("importer: empty payload in %s", path)
	}
	return payload, nil
}
