package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the config file, indented.
func Schema() ([]byte, error) {
	return json.MarshalIndent(jsonschema.Reflect(&Config{}), "", "  ")
}
