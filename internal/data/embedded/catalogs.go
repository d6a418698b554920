// Package embedded provides access to embedded persona catalog data files.
package embedded

import _ "embed"

// PersonaCatalogData contains the embedded persona catalog YAML data.
//
//go:embed personas.yaml
var PersonaCatalogData []byte
