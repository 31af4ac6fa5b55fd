// Package docs embeds the OpenAPI description of the ShelfLog API.
package docs

import _ "embed"

// Swagger is the Swagger 2.0 document served at /spec.
//
//go:embed swagger.json
var Swagger []byte
