// Package assets embeds the OpenAPI document served by the Swagger UI.
package assets

import _ "embed"

//go:embed openapi.yaml
var OpenApiData []byte
