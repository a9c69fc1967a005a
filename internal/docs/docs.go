// Package docs holds the Swagger annotations and the OpenAPI document served
// at /swagger/doc.json.
package docs

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 document for the ledger API
//
//go:embed swagger.json
var SwaggerJSON []byte
