package main

import (
	_ "embed"
	"net/http"
)

// openAPIDocument is the OpenAPI description of the HTTP API, embedded
// so the binary serves its own documentation.
//
//go:embed openapi.json
var openAPIDocument []byte

// swaggerPage renders Swagger UI against the embedded document. The UI
// assets come from a CDN to keep them out of the binary.
const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Task Manager API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css"/>
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => {
    SwaggerUIBundle({
      url: "/swagger/openapi.json",
      dom_id: "#swagger-ui"
    });
  };
</script>
</body>
</html>
`

// serveOpenAPIDocument serves the embedded OpenAPI document.
func (app *application) serveOpenAPIDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(openAPIDocument); err != nil {
		app.logger.Error("Failed to write OpenAPI document", "error", err)
	}
}

// serveSwaggerUI serves the Swagger UI page.
func (app *application) serveSwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(swaggerPage)); err != nil {
		app.logger.Error("Failed to write Swagger UI page", "error", err)
	}
}
