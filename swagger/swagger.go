// Package swagger serves the OpenAPI document of the API together with a Swagger UI page.
package swagger

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

const specFile = "openapi.yaml"

//go:embed swagger-ui/index.html swagger-ui/openapi.yaml
var content embed.FS

// GetHandler serves the UI page and the document; the document is sent as uncached YAML.
func GetHandler() (http.Handler, error) {
	ui, err := fs.Sub(content, "swagger-ui")
	if err != nil {
		return nil, err
	}

	files := http.FileServer(http.FS(ui))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/"+specFile) {
			w.Header().Set("Content-Type", "application/yaml")
			w.Header().Set("Cache-Control", "no-cache")
		}

		files.ServeHTTP(w, r)
	}), nil
}

// Spec returns the raw OpenAPI document.
func Spec() ([]byte, error) {
	return content.ReadFile("swagger-ui/" + specFile)
}
