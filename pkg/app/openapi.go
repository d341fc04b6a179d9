package app

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/restkit/pkg/httputil"
	"github.com/getmockd/restkit/pkg/openapi"
)

// Document routes, served when the server config enables them.
const (
	OpenAPIJSONPath = "/openapi.json"
	OpenAPIYAMLPath = "/openapi.yaml"
)

// DefaultAPIVersion is the document version when the config has none.
const DefaultAPIVersion = "0.0.0"

// OpenAPI describes the mounted resources.
func (a *App) OpenAPI() *openapi3.T {
	var resources []openapi.Resource
	for _, res := range a.Server.Resources() {
		entry := openapi.Resource{
			Name:     res.Name(),
			Path:     res.Path(),
			Supports: res.Config().Supports,
		}
		for _, r := range res.Routes() {
			if r.Static != "" && !strings.HasSuffix(r.Pattern, "/{id}") {
				entry.Statics = append(entry.Statics, r.Pattern)
			}
		}
		resources = append(resources, entry)
	}

	version := a.Config.Version
	if version == "" {
		version = DefaultAPIVersion
	}
	return openapi.Build("restkit", version, resources)
}

func (a *App) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := a.OpenAPI()
	if r.URL.Path == OpenAPIYAMLPath {
		data, err := openapi.MarshalYAML(doc)
		if err != nil {
			a.log.Error("failed to encode OpenAPI document", "error", err)
			httputil.WriteMessage(w, http.StatusInternalServerError, "Failed to encode OpenAPI document")
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml; charset=utf-8")
		_, _ = w.Write(data)
		return
	}
	httputil.WriteOK(w, doc)
}
