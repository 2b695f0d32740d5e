package http_handlers

import (
	"encoding/json"
	"net/http"
)

// MetaHandler serves the API landing document.
type MetaHandler struct {
	name    string
	version string
	env     string
	docs    bool
}

func NewMetaHandler(name, version, env string, docsEnabled bool) *MetaHandler {
	return &MetaHandler{name: name, version: version, env: env, docs: docsEnabled}
}

// Root answers GET / with the service name and where to go next.
func (h *MetaHandler) Root(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"name":        h.name,
		"version":     h.version,
		"environment": h.env,
		"health":      "/health",
		"api":         "/api/v1",
	}
	if h.docs {
		body["docs"] = "/docs"
		body["openapi"] = "/api/v1/openapi.json"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}
