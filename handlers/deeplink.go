package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/marcuspimenta/BESTV-sub002/internal/deeplink"
)

// DeepLinkHandler resolves deep-link URIs into renderable payloads.
type DeepLinkHandler struct{}

func NewDeepLinkHandler() *DeepLinkHandler {
	return &DeepLinkHandler{}
}

// Resolve parses a deep link and returns the entity it carries. Parsing is
// best effort; a malformed link still resolves to defaults.
// GET /api/deeplink?uri=bestv://work/detail?...
func (h *DeepLinkHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("uri"))
	if raw == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "query parameter uri is required"})
		return
	}

	feature := deeplink.Feature(raw)
	switch feature {
	case deeplink.FeatureWork:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"feature": feature,
			"work":    deeplink.ParseWork(raw),
		})
	case deeplink.FeatureCast:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"feature": feature,
			"cast":    deeplink.ParseCast(raw),
		})
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unrecognised deep link"})
	}
}
