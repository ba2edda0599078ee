package language

import (
	"net/http"

	httperrors "github.com/sanket913/VoiceMitra/pkg/http/errors"
)

// HandleList serves GET /v1/languages with the speech locale metadata for
// every supported language.
func HandleList(w http.ResponseWriter, r *http.Request) {
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"default":   Default,
		"languages": All(),
	})
}
