package response

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// DecodeJSON decodes a JSON request body into dst.
// The body is drained on return so the connection can be reused.
func DecodeJSON(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return domain.ErrInvalidJSON(err)
	}
	return nil
}
