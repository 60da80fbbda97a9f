package controllers

import (
	"bytes"
	"net/http"

	"github.com/amanagarwal0602/randomcafe-sub001/api/middleware"
	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/storefront"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

// StorefrontPage renders the public page. Sections become editable regions
// when the caller's edit session is on.
func StorefrontPage(renderer *storefront.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := storefront.Request{
			Viewer: content.Viewer{Role: middleware.RoleFromContext(r.Context())},
		}
		if gate := middleware.EditGateFromContext(r.Context()); gate != nil {
			req.Gate = gate
		}

		var buf bytes.Buffer
		if err := renderer.Render(r.Context(), &buf, req); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render storefront"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
