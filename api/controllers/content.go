package controllers

import (
	"net/http"
	"strings"

	"github.com/amanagarwal0602/randomcafe-sub001/api/middleware"
	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	"github.com/amanagarwal0602/randomcafe-sub001/api/validators"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

const maxRecordIDLen = 64

// ContentGet serves a singleton resource such as /hero.
func ContentGet(svc content.Service, resource string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Get(r.Context(), resource)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// ContentList serves a collection. all lifts the visibility filter for staff viewers only.
func ContentList(svc content.Service, resource string, all bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := content.Viewer{Role: middleware.RoleFromContext(r.Context())}
		items, err := svc.List(r.Context(), resource, viewer, all)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ContentItem serves one member of a collection.
func ContentItem(svc content.Service, resource string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathParam(r, "id", maxRecordIDLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rec, err := svc.GetItem(r.Context(), resource, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// ContentPut replaces a singleton or collection member with the request body.
func ContentPut(svc content.Service, resource string, collection bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := contentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id := ""
		if collection {
			if id, err = validators.ParsePathParam(r, "id", maxRecordIDLen); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		body, err := validators.DecodeJSONDocument(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.Put(r.Context(), actor, resource, id, content.Record(body))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// AdminContentCreate appends a member to the collection named by {resource}.
func AdminContentCreate(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := contentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resource, err := validators.ParsePathParam(r, "resource", maxRecordIDLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body, err := validators.DecodeJSONDocument(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.Create(r.Context(), actor, strings.ToLower(resource), content.Record(body))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rec)
	}
}

// AdminContentDelete removes a collection member.
func AdminContentDelete(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := contentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resource, err := validators.ParsePathParam(r, "resource", maxRecordIDLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathParam(r, "id", maxRecordIDLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, strings.ToLower(resource), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func contentActor(r *http.Request) (content.Actor, error) {
	userID := middleware.UserUUIDFromContext(r.Context())
	if userID == nil {
		return content.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return content.Actor{UserID: *userID, Role: middleware.RoleFromContext(r.Context())}, nil
}
