package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/crud"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/pagination"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/go-chi/chi/v5"
)

type idsRequest struct {
	IDs []string `json:"ids"`
}

type entityHandler[T models.Record, D any] struct {
	svc    *crud.Service[T, D]
	logger logging.Logger
}

// mountEntity registers the uniform CRUD and lifecycle routes for one entity
// under /path. extra adds entity-specific routes to the same subrouter.
func mountEntity[T models.Record, D any](r chi.Router, path string, svc *crud.Service[T, D], l logging.Logger, extra ...func(chi.Router)) {
	h := &entityHandler[T, D]{svc: svc, logger: l.With("entity", path)}

	r.Route("/"+path, func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Get("/list", h.findList)
		r.Post("/", h.add)
		r.Post("/batch", h.addMany)
		r.Put("/batch", h.updateMany)
		r.Post("/batch/{action}", h.batchAction)

		r.Get("/{id}", h.find)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.transition(svc.Delete))
		r.Delete("/{id}/hard", h.transition(svc.HardDelete))
		r.Post("/{id}/restore", h.transition(svc.Restore))
		r.Post("/{id}/activate", h.transition(svc.Activate))
		r.Post("/{id}/disable", h.transition(svc.Disable))

		for _, fn := range extra {
			fn(r)
		}
	})
}

// listParams reads listType, pageSize and pageNumber. The page is nil unless
// both paging values are present.
func listParams(r *http.Request) (repositories.ListType, *pagination.Params, error) {
	q := r.URL.Query()

	lt, err := repositories.ParseListType(q.Get("listType"))
	if err != nil {
		return "", nil, err
	}

	optInt := func(name string) (*int, error) {
		s := q.Get(name)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, common.Validation("%s must be an integer", name)
		}
		return &n, nil
	}
	size, err := optInt("pageSize")
	if err != nil {
		return "", nil, err
	}
	number, err := optInt("pageNumber")
	if err != nil {
		return "", nil, err
	}

	page, err := pagination.ParseOptional(size, number)
	if err != nil {
		return "", nil, err
	}
	return lt, page, nil
}

func (h *entityHandler[T, D]) list(w http.ResponseWriter, r *http.Request) {
	lt, page, err := listParams(r)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	if page == nil {
		items, err := h.svc.List(r.Context(), lt)
		if err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	res, err := h.svc.ListPage(r.Context(), lt, *page)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *entityHandler[T, D]) search(w http.ResponseWriter, r *http.Request) {
	lt, page, err := listParams(r)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	q := r.URL.Query()
	filter, projection, ordering := q.Get("filter"), q.Get("projection"), q.Get("ordering")

	if page == nil {
		res, err := h.svc.Query(r.Context(), lt, filter, projection, ordering)
		if err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	res, err := h.svc.QueryPage(r.Context(), lt, filter, projection, ordering, *page)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *entityHandler[T, D]) findList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.FindList(r.Context(), r.URL.Query().Get("ids"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *entityHandler[T, D]) find(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *entityHandler[T, D]) add(w http.ResponseWriter, r *http.Request) {
	var dto D
	if err := decode(r, &dto); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	item, err := h.svc.Add(r.Context(), dto)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *entityHandler[T, D]) addMany(w http.ResponseWriter, r *http.Request) {
	var dtos []D
	if err := decode(r, &dtos); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	items, err := h.svc.AddMany(r.Context(), dtos)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, items)
}

func (h *entityHandler[T, D]) update(w http.ResponseWriter, r *http.Request) {
	var dto D
	if err := decode(r, &dto); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	item, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *entityHandler[T, D]) updateMany(w http.ResponseWriter, r *http.Request) {
	var dtos []D
	if err := decode(r, &dtos); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	items, err := h.svc.UpdateMany(r.Context(), dtos)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *entityHandler[T, D]) transition(op func(ctx context.Context, id string) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := op(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: ok})
	}
}

// batchAction applies delete, restore, activate, disable or hard-delete to
// every id in the body, atomically.
func (h *entityHandler[T, D]) batchAction(w http.ResponseWriter, r *http.Request) {
	var op func(ctx context.Context, ids []string) (bool, error)
	switch chi.URLParam(r, "action") {
	case "delete":
		op = h.svc.DeleteMany
	case "restore":
		op = h.svc.RestoreMany
	case "activate":
		op = h.svc.ActivateMany
	case "disable":
		op = h.svc.DisableMany
	case "hard-delete":
		op = h.svc.HardDeleteMany
	default:
		writeError(r.Context(), w, h.logger, common.NotFound("unknown batch action %q", chi.URLParam(r, "action")))
		return
	}

	var req idsRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if len(req.IDs) == 0 {
		writeError(r.Context(), w, h.logger, common.Validation("ids must not be empty"))
		return
	}

	ok, err := op(r.Context(), req.IDs)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: ok})
}
