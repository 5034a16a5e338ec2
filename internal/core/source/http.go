package source

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phamducminh/rootline/internal/core/entity"
	requestutil "github.com/phamducminh/rootline/internal/platform/request"
	"github.com/phamducminh/rootline/internal/platform/respond"
	"github.com/phamducminh/rootline/pkg/convert"
	"github.com/phamducminh/rootline/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listSources)
	router.Post("/", handler.createSource)
	router.Get("/{id}", handler.getSource)
	router.Patch("/{id}", handler.updateSource)
	router.Delete("/{id}", handler.deleteSource)
	router.Get("/{id}/links", handler.listLinks)
	router.Post("/{id}/links", handler.linkSource)
	router.Delete("/{id}/links/{linkID}", handler.unlinkSource)
}

func (handler *Handler) listSources(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()
	filter := Filter{Query: queryParams.Get("q")}
	if kind := queryParams.Get("entity_type"); kind != "" {
		filter.Target = &entity.Ref{
			Kind: entity.Kind(kind),
			ID:   int64(convert.ToInt(queryParams.Get("entity_id"))),
		}
	}

	sources, total, err := handler.service.ListSources(request.Context(), accountID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, sources, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getSource(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	sourceID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.GetSource(request.Context(), accountID, sourceID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, s)
}

func (handler *Handler) createSource(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Source
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateSource(request.Context(), claims.AccountID, claims.AccountID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateSource(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	sourceID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeStrictJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateSource(request.Context(), claims.AccountID, sourceID, patch, claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deleteSource(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	sourceID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SoftDeleteSource(request.Context(), claims.AccountID, sourceID, claims.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) listLinks(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	sourceID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	links, err := handler.service.ListLinks(request.Context(), accountID, sourceID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, links)
}

func (handler *Handler) linkSource(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	sourceID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var target entity.Ref
	if err := requestutil.DecodeStrictJSON(request, &target); err != nil {
		respond.Error(writer, request, err)
		return
	}

	link, err := handler.service.LinkSource(request.Context(), claims.AccountID, sourceID, target, claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, link)
}

func (handler *Handler) unlinkSource(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	linkID, err := requestutil.ID(request, "linkID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UnlinkSource(request.Context(), claims.AccountID, linkID, claims.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
