package media

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
	router.Get("/", handler.listMedia)
	router.Post("/", handler.createMedia)
	router.Get("/{id}", handler.getMedia)
	router.Patch("/{id}", handler.updateMedia)
	router.Delete("/{id}", handler.deleteMedia)
	router.Get("/{id}/links", handler.listLinks)
	router.Post("/{id}/links", handler.linkMedia)
	router.Delete("/{id}/links/{linkID}", handler.unlinkMedia)
}

func (handler *Handler) listMedia(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()
	filter := Filter{MediaType: queryParams.Get("type")}
	if kind := queryParams.Get("entity_type"); kind != "" {
		filter.Target = &entity.Ref{
			Kind: entity.Kind(kind),
			ID:   int64(convert.ToInt(queryParams.Get("entity_id"))),
		}
	}

	items, total, err := handler.service.ListMedia(request.Context(), accountID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getMedia(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	mediaID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	m, err := handler.service.GetMedia(request.Context(), accountID, mediaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, m)
}

func (handler *Handler) createMedia(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Media
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateMedia(request.Context(), claims.AccountID, claims.AccountID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateMedia(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	mediaID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeStrictJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateMedia(request.Context(), claims.AccountID, mediaID, patch, claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deleteMedia(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	mediaID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SoftDeleteMedia(request.Context(), claims.AccountID, mediaID, claims.AccountID); err != nil {
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
	mediaID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	links, err := handler.service.ListLinks(request.Context(), accountID, mediaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, links)
}

func (handler *Handler) linkMedia(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	mediaID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var target entity.Ref
	if err := requestutil.DecodeStrictJSON(request, &target); err != nil {
		respond.Error(writer, request, err)
		return
	}

	link, err := handler.service.LinkMedia(request.Context(), claims.AccountID, mediaID, target, claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, link)
}

func (handler *Handler) unlinkMedia(writer http.ResponseWriter, request *http.Request) {
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

	if err := handler.service.UnlinkMedia(request.Context(), claims.AccountID, linkID, claims.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
