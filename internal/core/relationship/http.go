package relationship

import (
	"net/http"

	"github.com/go-chi/chi/v5"

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
	router.Get("/", handler.listRelationships)
	router.Post("/", handler.createRelationship)
	router.Get("/{id}", handler.getRelationship)
	router.Patch("/{id}", handler.updateRelationship)
	router.Delete("/{id}", handler.deleteRelationship)
}

func (handler *Handler) listRelationships(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()
	filter := Filter{
		PersonID: int64(convert.ToInt(queryParams.Get("person_id"))),
		Type:     Type(queryParams.Get("type")),
	}

	relationships, total, err := handler.service.ListRelationships(request.Context(), accountID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, relationships, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getRelationship(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	relationshipID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.GetRelationship(request.Context(), accountID, relationshipID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, r)
}

func (handler *Handler) createRelationship(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Relationship
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateRelationship(request.Context(), claims.AccountID, claims.AccountID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateRelationship(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	relationshipID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeStrictJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateRelationship(request.Context(), claims.AccountID, relationshipID, patch, claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deleteRelationship(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	relationshipID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SoftDeleteRelationship(request.Context(), claims.AccountID, relationshipID, claims.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
