package tree

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/phamducminh/rootline/internal/platform/request"
	"github.com/phamducminh/rootline/internal/platform/respond"
	"github.com/phamducminh/rootline/pkg/convert"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterTreeRoutes mounts the traversal endpoints.
func (handler *Handler) RegisterTreeRoutes(router chi.Router) {
	router.Get("/{personID}/ancestors", handler.ancestors)
	router.Get("/{personID}/descendants", handler.descendants)
}

// RegisterExportRoutes mounts the export endpoints.
func (handler *Handler) RegisterExportRoutes(router chi.Router) {
	router.Get("/gedcom", handler.exportGEDCOM)
	router.Get("/json", handler.exportJSON)
}

func (handler *Handler) ancestors(writer http.ResponseWriter, request *http.Request) {
	handler.walk(writer, request, handler.service.Ancestors)
}

func (handler *Handler) descendants(writer http.ResponseWriter, request *http.Request) {
	handler.walk(writer, request, handler.service.Descendants)
}

func (handler *Handler) walk(
	writer http.ResponseWriter,
	request *http.Request,
	traverse func(ctx context.Context, accountID, personID int64, maxDepth int) ([]Lineage, error),
) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	personID, err := requestutil.ID(request, "personID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	maxDepth := convert.ToInt(request.URL.Query().Get("depth"))

	lineage, err := traverse(request.Context(), accountID, personID, maxDepth)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lineage)
}

func (handler *Handler) exportGEDCOM(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.service.ExportGEDCOM(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Raw(writer, "text/plain; charset=utf-8", document)
}

func (handler *Handler) exportJSON(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.service.ExportJSON(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Raw(writer, "application/json; charset=utf-8", document)
}
