package revision

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phamducminh/rootline/internal/core/entity"
	requestutil "github.com/phamducminh/rootline/internal/platform/request"
	"github.com/phamducminh/rootline/internal/platform/respond"
	"github.com/phamducminh/rootline/internal/platform/validate"
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
	router.Get("/", handler.listRevisions)
	router.Get("/reconstruct", handler.reconstruct)
}

func (handler *Handler) listRevisions(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		EntityType: entity.Kind(queryParams.Get("entity_type")),
		EntityID:   int64(convert.ToInt(queryParams.Get("entity_id"))),
	}

	var parseErr error
	if filter.From, parseErr = parseTime(queryParams.Get("from")); parseErr != nil {
		respond.Error(writer, request, parseErr)
		return
	}
	if filter.To, parseErr = parseTime(queryParams.Get("to")); parseErr != nil {
		respond.Error(writer, request, parseErr)
		return
	}

	revisions, total, err := handler.service.ListRevisions(request.Context(), accountID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, revisions, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) reconstruct(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	queryParams := request.URL.Query()
	kind := entity.Kind(queryParams.Get("entity_type"))
	entityID := int64(convert.ToInt(queryParams.Get("entity_id")))

	at, err := parseTime(queryParams.Get("at"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.service.Reconstruct(request.Context(), accountID, kind, entityID, at)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

// parseTime accepts RFC 3339 timestamps or bare ISO dates.
func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		// A bare date means "through the end of that day".
		end := t.Add(24*time.Hour - time.Nanosecond)
		return &end, nil
	}
	return nil, validate.RequiredError(FieldAt, "Must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
