package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/phamducminh/rootline/internal/platform/request"
	"github.com/phamducminh/rootline/internal/platform/respond"
	"github.com/phamducminh/rootline/pkg/convert"
	"github.com/phamducminh/rootline/pkg/pagination"
	"github.com/phamducminh/rootline/pkg/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listEvents)
	router.Post("/", handler.createEvent)
	router.Get("/{id}", handler.getEvent)
	router.Patch("/{id}", handler.updateEvent)
	router.Delete("/{id}", handler.deleteEvent)
	router.Post("/{id}/participants", handler.addParticipant)
	router.Delete("/{id}/participants/{personID}", handler.removeParticipant)
}

func (handler *Handler) listEvents(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()
	filter := Filter{
		PersonID:   int64(convert.ToInt(queryParams.Get("person_id"))),
		EventTypes: query.StringSlice(queryParams.Get("type")),
	}

	events, total, err := handler.service.ListEvents(request.Context(), accountID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getEvent(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	e, err := handler.service.GetEvent(request.Context(), accountID, eventID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, e)
}

func (handler *Handler) createEvent(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Event
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateEvent(request.Context(), claims.AccountID, claims.AccountID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateEvent(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeStrictJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateEvent(request.Context(), claims.AccountID, eventID, patch, claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deleteEvent(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SoftDeleteEvent(request.Context(), claims.AccountID, eventID, claims.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) addParticipant(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Participant
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AddParticipant(request.Context(), claims.AccountID, eventID, input, claims.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) removeParticipant(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	personID, err := requestutil.ID(request, "personID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveParticipant(request.Context(), claims.AccountID, eventID, personID, claims.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
