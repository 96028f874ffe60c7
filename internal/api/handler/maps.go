package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/acmei/landgrab/internal/api/apierr"
	"github.com/acmei/landgrab/internal/api/request"
	"github.com/acmei/landgrab/internal/api/response"
	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/services/maps"
)

// MapsHandler handles map catalog endpoints
type MapsHandler struct {
	mapService *maps.Service
}

// NewMapsHandler creates a new maps handler
func NewMapsHandler(mapService *maps.Service) *MapsHandler {
	return &MapsHandler{
		mapService: mapService,
	}
}

// List handles GET /api/v1/maps
func (h *MapsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.mapService.List(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MapsFromModel(all))
}

// Get handles GET /api/v1/maps/{kind}/{id}
func (h *MapsHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := model.MapID{Kind: model.MapKind(vars["kind"]), ID: vars["id"]}

	m, err := h.mapService.Get(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MapFromModel(m))
}

// Create handles POST /api/v1/maps
func (h *MapsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name is required"))
		return
	}

	m, err := h.mapService.Create(r.Context(), req.Name, req.Data)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MapFromModel(m))
}
