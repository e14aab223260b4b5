package lostfound

import (
	"net/http"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"
	"campus_desk_backend/internal/platform/storage"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type routeBinding struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// Handler serves the lost and found endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a lost and found handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("lost_found_handler")}
}

// RegisterRoutes mounts the student routes and the desk routes. desk is expected to sit
// under /admin behind the lost-and-found role check.
func (h *Handler) RegisterRoutes(students, desk *gin.RouterGroup) {
	for _, b := range []routeBinding{
		{http.MethodPost, "/lost-items", h.reportLost},
		{http.MethodGet, "/lost-items/mine", h.listMine},
	} {
		students.Handle(b.method, b.path, b.handler)
	}
	for _, b := range []routeBinding{
		{http.MethodPost, "/found-items", h.reportFound},
		{http.MethodGet, "/found-items/:id", h.foundItemDetails},
		{http.MethodGet, "/lost-found", h.list},
		{http.MethodGet, "/lost-found/search", h.search},
		{http.MethodPatch, "/lost-found/:source/:id/status", h.changeStatus},
		{http.MethodDelete, "/lost-items/:id", h.deleteLostItem},
	} {
		desk.Handle(b.method, b.path, b.handler)
	}
}

type itemRequest struct {
	ItemName               string `form:"item_name" binding:"required,max=200"`
	ItemType               string `form:"item_type" binding:"required,max=100"`
	Brand                  string `form:"brand" binding:"max=100"`
	Model                  string `form:"model" binding:"max=100"`
	PrimaryColor           string `form:"primary_color" binding:"max=50"`
	SecondaryColor         string `form:"secondary_color" binding:"max=50"`
	SerialNumber           string `form:"serial_number" binding:"max=100"`
	DistinguishingFeatures string `form:"distinguishing_features"`
	Description            string `form:"description"`
}

type lostRequest struct {
	itemRequest
	LocationLost string `form:"location_lost" binding:"required,max=255"`
	DateLost     string `form:"date_lost" binding:"required,datetime=2006-01-02"`
	TimeLost     string `form:"time_lost"`
}

type foundRequest struct {
	itemRequest
	LocationFound string `form:"location_found" binding:"required,max=255"`
	DateFound     string `form:"date_found" binding:"required,datetime=2006-01-02"`
	TimeFound     string `form:"time_found"`
}

func (r itemRequest) form(location, date, clock string) ItemForm {
	day, _ := time.ParseInLocation(listing.DateLayout, date, time.Local)
	return ItemForm{
		ItemName:               r.ItemName,
		ItemType:               r.ItemType,
		Brand:                  r.Brand,
		Model:                  r.Model,
		PrimaryColor:           r.PrimaryColor,
		SecondaryColor:         r.SecondaryColor,
		SerialNumber:           r.SerialNumber,
		Location:               location,
		Date:                   day,
		Time:                   clock,
		DistinguishingFeatures: r.DistinguishingFeatures,
		Description:            r.Description,
	}
}

// StatusRequest is the body of a lost or found status change.
type StatusRequest struct {
	Status      string  `json:"status" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
	FoundItemID *string `json:"found_item_id" binding:"omitempty,uuid"`
}

// DeleteRequest is the body of a soft delete.
type DeleteRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// openImage attaches the optional "image" upload to form. The returned func closes it.
func (h *Handler) openImage(c *gin.Context, form *ItemForm) (func(), bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return func() {}, true
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return nil, false
	}
	file, closer, err := storage.FromFileHeader(fh)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return nil, false
	}
	form.Image = file
	return func() {
		if err := closer.Close(); err != nil {
			h.logger.Debug("Closing upload failed", zap.Error(err))
		}
	}, true
}

func (h *Handler) reportLost(c *gin.Context) {
	var req lostRequest
	if !common.BindOrRespond(c, c.ShouldBind, &req) {
		return
	}
	form := req.form(req.LocationLost, req.DateLost, req.TimeLost)
	closeImage, ok := h.openImage(c, &form)
	if !ok {
		return
	}
	defer closeImage()

	item, err := h.service.ReportLost(c.Request.Context(), session.FromGin(c), form)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Lost item reported successfully!", item)
}

func (h *Handler) reportFound(c *gin.Context) {
	var req foundRequest
	if !common.BindOrRespond(c, c.ShouldBind, &req) {
		return
	}
	form := req.form(req.LocationFound, req.DateFound, req.TimeFound)
	closeImage, ok := h.openImage(c, &form)
	if !ok {
		return
	}
	defer closeImage()

	item, err := h.service.ReportFound(c.Request.Context(), session.FromGin(c), form)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Found item recorded successfully.", item)
}

func (h *Handler) listMine(c *gin.Context) {
	var params listing.QueryParams
	if !common.BindOrRespond(c, c.ShouldBindQuery, &params) {
		return
	}
	board, err := h.service.ListMine(c.Request.Context(), session.FromGin(c), params.ToQuery(time.Local))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Lost item reports retrieved successfully.", board)
}

func (h *Handler) list(c *gin.Context) {
	var params listing.QueryParams
	if !common.BindOrRespond(c, c.ShouldBindQuery, &params) {
		return
	}
	board, err := h.service.List(c.Request.Context(), session.FromGin(c), params.ToQuery(time.Local))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Lost and found items retrieved successfully.", board)
}

func (h *Handler) search(c *gin.Context) {
	var params listing.QueryParams
	if !common.BindOrRespond(c, c.ShouldBindQuery, &params) {
		return
	}
	board, err := h.service.Search(c.Request.Context(), session.FromGin(c), params.ToQuery(time.Local))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Search completed successfully.", board)
}

func (h *Handler) foundItemDetails(c *gin.Context) {
	id, ok := common.ParamUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.FoundItemDetails(c.Request.Context(), session.FromGin(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Found item retrieved successfully.", view)
}

func (h *Handler) changeStatus(c *gin.Context) {
	id, ok := common.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !common.BindOrRespond(c, c.ShouldBindJSON, &req) {
		return
	}
	change := StatusChange{Source: listing.Source(c.Param("source")), Status: req.Status, Reason: req.Reason}
	if req.FoundItemID != nil && *req.FoundItemID != "" {
		foundID := uuid.MustParse(*req.FoundItemID)
		change.FoundItemID = &foundID
	}

	result, err := h.service.ChangeStatus(c.Request.Context(), session.FromGin(c), id, change)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Status updated successfully.", result)
}

func (h *Handler) deleteLostItem(c *gin.Context) {
	id, ok := common.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req DeleteRequest
	if !common.BindOrRespond(c, c.ShouldBindJSON, &req) {
		return
	}
	result, err := h.service.DeleteLostItem(c.Request.Context(), session.FromGin(c), id, req.Reason)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Report deleted successfully.", result)
}
