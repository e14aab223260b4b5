package complaint

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"
	"campus_desk_backend/internal/platform/storage"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type routeBinding struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// Handler serves the complaint endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a complaint handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts student, shared and admin routes on groups that already carry
// the matching auth middleware.
func (h *Handler) RegisterRoutes(students, signedIn, admins *gin.RouterGroup) {
	bind := func(g *gin.RouterGroup, bindings []routeBinding) {
		for _, b := range bindings {
			g.Handle(b.method, b.path, b.handler)
		}
	}
	bind(students, []routeBinding{
		{http.MethodPost, "/complaints/facility", h.submitFacility},
		{http.MethodPost, "/complaints/administrative", h.submitAdministrative},
		{http.MethodGet, "/complaints/mine", h.listMine},
	})
	bind(signedIn, []routeBinding{
		{http.MethodGet, "/complaints/:id", h.getComplaint},
	})
	bind(admins, []routeBinding{
		{http.MethodGet, "/complaints", h.adminList},
		{http.MethodPatch, "/complaints/:id/status", h.changeStatus},
	})
}

type baseRequest struct {
	Title       string   `form:"title" binding:"required,max=200"`
	Description string   `form:"description" binding:"required"`
	Declaration bool     `form:"declaration"`
	FileDescs   []string `form:"file_description"`
}

type facilityRequest struct {
	baseRequest
	FacilityType      string `form:"facility_type" binding:"required,max=100"`
	FacilityIssueType string `form:"facility_issue_type" binding:"required,max=100"`
	Floor             string `form:"floor" binding:"required,max=50"`
	IncidentDate      string `form:"incident_date" binding:"required,datetime=2006-01-02"`
	PreviousAttempt   string `form:"previous_attempt"`
}

type administrativeRequest struct {
	baseRequest
	Department       string `form:"department" binding:"required,max=100"`
	StaffInvolved    string `form:"staff_involved"`
	PreviousAttempts string `form:"previous_attempts"`
	DesiredOutcome   string `form:"desired_outcome"`
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) submitFacility(c *gin.Context) {
	var req facilityRequest
	if !common.BindOrRespond(c, c.ShouldBind, &req) {
		return
	}
	uploads, closeAll, ok := h.readUploads(c, req.FileDescs)
	if !ok {
		return
	}
	defer closeAll()

	incident, _ := time.ParseInLocation(listing.DateLayout, req.IncidentDate, time.Local)
	form := NewFacilityForm(req.Title, req.Description, req.Declaration, uploads)
	form.FacilityType = req.FacilityType
	form.FacilityIssueType = req.FacilityIssueType
	form.Floor = req.Floor
	form.IncidentDate = incident
	form.PreviousAttempt = req.PreviousAttempt

	created, err := h.service.SubmitFacility(c.Request.Context(), session.FromGin(c), form)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Complaint submitted successfully.", created)
}

func (h *Handler) submitAdministrative(c *gin.Context) {
	var req administrativeRequest
	if !common.BindOrRespond(c, c.ShouldBind, &req) {
		return
	}
	uploads, closeAll, ok := h.readUploads(c, req.FileDescs)
	if !ok {
		return
	}
	defer closeAll()

	form := NewAdministrativeForm(req.Title, req.Description, req.Declaration, uploads)
	form.Department = req.Department
	form.StaffInvolved = req.StaffInvolved
	form.PreviousAttempts = req.PreviousAttempts
	form.DesiredOutcome = req.DesiredOutcome

	created, err := h.service.SubmitAdministrative(c.Request.Context(), session.FromGin(c), form)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Complaint submitted successfully.", created)
}

func (h *Handler) listMine(c *gin.Context) {
	var params listing.QueryParams
	if !common.BindOrRespond(c, c.ShouldBindQuery, &params) {
		return
	}
	result, err := h.service.ListMine(c.Request.Context(), session.FromGin(c), params.ToQuery(time.Local))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	views := make([]View, len(result.Items))
	for i, r := range result.Items {
		views[i] = RenderComplaint(r, false)
	}
	common.RespondOK(c, "Complaints retrieved successfully.", gin.H{"result": result, "views": views})
}

func (h *Handler) adminList(c *gin.Context) {
	var params listing.QueryParams
	if !common.BindOrRespond(c, c.ShouldBindQuery, &params) {
		return
	}
	dashboard, err := h.service.AdminList(c.Request.Context(), session.FromGin(c), params.ToQuery(time.Local))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaints retrieved successfully.", dashboard)
}

func (h *Handler) getComplaint(c *gin.Context) {
	id, ok := common.ParamUUID(c, "id")
	if !ok {
		return
	}
	dv, err := h.service.GetByID(c.Request.Context(), session.FromGin(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaint retrieved successfully.", dv)
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
	updated, err := h.service.ChangeStatus(c.Request.Context(), session.FromGin(c), id, StatusChange{Status: req.Status, Reason: req.Reason})
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaint status updated.", updated)
}

// readUploads opens every file sent as "files". descs[i] describes file i; a single
// description covers every file.
func (h *Handler) readUploads(c *gin.Context, descs []string) ([]Upload, func(), bool) {
	var headers []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		headers = form.File["files"]
	}
	var closers []io.Closer
	closeAll := func() { closeUploads(closers, h.logger) }
	uploads := make([]Upload, 0, len(headers))
	for i, fh := range headers {
		file, closer, err := storage.FromFileHeader(fh)
		if err != nil {
			closeAll()
			common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
			return nil, nil, false
		}
		closers = append(closers, closer)
		uploads = append(uploads, Upload{File: file, Description: uploadDescription(descs, i)})
	}
	return uploads, closeAll, true
}

func closeUploads(closers []io.Closer, logger *zap.Logger) {
	for _, cl := range closers {
		if err := cl.Close(); err != nil {
			logger.Debug("Closing upload failed", zap.Error(err))
		}
	}
}

func uploadDescription(descs []string, i int) string {
	switch {
	case len(descs) == 1:
		return descs[0]
	case i < len(descs):
		return descs[i]
	}
	return ""
}
