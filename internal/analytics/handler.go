package analytics

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the analytics endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the analytics routes on the admin group.
func (h *Handler) RegisterRoutes(admins *gin.RouterGroup) {
	admins.GET("/analytics", h.report)
	admins.GET("/analytics/export", h.export)
}

// Params is the query string of both endpoints.
type Params struct {
	Range  string `form:"range" binding:"omitempty,oneof=all week month year custom"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Format string `form:"format" binding:"omitempty,oneof=pdf xlsx"`
}

// Window resolves the params against now in now's location.
func (p Params) Window(now time.Time) (Window, error) {
	r, err := ParseRange(p.Range)
	if err != nil {
		return Window{}, common.NewValidationError("Date range is invalid.", map[string]string{"range": err.Error()})
	}
	parse := func(s string) *time.Time {
		t, err := time.ParseInLocation(listing.DateLayout, s, now.Location())
		if err != nil {
			return nil
		}
		return &t
	}
	return ResolveWindow(r, parse(p.From), parse(p.To), now)
}

func (h *Handler) window(c *gin.Context) (Params, Window, bool) {
	var p Params
	if !common.BindOrRespond(c, c.ShouldBindQuery, &p) {
		return p, Window{}, false
	}
	w, err := p.Window(h.service.Now())
	if err != nil {
		common.RespondWithError(c, err)
		return p, Window{}, false
	}
	return p, w, true
}

func (h *Handler) report(c *gin.Context) {
	_, w, ok := h.window(c)
	if !ok {
		return
	}
	report, err := h.service.Report(c.Request.Context(), session.FromGin(c), w)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Analytics retrieved successfully.", report)
}

func (h *Handler) export(c *gin.Context) {
	p, w, ok := h.window(c)
	if !ok {
		return
	}
	format, err := ParseFormat(p.Format)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	// Render fully before writing so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), session.FromGin(c), w, format, &buf); err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, FileName(format, h.service.Now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// FileName is the download name of an export produced on now's date.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("analytics-report-%s.%s", now.Format(listing.DateLayout), f)
}
