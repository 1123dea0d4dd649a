package api

import (
	"errors"
	"time"

	"porthound/config"
	"porthound/scanner"
	"porthound/service"
	"porthound/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScanHandler struct {
	resultService *service.ResultService
}

func NewScanHandler() *ScanHandler {
	return &ScanHandler{
		resultService: service.NewResultService(),
	}
}

// Run executes a scan synchronously and returns the full report.
// Intended for small target sets; large scans should go through the
// task queue instead.
// POST /api/scan/run
func (h *ScanHandler) Run(c *gin.Context) {
	var req struct {
		Hosts         string `json:"hosts" binding:"required"`
		Ports         string `json:"ports"`
		ServiceDetect bool   `json:"service_detect"`
		Concurrency   int    `json:"concurrency"`
		TimeoutMS     int    `json:"timeout_ms"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	cfg := config.GetConfig()
	if req.Ports == "" {
		req.Ports = cfg.Scanner.DefaultPorts
	}

	opts := scanner.Options{
		Concurrency:   req.Concurrency,
		ServiceDetect: req.ServiceDetect,
		BannerTimeout: time.Duration(cfg.Scanner.BannerTimeoutMS) * time.Millisecond,
	}
	if req.TimeoutMS > 0 {
		opts.Timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	} else {
		opts.Timeout = time.Duration(cfg.Scanner.TimeoutMS) * time.Millisecond
	}

	engine := scanner.NewEngine(opts, scanner.NewIdentifier(config.GetServiceDB()))

	startedAt := time.Now()
	report, err := engine.Scan(c.Request.Context(), req.Hosts, req.Ports)
	if err != nil {
		var specErr *scanner.InvalidSpecError
		if errors.As(err, &specErr) {
			utils.BadRequest(c, specErr.Error())
			return
		}
		utils.InternalError(c, err.Error())
		return
	}

	doc, err := h.resultService.SaveReport(report, primitive.NilObjectID, startedAt, time.Now())
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	utils.Success(c, doc)
}

// GetReport retrieves a stored report by scan UUID
// GET /api/scan/reports/:scan_id
func (h *ScanHandler) GetReport(c *gin.Context) {
	doc, err := h.resultService.GetReportByScanID(c.Param("scan_id"))
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.Success(c, doc)
}

// ListReports lists stored reports
// GET /api/scan/reports
func (h *ScanHandler) ListReports(c *gin.Context) {
	page, size := parsePagination(c)

	docs, total, err := h.resultService.ListReports(page, size)
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	utils.SuccessWithPagination(c, docs, total, page, size)
}
