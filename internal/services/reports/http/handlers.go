// Package http exposes the trigger/status HTTP surface for store-health
// reports
package http

import (
	stdhttp "net/http"

	"storewatch/internal/modkit/httpkit"
	perr "storewatch/internal/platform/errors"
	rdom "storewatch/internal/services/reportwork/domain"
)

// triggerResponse is the body of POST /trigger_report
type triggerResponse struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// statusResponse is the body of GET /get_report
type statusResponse struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
	URL      string `json:"url,omitempty"`
}

type handlers struct {
	enq rdom.EnqueuePort
}

// Register mounts the report trigger and status routes on r
func Register(r httpkit.Router, enq rdom.EnqueuePort) {
	h := &handlers{enq: enq}

	r.Post("/trigger_report", httpkit.Handle(h.trigger))
	r.Get("/get_report", httpkit.Handle(func(req *stdhttp.Request) httpkit.Response {
		return h.getReport(req, req.URL.Query().Get("report_id"))
	}))
	r.Get("/get_report/{report_id}", httpkit.Handle(func(req *stdhttp.Request) httpkit.Response {
		return h.getReport(req, httpkit.Param(req, "report_id"))
	}))
}

// swagger:route POST /trigger_report Reports triggerReport
// @Summary Trigger store-health report generation
// @Tags Reports
// @Produce json
// @Success 202 type triggerResponse accepted
// @Router /trigger_report [post]
func (h *handlers) trigger(req *stdhttp.Request) httpkit.Response {
	reportID, err := h.enq.Trigger(req.Context())
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Response{
		Status: stdhttp.StatusAccepted,
		Body: triggerResponse{
			ReportID: reportID,
			Status:   string(rdom.StatusPending),
			Message:  "report generation started",
		},
		Header: stdhttp.Header{"Retry-After": []string{"60"}},
	}
}

// swagger:route GET /get_report Reports getReport
// @Summary Poll a report's status, with the download URL once complete
// @Tags Reports
// @Produce json
// @Success 200 type statusResponse ok
// @Router /get_report [get]
func (h *handlers) getReport(req *stdhttp.Request, reportID string) httpkit.Response {
	if reportID == "" {
		return httpkit.Error(perr.Newf(perr.ErrorCodeValidation, "report_id is required"))
	}

	rep, err := h.enq.GetStatus(req.Context(), reportID)
	if err != nil {
		return httpkit.Error(perr.NotFoundf("report %q not found", reportID))
	}

	body := statusResponse{ReportID: rep.ReportID, Status: displayStatus(rep.Status), URL: rep.URL}

	resp := httpkit.Response{Status: stdhttp.StatusOK, Body: body}
	if rep.Status == rdom.StatusPending || rep.Status == rdom.StatusRunning {
		resp.Header = stdhttp.Header{"Retry-After": []string{"15"}}
	}
	return resp
}

// displayStatus maps the internal job status to the public status string;
// Pending and Running both read as "Running" externally
func displayStatus(s rdom.Status) string {
	switch s {
	case rdom.StatusPending, rdom.StatusRunning:
		return "Running"
	case rdom.StatusComplete:
		return "Complete"
	case rdom.StatusFailed:
		return "Failed"
	default:
		return string(s)
	}
}
