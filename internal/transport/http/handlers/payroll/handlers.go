package payrollhandler

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nomina/internal/auth"
	"nomina/internal/domain/directory"
	"nomina/internal/domain/payroll"
	"nomina/internal/platform/metrics"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Metrics *metrics.Collector
}

func NewHandler(service *payroll.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/run", h.handleRun)
		r.Get("/export/register", h.handleExportRegisterCSV)
		r.Get("/export/register.xlsx", h.handleExportRegisterXLSX)
		r.Route("/employees/{employeeID}", func(r chi.Router) {
			r.Get("/line", h.handleLine)
			r.Get("/payslip", h.handlePayslip)
			r.Post("/payslip/email", h.handleEmailPayslip)
		})
	})
}

// handleRun computes payroll for the current roster. Nothing is stored;
// every call recomputes from the employees table.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	run, err := h.Service.Run(r.Context())
	if err != nil {
		h.failCompute(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordPayrollRun()
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLine(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	line, err := h.Service.LineFor(r.Context(), id)
	if err != nil {
		h.failCompute(w, r, err)
		return
	}
	api.Success(w, line, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportRegisterCSV(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	run, err := h.Service.Run(r.Context())
	if err != nil {
		h.failCompute(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=payroll-register.csv")
	if err := payroll.WriteRegisterCSV(w, run); err != nil {
		log.Printf("register csv write failed: %v", err)
	}
}

func (h *Handler) handleExportRegisterXLSX(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	run, err := h.Service.Run(r.Context())
	if err != nil {
		h.failCompute(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := payroll.WriteRegisterXLSX(&buf, run); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render workbook", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=payroll-register.xlsx")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("register xlsx write failed: %v", err)
	}
}

// handlePayslip streams a PDF payslip for one employee. The optional
// ?period=YYYY-MM parameter only labels the document.
func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	period, err := shared.ParsePeriod(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	line, err := h.Service.LineFor(r.Context(), id)
	if err != nil {
		h.failCompute(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := payroll.WritePayslipPDF(&buf, line, period); err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%d-%s.pdf", id, period))
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("payslip write failed: %v", err)
	}
}

func (h *Handler) handleEmailPayslip(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	period, err := shared.ParsePeriod(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.EmailPayslip(r.Context(), id, period); err != nil {
		switch {
		case errors.Is(err, payroll.ErrMailerNotConfigured):
			api.Fail(w, http.StatusServiceUnavailable, "email_not_configured", "payslip email delivery is not configured", middleware.GetRequestID(r.Context()))
		case errors.Is(err, payroll.ErrNoEmailAddress):
			api.Fail(w, http.StatusUnprocessableEntity, "no_email_address", "employee has no email address", middleware.GetRequestID(r.Context()))
		case errors.Is(err, directory.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		default:
			log.Printf("payslip email failed: %v", err)
			api.Fail(w, http.StatusInternalServerError, "email_failed", "failed to send payslip", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, map[string]string{"status": "sent", "period": period}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failCompute(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, payroll.ErrNegativeSalary):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_salary", err.Error(), middleware.GetRequestID(r.Context()))
	default:
		log.Printf("payroll computation failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "failed to compute payroll", middleware.GetRequestID(r.Context()))
	}
}

func employeeIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "employeeID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}
