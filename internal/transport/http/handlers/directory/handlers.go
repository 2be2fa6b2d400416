package directoryhandler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"nomina/internal/auth"
	"nomina/internal/domain/directory"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
}

func NewHandler(service *directory.Service) *Handler {
	return &Handler{Service: service}
}

type employeePayload struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Salary     string `json:"salary"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Post("/import", h.handleImportEmployees)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.handleGetEmployee)
			r.Put("/", h.handleUpdateEmployee)
			r.Delete("/", h.handleDeleteEmployee)
		})
	})
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	p := shared.ParsePagination(r, 50, 200)
	employees, err := h.Service.ListPage(r.Context(), p.Limit, p.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	if employees == nil {
		employees = []directory.Employee{}
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, directory.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	emp, ok := h.validatePayload(w, r, payload)
	if !ok {
		return
	}

	id, err := h.Service.Create(r.Context(), emp)
	if err != nil {
		h.failMutation(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	created, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	emp, ok := h.validatePayload(w, r, payload)
	if !ok {
		return
	}

	if err := h.Service.Update(r.Context(), id, emp); err != nil {
		if errors.Is(err, directory.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		h.failMutation(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	updated, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, directory.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// handleImportEmployees loads a roster from CSV. The whole file is
// validated before the first insert so a bad row rejects the import.
func (h *Handler) handleImportEmployees(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unable to read csv payload", middleware.GetRequestID(r.Context()))
		return
	}

	reader := csv.NewReader(bytes.NewReader(body))
	headers, err := reader.Read()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid csv payload", middleware.GetRequestID(r.Context()))
		return
	}

	index := map[string]int{}
	for i, name := range headers {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(row []string, key string) string {
		if idx, ok := index[key]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	v := shared.NewValidator()
	if _, ok := index["name"]; !ok {
		v.Add("name", "missing csv column")
	}
	if _, ok := index["salary"]; !ok {
		v.Add("salary", "missing csv column")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	var imported []directory.Employee
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			v.Add(fmt.Sprintf("row %d", rowNum), "malformed csv row")
			continue
		}

		name := get(row, "name")
		if name == "" {
			v.Add(fmt.Sprintf("row %d: name", rowNum), "name is required")
		}
		salary, ok := v.Amount(fmt.Sprintf("row %d: salary", rowNum), get(row, "salary"))
		if !ok {
			continue
		}
		imported = append(imported, directory.Employee{
			Name:       name,
			Department: get(row, "department"),
			Email:      get(row, "email"),
			Salary:     salary,
		})
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	for _, emp := range imported {
		if _, err := h.Service.Create(r.Context(), emp); err != nil {
			api.Fail(w, http.StatusInternalServerError, "employee_import_failed", "failed to import employees", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, map[string]any{"imported": len(imported)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) validatePayload(w http.ResponseWriter, r *http.Request, payload employeePayload) (directory.Employee, bool) {
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	salary, _ := v.Amount("salary", payload.Salary)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return directory.Employee{}, false
	}
	return directory.Employee{
		Name:       payload.Name,
		Department: payload.Department,
		Email:      payload.Email,
		Salary:     salary,
	}, true
}

func (h *Handler) failMutation(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	if errors.Is(err, directory.ErrNameRequired) || errors.Is(err, directory.ErrNegativeSalary) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, code, message, middleware.GetRequestID(r.Context()))
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
