package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"spacerh.dev/internal/hr"
	"spacerh.dev/internal/stream"
)

type createShiftRequest struct {
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	PaymentAmount      float64 `json:"payment_amount"`
	Quantity           int     `json:"quantity"`
	HasDiscount        bool    `json:"has_discount"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

type createRequestRequest struct {
	CompanyID   int                  `json:"company_id"`
	RequestDate string               `json:"request_date"`
	Notes       string               `json:"notes"`
	Shifts      []createShiftRequest `json:"shifts"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type createAssignmentRequest struct {
	ShiftID    int `json:"shift_id"`
	EmployeeID int `json:"employee_id"`
}

func (a *API) handleRequestsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
			return
		}
		filter, err := filterFromQuery(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		requests, err := a.hr.ListRequests(r.Context(), filter)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
	case http.MethodPost:
		principal, ok := a.requireRole(w, r, "admin", "lider")
		if !ok {
			return
		}
		var req createRequestRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		shifts := make([]hr.NewShift, 0, len(req.Shifts))
		for _, shift := range req.Shifts {
			shifts = append(shifts, hr.NewShift{
				StartTime:          shift.StartTime,
				EndTime:            shift.EndTime,
				PaymentAmount:      shift.PaymentAmount,
				Quantity:           shift.Quantity,
				HasDiscount:        shift.HasDiscount,
				DiscountPercentage: shift.DiscountPercentage,
			})
		}
		created, err := a.hr.CreateRequest(r.Context(), principal.UserID, hr.NewRequest{
			CompanyID:   req.CompanyID,
			RequestDate: req.RequestDate,
			Notes:       req.Notes,
			Shifts:      shifts,
		})
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "request.create", "daily_request", strconv.Itoa(created.ID), map[string]string{
			"company_id":   strconv.Itoa(created.CompanyID),
			"request_date": created.RequestDate,
		})
		a.publish(stream.Event{
			Type:        stream.EventRequestCreated,
			RequestID:   created.ID,
			CompanyName: companyNameOf(created),
			Status:      created.Status,
		})
		w.Header().Set("Location", "/daily-requests/"+strconv.Itoa(created.ID))
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleRequestResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/daily-requests/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id, err := strconv.Atoi(parts[0])
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch {
	case len(parts) == 1:
		a.handleRequestByID(w, r, id)
	case len(parts) == 2 && parts[1] == "status":
		a.handleRequestStatus(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleRequestByID(w http.ResponseWriter, r *http.Request, id int) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
			return
		}
		req, err := a.hr.GetRequest(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	case http.MethodDelete:
		if _, ok := a.requireRole(w, r, "admin"); !ok {
			return
		}
		if err := a.hr.DeleteRequest(r.Context(), id); err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "request.delete", "daily_request", strconv.Itoa(id), nil)
		a.publish(stream.Event{Type: stream.EventRequestDeleted, RequestID: id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) handleRequestStatus(w http.ResponseWriter, r *http.Request, id int) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.hr.UpdateRequestStatus(r.Context(), id, req.Status)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	a.audit(r.Context(), "request.status", "daily_request", strconv.Itoa(id), map[string]string{
		"status": updated.Status,
	})
	a.publish(stream.Event{
		Type:        stream.EventRequestStatus,
		RequestID:   updated.ID,
		CompanyName: companyNameOf(updated),
		Status:      updated.Status,
	})
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleAssignmentsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
		return
	}
	var req createAssignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	asg, err := a.hr.AssignEmployee(r.Context(), req.ShiftID, req.EmployeeID)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	a.audit(r.Context(), "assignment.create", "shift_assignment", strconv.Itoa(asg.ID), map[string]string{
		"shift_id":    strconv.Itoa(asg.ShiftID),
		"employee_id": strconv.Itoa(asg.EmployeeID),
	})
	a.publish(stream.Event{Type: stream.EventAssignmentMade, AssignmentID: asg.ID, Status: asg.Status})
	writeJSON(w, http.StatusCreated, asg)
}

func (a *API) handleAssignmentResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/daily-requests/assignments/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id, err := strconv.Atoi(parts[0])
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
			return
		}
		if err := a.hr.RemoveAssignment(r.Context(), id); err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "assignment.delete", "shift_assignment", strconv.Itoa(id), nil)
		a.publish(stream.Event{Type: stream.EventAssignmentGone, AssignmentID: id})
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 1:
		methodNotAllowed(w, r, http.MethodDelete)
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
			return
		}
		var req updateStatusRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		asg, err := a.hr.UpdateAssignmentStatus(r.Context(), id, req.Status)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "assignment.status", "shift_assignment", strconv.Itoa(id), map[string]string{
			"status": asg.Status,
		})
		a.publish(stream.Event{Type: stream.EventAssignmentStatus, AssignmentID: asg.ID, Status: asg.Status})
		writeJSON(w, http.StatusOK, asg)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRole(w, r); !ok {
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := a.hr.DashboardStats(r.Context(), filter)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleAttendanceStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRole(w, r); !ok {
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := a.hr.AttendanceStats(r.Context(), filter)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handlePaymentsReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
		return
	}
	report, err := a.hr.PaymentsReport(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleEvents serves staffing changes over Server-Sent Events.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
		return
	}
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "event stream disabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.stream.Subscribe(ctx)

	// Initial comment establishes the stream before the first event.
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

func filterFromQuery(r *http.Request) (hr.RequestFilter, error) {
	q := r.URL.Query()
	filter := hr.RequestFilter{
		From:   strings.TrimSpace(q.Get("from")),
		To:     strings.TrimSpace(q.Get("to")),
		Status: strings.TrimSpace(strings.ToUpper(q.Get("status"))),
	}
	if raw := strings.TrimSpace(q.Get("company_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return hr.RequestFilter{}, errors.New("company_id must be a positive integer")
		}
		filter.CompanyID = id
	}
	return filter, nil
}

func companyNameOf(req hr.DailyRequest) string {
	if req.Company != nil {
		return req.Company.Name
	}
	return ""
}
