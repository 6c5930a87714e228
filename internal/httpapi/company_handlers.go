package httpapi

import (
	"net/http"
	"strconv"

	"spacerh.dev/internal/hr"
)

type createCompanyRequest struct {
	Name          string `json:"name"`
	TaxID         string `json:"tax_id"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	ContactPerson string `json:"contact_person"`
}

type updateCompanyRequest struct {
	Name          *string `json:"name"`
	TaxID         *string `json:"tax_id"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	ContactPerson *string `json:"contact_person"`
	IsActive      *bool   `json:"is_active"`
}

func (a *API) handleCompaniesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r); !ok {
			return
		}
		companies, err := a.hr.ListCompanies(r.Context())
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, companies)
	case http.MethodPost:
		principal, ok := a.requireRole(w, r, "admin")
		if !ok {
			return
		}
		var req createCompanyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		company, err := a.hr.CreateCompany(r.Context(), principal.UserID, hr.NewCompany{
			Name:          req.Name,
			TaxID:         req.TaxID,
			Phone:         req.Phone,
			Email:         req.Email,
			ContactPerson: req.ContactPerson,
		})
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "company.create", "company", strconv.Itoa(company.ID), map[string]string{
			"name": company.Name,
		})
		w.Header().Set("Location", "/companies/"+strconv.Itoa(company.ID))
		writeJSON(w, http.StatusCreated, company)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCompanyResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/companies/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r); !ok {
			return
		}
		company, err := a.hr.GetCompany(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, company)
	case http.MethodPut:
		principal, ok := a.requireRole(w, r, "admin")
		if !ok {
			return
		}
		var req updateCompanyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		company, err := a.hr.UpdateCompany(r.Context(), id, principal.UserID, hr.CompanyUpdate{
			Name:          req.Name,
			TaxID:         req.TaxID,
			Phone:         req.Phone,
			Email:         req.Email,
			ContactPerson: req.ContactPerson,
			IsActive:      req.IsActive,
		})
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "company.update", "company", strconv.Itoa(company.ID), nil)
		writeJSON(w, http.StatusOK, company)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}
