package hr

import (
	"errors"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleLider      Role = "lider"
	RoleContratado Role = "contratado"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLider, RoleContratado:
		return true
	}
	return false
}

// Daily request lifecycle statuses.
const (
	RequestStatusPending   = "PENDIENTE"
	RequestStatusConfirmed = "CONFIRMADA"
	RequestStatusCancelled = "CANCELADA"
)

// Shift assignment statuses.
const (
	AssignmentStatusAssigned  = "ASIGNADO"
	AssignmentStatusPresent   = "PRESENTE"
	AssignmentStatusAbsent    = "FALTOU"
	AssignmentStatusCancelled = "CANCELADO"
)

var (
	ErrNotFound     = errors.New("hr: not found")
	ErrInvalidInput = errors.New("hr: invalid input")
	ErrConflict     = errors.New("hr: resource conflict")
)

// User is a staff account. The password hash never serializes.
type User struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CPF          string    `json:"cpf"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Company is a client business that files daily staffing requests.
type Company struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	TaxID         string    `json:"tax_id"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedBy     int       `json:"created_by,omitempty"`
	UpdatedBy     int       `json:"updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WorkShift is one staffed time slot inside a daily request.
type WorkShift struct {
	ID                 int     `json:"id"`
	RequestID          int     `json:"request_id"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	PaymentAmount      float64 `json:"payment_amount"`
	Quantity           int     `json:"quantity"`
	HasDiscount        bool    `json:"has_discount"`
	DiscountPercentage float64 `json:"discount_percentage"`

	Assignments []ShiftAssignment `json:"assignments,omitempty"`
}

// ShiftAssignment links an employee to a shift.
type ShiftAssignment struct {
	ID         int       `json:"id"`
	ShiftID    int       `json:"shift_id"`
	EmployeeID int       `json:"employee_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Employee *User `json:"employee,omitempty"`
}

// DailyRequest is a company's staffing order for one date.
type DailyRequest struct {
	ID          int       `json:"id"`
	CompanyID   int       `json:"company_id"`
	RequestDate string    `json:"request_date"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedBy   int       `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Company *Company    `json:"company,omitempty"`
	Shifts  []WorkShift `json:"shifts"`
}

// CompanyRequestCount is one dashboard datapoint.
type CompanyRequestCount struct {
	CompanyName  string `json:"company_name"`
	RequestCount int    `json:"request_count"`
}

// AttendanceCount is one attendance datapoint grouped by company and status.
type AttendanceCount struct {
	CompanyName string `json:"company_name"`
	Status      string `json:"status"`
	Count       int    `json:"count"`
}

// PaymentsReportRow aggregates shift payments per company and date.
type PaymentsReportRow struct {
	CompanyName string  `json:"company_name"`
	RequestDate string  `json:"request_date"`
	Gross       float64 `json:"gross"`
	Discount    float64 `json:"discount"`
	Net         float64 `json:"net"`
}

// PaymentsReport is the full payment summary for a period.
type PaymentsReport struct {
	From  string              `json:"from,omitempty"`
	To    string              `json:"to,omitempty"`
	Rows  []PaymentsReportRow `json:"rows"`
	Total float64             `json:"total"`
}
