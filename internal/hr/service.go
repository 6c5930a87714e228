package hr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spacerh.dev/internal/auth"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// NewUser holds the fields required to open a staff account.
type NewUser struct {
	FirstName string
	LastName  string
	CPF       string
	Email     string
	Password  string
	Role      Role
}

// NewCompany holds the fields required to register a client company.
type NewCompany struct {
	Name          string
	TaxID         string
	Phone         string
	Email         string
	ContactPerson string
}

// NewShift describes one slot of a new daily request.
type NewShift struct {
	StartTime          string
	EndTime            string
	PaymentAmount      float64
	Quantity           int
	HasDiscount        bool
	DiscountPercentage float64
}

// NewRequest describes a daily staffing order.
type NewRequest struct {
	CompanyID   int
	RequestDate string
	Notes       string
	Shifts      []NewShift
}

// Service validates input and applies domain rules on top of a Store.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("hr store is required")
	}
	return &Service{store: store}, nil
}

// --- users ---

func (s *Service) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	nu.FirstName = strings.TrimSpace(nu.FirstName)
	nu.LastName = strings.TrimSpace(nu.LastName)
	if nu.FirstName == "" || nu.LastName == "" {
		return User{}, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	email, err := normalizeEmail(nu.Email)
	if err != nil {
		return User{}, err
	}
	cpf, err := normalizeCPF(nu.CPF)
	if err != nil {
		return User{}, err
	}
	if !nu.Role.Valid() {
		return User{}, fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, nu.Role)
	}
	if err := auth.ValidatePasswordStrength(nu.Password); err != nil {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	hash, err := auth.HashPassword(nu.Password)
	if err != nil {
		return User{}, err
	}
	return s.store.Users().Create(ctx, User{
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		CPF:          cpf,
		Email:        email,
		PasswordHash: hash,
		Role:         nu.Role,
		IsActive:     true,
	})
}

func (s *Service) GetUser(ctx context.Context, id int) (User, error) {
	if id <= 0 {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.Users().GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	return s.store.Users().GetByEmail(ctx, email)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.Users().List(ctx)
}

func (s *Service) UpdateUser(ctx context.Context, id int, upd UserUpdate) (User, error) {
	if id <= 0 {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if upd.FirstName != nil {
		trimmed := strings.TrimSpace(*upd.FirstName)
		if trimmed == "" {
			return User{}, fmt.Errorf("%w: first name is required", ErrInvalidInput)
		}
		upd.FirstName = &trimmed
	}
	if upd.LastName != nil {
		trimmed := strings.TrimSpace(*upd.LastName)
		if trimmed == "" {
			return User{}, fmt.Errorf("%w: last name is required", ErrInvalidInput)
		}
		upd.LastName = &trimmed
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return User{}, err
		}
		upd.Email = &email
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return User{}, fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, *upd.Role)
	}
	if upd.Password != nil {
		if err := auth.ValidatePasswordStrength(*upd.Password); err != nil {
			return User{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return User{}, err
		}
		upd.Password = &hash
	}
	return s.store.Users().Update(ctx, id, upd)
}

// Authenticate checks credentials against the stored hash. It returns the
// user on success; credential failures are indistinguishable from an
// unknown account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, auth.ErrInvalidCredentials
	}
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, auth.ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return User{}, auth.ErrInvalidCredentials
		}
		return User{}, err
	}
	if !user.IsActive {
		return User{}, auth.ErrInactiveUser
	}
	return user, nil
}

// --- companies ---

func (s *Service) CreateCompany(ctx context.Context, actorID int, nc NewCompany) (Company, error) {
	nc.Name = strings.TrimSpace(nc.Name)
	if nc.Name == "" {
		return Company{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	taxID := digitsOnly(nc.TaxID)
	if len(taxID) != 14 {
		return Company{}, fmt.Errorf("%w: tax id must contain 14 digits", ErrInvalidInput)
	}
	return s.store.Companies().Create(ctx, Company{
		Name:          nc.Name,
		TaxID:         taxID,
		Phone:         strings.TrimSpace(nc.Phone),
		Email:         strings.TrimSpace(strings.ToLower(nc.Email)),
		ContactPerson: strings.TrimSpace(nc.ContactPerson),
		IsActive:      true,
		CreatedBy:     actorID,
		UpdatedBy:     actorID,
	})
}

func (s *Service) GetCompany(ctx context.Context, id int) (Company, error) {
	if id <= 0 {
		return Company{}, fmt.Errorf("%w: company id is required", ErrInvalidInput)
	}
	return s.store.Companies().GetByID(ctx, id)
}

func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.store.Companies().List(ctx)
}

func (s *Service) UpdateCompany(ctx context.Context, id, actorID int, upd CompanyUpdate) (Company, error) {
	if id <= 0 {
		return Company{}, fmt.Errorf("%w: company id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return Company{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
		}
		upd.Name = &trimmed
	}
	if upd.TaxID != nil {
		taxID := digitsOnly(*upd.TaxID)
		if len(taxID) != 14 {
			return Company{}, fmt.Errorf("%w: tax id must contain 14 digits", ErrInvalidInput)
		}
		upd.TaxID = &taxID
	}
	upd.UpdatedBy = actorID
	return s.store.Companies().Update(ctx, id, upd)
}

// --- daily requests ---

func (s *Service) CreateRequest(ctx context.Context, actorID int, nr NewRequest) (DailyRequest, error) {
	if nr.CompanyID <= 0 {
		return DailyRequest{}, fmt.Errorf("%w: company id is required", ErrInvalidInput)
	}
	if _, err := time.Parse(dateLayout, nr.RequestDate); err != nil {
		return DailyRequest{}, fmt.Errorf("%w: request_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if len(nr.Shifts) == 0 {
		return DailyRequest{}, fmt.Errorf("%w: at least one shift is required", ErrInvalidInput)
	}

	shifts := make([]WorkShift, 0, len(nr.Shifts))
	for i, ns := range nr.Shifts {
		if _, err := time.Parse(timeLayout, ns.StartTime); err != nil {
			return DailyRequest{}, fmt.Errorf("%w: shift %d start_time must be HH:MM", ErrInvalidInput, i+1)
		}
		if _, err := time.Parse(timeLayout, ns.EndTime); err != nil {
			return DailyRequest{}, fmt.Errorf("%w: shift %d end_time must be HH:MM", ErrInvalidInput, i+1)
		}
		if ns.PaymentAmount <= 0 {
			return DailyRequest{}, fmt.Errorf("%w: shift %d payment_amount must be > 0", ErrInvalidInput, i+1)
		}
		if ns.Quantity <= 0 {
			return DailyRequest{}, fmt.Errorf("%w: shift %d quantity must be > 0", ErrInvalidInput, i+1)
		}
		if ns.HasDiscount && (ns.DiscountPercentage <= 0 || ns.DiscountPercentage > 100) {
			return DailyRequest{}, fmt.Errorf("%w: shift %d discount_percentage must be within (0, 100]", ErrInvalidInput, i+1)
		}
		if !ns.HasDiscount {
			ns.DiscountPercentage = 0
		}
		shifts = append(shifts, WorkShift{
			StartTime:          ns.StartTime,
			EndTime:            ns.EndTime,
			PaymentAmount:      ns.PaymentAmount,
			Quantity:           ns.Quantity,
			HasDiscount:        ns.HasDiscount,
			DiscountPercentage: ns.DiscountPercentage,
		})
	}

	return s.store.Requests().Create(ctx, DailyRequest{
		CompanyID:   nr.CompanyID,
		RequestDate: nr.RequestDate,
		Status:      RequestStatusPending,
		Notes:       strings.TrimSpace(nr.Notes),
		CreatedBy:   actorID,
		Shifts:      shifts,
	})
}

func (s *Service) GetRequest(ctx context.Context, id int) (DailyRequest, error) {
	if id <= 0 {
		return DailyRequest{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	return s.store.Requests().GetByID(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, filter RequestFilter) ([]DailyRequest, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.store.Requests().List(ctx, filter)
}

func (s *Service) UpdateRequestStatus(ctx context.Context, id int, status string) (DailyRequest, error) {
	if id <= 0 {
		return DailyRequest{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	status = strings.TrimSpace(strings.ToUpper(status))
	switch status {
	case RequestStatusPending, RequestStatusConfirmed, RequestStatusCancelled:
	default:
		return DailyRequest{}, fmt.Errorf("%w: unsupported request status %q", ErrInvalidInput, status)
	}
	return s.store.Requests().UpdateStatus(ctx, id, status)
}

func (s *Service) DeleteRequest(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	return s.store.Requests().Delete(ctx, id)
}

// --- assignments ---

func (s *Service) AssignEmployee(ctx context.Context, shiftID, employeeID int) (ShiftAssignment, error) {
	if shiftID <= 0 || employeeID <= 0 {
		return ShiftAssignment{}, fmt.Errorf("%w: shift_id and employee_id are required", ErrInvalidInput)
	}
	employee, err := s.store.Users().GetByID(ctx, employeeID)
	if err != nil {
		return ShiftAssignment{}, err
	}
	if !employee.IsActive {
		return ShiftAssignment{}, fmt.Errorf("%w: employee is inactive", ErrInvalidInput)
	}
	return s.store.Requests().CreateAssignment(ctx, ShiftAssignment{
		ShiftID:    shiftID,
		EmployeeID: employeeID,
		Status:     AssignmentStatusAssigned,
	})
}

func (s *Service) UpdateAssignmentStatus(ctx context.Context, id int, status string) (ShiftAssignment, error) {
	if id <= 0 {
		return ShiftAssignment{}, fmt.Errorf("%w: assignment id is required", ErrInvalidInput)
	}
	status = strings.TrimSpace(strings.ToUpper(status))
	switch status {
	case AssignmentStatusAssigned, AssignmentStatusPresent, AssignmentStatusAbsent, AssignmentStatusCancelled:
	default:
		return ShiftAssignment{}, fmt.Errorf("%w: unsupported assignment status %q", ErrInvalidInput, status)
	}
	return s.store.Requests().UpdateAssignmentStatus(ctx, id, status)
}

func (s *Service) RemoveAssignment(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: assignment id is required", ErrInvalidInput)
	}
	return s.store.Requests().DeleteAssignment(ctx, id)
}

// --- helpers ---

func validateFilter(filter RequestFilter) error {
	if filter.From != "" {
		if _, err := time.Parse(dateLayout, filter.From); err != nil {
			return fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	if filter.To != "" {
		if _, err := time.Parse(dateLayout, filter.To); err != nil {
			return fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	if filter.Status != "" {
		switch filter.Status {
		case RequestStatusPending, RequestStatusConfirmed, RequestStatusCancelled:
		default:
			return fmt.Errorf("%w: unsupported request status %q", ErrInvalidInput, filter.Status)
		}
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return email, nil
}

func normalizeCPF(cpf string) (string, error) {
	digits := digitsOnly(cpf)
	if len(digits) != 11 {
		return "", fmt.Errorf("%w: cpf must contain 11 digits", ErrInvalidInput)
	}
	return digits, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
