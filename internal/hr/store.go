package hr

import "context"

// UserUpdate carries optional field changes. Password must already be hashed.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Role      *Role
	IsActive  *bool
}

// CompanyUpdate carries optional field changes.
type CompanyUpdate struct {
	Name          *string
	TaxID         *string
	Phone         *string
	Email         *string
	ContactPerson *string
	IsActive      *bool
	UpdatedBy     int
}

// RequestFilter narrows daily request listings. Zero values mean "any".
type RequestFilter struct {
	From      string
	To        string
	CompanyID int
	Status    string
}

// Store aggregates persistence for the HR domain.
type Store interface {
	Users() UserStore
	Companies() CompanyStore
	Requests() RequestStore
}

// UserStore persists staff accounts.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByCPF(ctx context.Context, cpf string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int, upd UserUpdate) (User, error)
}

// CompanyStore persists client companies.
type CompanyStore interface {
	Create(ctx context.Context, company Company) (Company, error)
	GetByID(ctx context.Context, id int) (Company, error)
	GetByTaxID(ctx context.Context, taxID string) (Company, error)
	List(ctx context.Context) ([]Company, error)
	Update(ctx context.Context, id int, upd CompanyUpdate) (Company, error)
}

// RequestStore persists daily requests, shifts and assignments.
type RequestStore interface {
	Create(ctx context.Context, req DailyRequest) (DailyRequest, error)
	GetByID(ctx context.Context, id int) (DailyRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]DailyRequest, error)
	UpdateStatus(ctx context.Context, id int, status string) (DailyRequest, error)
	Delete(ctx context.Context, id int) error

	CreateAssignment(ctx context.Context, asg ShiftAssignment) (ShiftAssignment, error)
	GetAssignment(ctx context.Context, id int) (ShiftAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, id int, status string) (ShiftAssignment, error)
	DeleteAssignment(ctx context.Context, id int) error
}
