package hr

import (
	"context"
	"errors"
	"testing"

	"spacerh.dev/internal/auth"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewInMemory())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, svc *Service, email string, role Role) User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), NewUser{
		FirstName: "Teste",
		LastName:  "Silva",
		CPF:       cpfForEmail(email),
		Email:     email,
		Password:  "Valida#123",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

// cpfForEmail derives a distinct 11-digit string per seed account.
func cpfForEmail(email string) string {
	sum := 0
	for _, r := range email {
		sum += int(r)
	}
	digits := []byte("00000000000")
	for i := range digits {
		digits[i] = byte('0' + (sum+i*7)%10)
	}
	return string(digits)
}

func seedCompany(t *testing.T, svc *Service, name, taxID string) Company {
	t.Helper()
	company, err := svc.CreateCompany(context.Background(), 1, NewCompany{
		Name:  name,
		TaxID: taxID,
	})
	if err != nil {
		t.Fatalf("seed company %s: %v", name, err)
	}
	return company
}

func TestCreateUserValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		nu   NewUser
	}{
		{"missing name", NewUser{LastName: "Silva", CPF: "12345678901", Email: "a@b.c", Password: "Valida#123", Role: RoleAdmin}},
		{"bad email", NewUser{FirstName: "A", LastName: "B", CPF: "12345678901", Email: "not-an-email", Password: "Valida#123", Role: RoleAdmin}},
		{"bad cpf", NewUser{FirstName: "A", LastName: "B", CPF: "123", Email: "a@b.c", Password: "Valida#123", Role: RoleAdmin}},
		{"bad role", NewUser{FirstName: "A", LastName: "B", CPF: "12345678901", Email: "a@b.c", Password: "Valida#123", Role: "gerente"}},
		{"weak password", NewUser{FirstName: "A", LastName: "B", CPF: "12345678901", Email: "a@b.c", Password: "fraca", Role: RoleAdmin}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateUser(ctx, tc.nu); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestCreateUserNormalizesAndHashes(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.CreateUser(context.Background(), NewUser{
		FirstName: "Maria",
		LastName:  "Souza",
		CPF:       "123.456.789-01",
		Email:     "  Maria@Space.DEV ",
		Password:  "Valida#123",
		Role:      RoleLider,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "maria@space.dev" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.CPF != "12345678901" {
		t.Fatalf("cpf not normalized: %q", user.CPF)
	}
	if user.PasswordHash == "Valida#123" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if !user.IsActive {
		t.Fatal("new users start active")
	}
}

func TestDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(t)
	seedUser(t, svc, "dup@space.dev", RoleAdmin)

	_, err := svc.CreateUser(context.Background(), NewUser{
		FirstName: "Outro",
		LastName:  "Silva",
		CPF:       "99999999999",
		Email:     "dup@space.dev",
		Password:  "Valida#123",
		Role:      RoleContratado,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, "login@space.dev", RoleAdmin)

	if _, err := svc.Authenticate(ctx, "login@space.dev", "Valida#123"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "login@space.dev", "errada"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ninguem@space.dev", "Valida#123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "inativo@space.dev", RoleContratado)

	inactive := false
	if _, err := svc.UpdateUser(ctx, user.ID, UserUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "inativo@space.dev", "Valida#123"); !errors.Is(err, auth.ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
}

func TestCompanyValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCompany(ctx, 1, NewCompany{Name: "", TaxID: "12345678000190"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := svc.CreateCompany(ctx, 1, NewCompany{Name: "Acme", TaxID: "123"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short tax id, got %v", err)
	}

	company, err := svc.CreateCompany(ctx, 1, NewCompany{Name: "Acme", TaxID: "12.345.678/0001-90"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	if company.TaxID != "12345678000190" {
		t.Fatalf("tax id not normalized: %q", company.TaxID)
	}

	if _, err := svc.CreateCompany(ctx, 1, NewCompany{Name: "Clone", TaxID: "12345678000190"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate tax id, got %v", err)
	}
}

func TestRequestLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	company := seedCompany(t, svc, "Acme", "12345678000190")

	req, err := svc.CreateRequest(ctx, 1, NewRequest{
		CompanyID:   company.ID,
		RequestDate: "2026-03-10",
		Shifts: []NewShift{
			{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 150, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if req.Status != RequestStatusPending {
		t.Fatalf("new requests start pending, got %q", req.Status)
	}
	if len(req.Shifts) != 1 || req.Shifts[0].ID == 0 {
		t.Fatalf("shifts not persisted: %+v", req.Shifts)
	}
	if req.Company == nil || req.Company.Name != "Acme" {
		t.Fatal("request not hydrated with company")
	}

	confirmed, err := svc.UpdateRequestStatus(ctx, req.ID, "confirmada")
	if err != nil {
		t.Fatalf("confirm request: %v", err)
	}
	if confirmed.Status != RequestStatusConfirmed {
		t.Fatalf("unexpected status: %q", confirmed.Status)
	}

	if _, err := svc.UpdateRequestStatus(ctx, req.ID, "APROVADA"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}

	if err := svc.DeleteRequest(ctx, req.ID); err != nil {
		t.Fatalf("delete request: %v", err)
	}
	if _, err := svc.GetRequest(ctx, req.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	company := seedCompany(t, svc, "Acme", "12345678000190")

	cases := []struct {
		name string
		nr   NewRequest
	}{
		{"bad date", NewRequest{CompanyID: company.ID, RequestDate: "10/03/2026", Shifts: []NewShift{{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 1, Quantity: 1}}}},
		{"no shifts", NewRequest{CompanyID: company.ID, RequestDate: "2026-03-10"}},
		{"bad time", NewRequest{CompanyID: company.ID, RequestDate: "2026-03-10", Shifts: []NewShift{{StartTime: "8h", EndTime: "16:00", PaymentAmount: 1, Quantity: 1}}}},
		{"zero amount", NewRequest{CompanyID: company.ID, RequestDate: "2026-03-10", Shifts: []NewShift{{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 0, Quantity: 1}}}},
		{"bad discount", NewRequest{CompanyID: company.ID, RequestDate: "2026-03-10", Shifts: []NewShift{{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 1, Quantity: 1, HasDiscount: true, DiscountPercentage: 120}}}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateRequest(ctx, 1, tc.nr); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	if _, err := svc.CreateRequest(ctx, 1, NewRequest{
		CompanyID:   999,
		RequestDate: "2026-03-10",
		Shifts:      []NewShift{{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 1, Quantity: 1}},
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown company, got %v", err)
	}
}

func TestAssignmentRules(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	company := seedCompany(t, svc, "Acme", "12345678000190")
	worker := seedUser(t, svc, "w1@space.dev", RoleContratado)
	other := seedUser(t, svc, "w2@space.dev", RoleContratado)
	third := seedUser(t, svc, "w3@space.dev", RoleContratado)

	req, err := svc.CreateRequest(ctx, 1, NewRequest{
		CompanyID:   company.ID,
		RequestDate: "2026-03-10",
		Shifts:      []NewShift{{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 150, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	shiftID := req.Shifts[0].ID

	asg, err := svc.AssignEmployee(ctx, shiftID, worker.ID)
	if err != nil {
		t.Fatalf("assign employee: %v", err)
	}
	if asg.Status != AssignmentStatusAssigned {
		t.Fatalf("unexpected assignment status: %q", asg.Status)
	}
	if asg.Employee == nil || asg.Employee.ID != worker.ID {
		t.Fatal("assignment not hydrated with employee")
	}

	// Same employee twice on one shift.
	if _, err := svc.AssignEmployee(ctx, shiftID, worker.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate assignment, got %v", err)
	}

	// Fill remaining slot, then overflow.
	if _, err := svc.AssignEmployee(ctx, shiftID, other.ID); err != nil {
		t.Fatalf("assign second employee: %v", err)
	}
	if _, err := svc.AssignEmployee(ctx, shiftID, third.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for full shift, got %v", err)
	}

	// Attendance transitions.
	updated, err := svc.UpdateAssignmentStatus(ctx, asg.ID, "presente")
	if err != nil {
		t.Fatalf("update assignment status: %v", err)
	}
	if updated.Status != AssignmentStatusPresent {
		t.Fatalf("unexpected status: %q", updated.Status)
	}
	if _, err := svc.UpdateAssignmentStatus(ctx, asg.ID, "ATRASADO"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}

	if err := svc.RemoveAssignment(ctx, asg.ID); err != nil {
		t.Fatalf("remove assignment: %v", err)
	}
	if err := svc.RemoveAssignment(ctx, asg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for removed assignment, got %v", err)
	}
}

func TestInactiveEmployeeCannotBeAssigned(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	company := seedCompany(t, svc, "Acme", "12345678000190")
	worker := seedUser(t, svc, "w1@space.dev", RoleContratado)

	inactive := false
	if _, err := svc.UpdateUser(ctx, worker.ID, UserUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	req, err := svc.CreateRequest(ctx, 1, NewRequest{
		CompanyID:   company.ID,
		RequestDate: "2026-03-10",
		Shifts:      []NewShift{{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 150, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := svc.AssignEmployee(ctx, req.Shifts[0].ID, worker.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
