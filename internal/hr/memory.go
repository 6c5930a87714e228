package hr

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. It backs
// tests and DSN-less development runs; production uses the Postgres store.
type InMemory struct {
	mu sync.RWMutex

	users     map[int]*User
	companies map[int]*Company
	requests  map[int]*DailyRequest
	shifts    map[int]*WorkShift
	asgs      map[int]*ShiftAssignment

	userSeq    int
	companySeq int
	requestSeq int
	shiftSeq   int
	asgSeq     int
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:     make(map[int]*User),
		companies: make(map[int]*Company),
		requests:  make(map[int]*DailyRequest),
		shifts:    make(map[int]*WorkShift),
		asgs:      make(map[int]*ShiftAssignment),
	}
}

func (s *InMemory) Users() UserStore        { return (*memoryUsers)(s) }
func (s *InMemory) Companies() CompanyStore { return (*memoryCompanies)(s) }
func (s *InMemory) Requests() RequestStore  { return (*memoryRequests)(s) }

// --- users ---

type memoryUsers InMemory

func (s *memoryUsers) Create(ctx context.Context, user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return User{}, ErrConflict
		}
		if existing.CPF == user.CPF {
			return User{}, ErrConflict
		}
	}
	s.userSeq++
	now := time.Now().UTC()
	user.ID = s.userSeq
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := user
	s.users[user.ID] = &stored
	return user, nil
}

func (s *memoryUsers) GetByID(ctx context.Context, id int) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *user, nil
}

func (s *memoryUsers) GetByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return *user, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *memoryUsers) GetByCPF(ctx context.Context, cpf string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.CPF == cpf {
			return *user, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *memoryUsers) List(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryUsers) Update(ctx context.Context, id int, upd UserUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && strings.EqualFold(other.Email, *upd.Email) {
				return User{}, ErrConflict
			}
		}
		user.Email = *upd.Email
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Password != nil {
		user.PasswordHash = *upd.Password
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	user.UpdatedAt = time.Now().UTC()
	return *user, nil
}

// --- companies ---

type memoryCompanies InMemory

func (s *memoryCompanies) Create(ctx context.Context, company Company) (Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.companies {
		if existing.TaxID == company.TaxID {
			return Company{}, ErrConflict
		}
	}
	s.companySeq++
	now := time.Now().UTC()
	company.ID = s.companySeq
	company.CreatedAt = now
	company.UpdatedAt = now
	stored := company
	s.companies[company.ID] = &stored
	return company, nil
}

func (s *memoryCompanies) GetByID(ctx context.Context, id int) (Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	return *company, nil
}

func (s *memoryCompanies) GetByTaxID(ctx context.Context, taxID string) (Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, company := range s.companies {
		if company.TaxID == taxID {
			return *company, nil
		}
	}
	return Company{}, ErrNotFound
}

func (s *memoryCompanies) List(ctx context.Context) ([]Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Company, 0, len(s.companies))
	for _, company := range s.companies {
		out = append(out, *company)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryCompanies) Update(ctx context.Context, id int, upd CompanyUpdate) (Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.companies[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	if upd.TaxID != nil {
		for otherID, other := range s.companies {
			if otherID != id && other.TaxID == *upd.TaxID {
				return Company{}, ErrConflict
			}
		}
		company.TaxID = *upd.TaxID
	}
	if upd.Name != nil {
		company.Name = *upd.Name
	}
	if upd.Phone != nil {
		company.Phone = *upd.Phone
	}
	if upd.Email != nil {
		company.Email = *upd.Email
	}
	if upd.ContactPerson != nil {
		company.ContactPerson = *upd.ContactPerson
	}
	if upd.IsActive != nil {
		company.IsActive = *upd.IsActive
	}
	if upd.UpdatedBy != 0 {
		company.UpdatedBy = upd.UpdatedBy
	}
	company.UpdatedAt = time.Now().UTC()
	return *company, nil
}

// --- daily requests ---

type memoryRequests InMemory

func (s *memoryRequests) Create(ctx context.Context, req DailyRequest) (DailyRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[req.CompanyID]; !ok {
		return DailyRequest{}, ErrNotFound
	}

	s.requestSeq++
	now := time.Now().UTC()
	req.ID = s.requestSeq
	req.CreatedAt = now
	req.UpdatedAt = now

	shifts := req.Shifts
	req.Shifts = nil
	stored := req
	s.requests[req.ID] = &stored

	for i := range shifts {
		s.shiftSeq++
		shift := shifts[i]
		shift.ID = s.shiftSeq
		shift.RequestID = req.ID
		shift.Assignments = nil
		s.shifts[shift.ID] = &shift
	}
	return s.hydrateRequest(&stored), nil
}

func (s *memoryRequests) GetByID(ctx context.Context, id int) (DailyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return DailyRequest{}, ErrNotFound
	}
	return s.hydrateRequest(req), nil
}

func (s *memoryRequests) List(ctx context.Context, filter RequestFilter) ([]DailyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DailyRequest
	for _, req := range s.requests {
		if filter.CompanyID != 0 && req.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.From != "" && req.RequestDate < filter.From {
			continue
		}
		if filter.To != "" && req.RequestDate > filter.To {
			continue
		}
		out = append(out, s.hydrateRequest(req))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestDate != out[j].RequestDate {
			return out[i].RequestDate < out[j].RequestDate
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memoryRequests) UpdateStatus(ctx context.Context, id int, status string) (DailyRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return DailyRequest{}, ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()
	return s.hydrateRequest(req), nil
}

func (s *memoryRequests) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return ErrNotFound
	}
	for shiftID, shift := range s.shifts {
		if shift.RequestID != id {
			continue
		}
		for asgID, asg := range s.asgs {
			if asg.ShiftID == shiftID {
				delete(s.asgs, asgID)
			}
		}
		delete(s.shifts, shiftID)
	}
	delete(s.requests, id)
	return nil
}

func (s *memoryRequests) CreateAssignment(ctx context.Context, asg ShiftAssignment) (ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, ok := s.shifts[asg.ShiftID]
	if !ok {
		return ShiftAssignment{}, ErrNotFound
	}
	if _, ok := s.users[asg.EmployeeID]; !ok {
		return ShiftAssignment{}, ErrNotFound
	}
	active := 0
	for _, existing := range s.asgs {
		if existing.ShiftID != asg.ShiftID || existing.Status == AssignmentStatusCancelled {
			continue
		}
		if existing.EmployeeID == asg.EmployeeID {
			return ShiftAssignment{}, ErrConflict
		}
		active++
	}
	if active >= shift.Quantity {
		return ShiftAssignment{}, ErrConflict
	}

	s.asgSeq++
	now := time.Now().UTC()
	asg.ID = s.asgSeq
	asg.CreatedAt = now
	asg.UpdatedAt = now
	asg.Employee = nil
	stored := asg
	s.asgs[asg.ID] = &stored
	return s.hydrateAssignment(&stored), nil
}

func (s *memoryRequests) GetAssignment(ctx context.Context, id int) (ShiftAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asg, ok := s.asgs[id]
	if !ok {
		return ShiftAssignment{}, ErrNotFound
	}
	return s.hydrateAssignment(asg), nil
}

func (s *memoryRequests) UpdateAssignmentStatus(ctx context.Context, id int, status string) (ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asg, ok := s.asgs[id]
	if !ok {
		return ShiftAssignment{}, ErrNotFound
	}
	asg.Status = status
	asg.UpdatedAt = time.Now().UTC()
	return s.hydrateAssignment(asg), nil
}

func (s *memoryRequests) DeleteAssignment(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.asgs[id]; !ok {
		return ErrNotFound
	}
	delete(s.asgs, id)
	return nil
}

// hydrateRequest returns a deep copy with company, shifts and assignments
// attached. Callers must hold at least the read lock.
func (s *memoryRequests) hydrateRequest(req *DailyRequest) DailyRequest {
	out := *req
	if company, ok := s.companies[req.CompanyID]; ok {
		c := *company
		out.Company = &c
	}

	var shiftIDs []int
	for id, shift := range s.shifts {
		if shift.RequestID == req.ID {
			shiftIDs = append(shiftIDs, id)
		}
	}
	sort.Ints(shiftIDs)

	out.Shifts = make([]WorkShift, 0, len(shiftIDs))
	for _, id := range shiftIDs {
		shift := *s.shifts[id]
		shift.Assignments = s.assignmentsForShift(id)
		out.Shifts = append(out.Shifts, shift)
	}
	return out
}

func (s *memoryRequests) assignmentsForShift(shiftID int) []ShiftAssignment {
	var ids []int
	for id, asg := range s.asgs {
		if asg.ShiftID == shiftID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	out := make([]ShiftAssignment, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.hydrateAssignment(s.asgs[id]))
	}
	return out
}

func (s *memoryRequests) hydrateAssignment(asg *ShiftAssignment) ShiftAssignment {
	out := *asg
	if user, ok := s.users[asg.EmployeeID]; ok {
		u := *user
		out.Employee = &u
	}
	return out
}
