package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spacerh.dev/internal/hr"
)

type requestStore Store

func (s *requestStore) Create(ctx context.Context, req hr.DailyRequest) (hr.DailyRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hr.DailyRequest{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var requestID int
	err = tx.QueryRowContext(ctx, `
		insert into daily_requests (company_id, request_date, status, notes, created_by)
		values ($1, $2, $3, $4, $5)
		returning id
	`, req.CompanyID, req.RequestDate, req.Status, req.Notes, req.CreatedBy).Scan(&requestID)
	if err != nil {
		return hr.DailyRequest{}, mapWriteError(err)
	}

	for _, shift := range req.Shifts {
		_, err := tx.ExecContext(ctx, `
			insert into work_shifts (request_id, start_time, end_time, payment_amount, quantity, has_discount, discount_percentage)
			values ($1, $2, $3, $4, $5, $6, $7)
		`, requestID, shift.StartTime, shift.EndTime, shift.PaymentAmount, shift.Quantity, shift.HasDiscount, shift.DiscountPercentage)
		if err != nil {
			return hr.DailyRequest{}, mapWriteError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return hr.DailyRequest{}, err
	}
	return s.GetByID(ctx, requestID)
}

func (s *requestStore) GetByID(ctx context.Context, id int) (hr.DailyRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		select r.id, r.company_id, to_char(r.request_date, 'YYYY-MM-DD'), r.status,
		       coalesce(r.notes, ''), coalesce(r.created_by, 0), r.created_at, r.updated_at,
		       c.name
		from daily_requests r
		join companies c on c.id = r.company_id
		where r.id = $1
	`, id)

	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.DailyRequest{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.DailyRequest{}, err
	}
	if err := s.attachShifts(ctx, &req); err != nil {
		return hr.DailyRequest{}, err
	}
	return req, nil
}

func (s *requestStore) List(ctx context.Context, filter hr.RequestFilter) ([]hr.DailyRequest, error) {
	var (
		conds []string
		args  []any
		idx   = 1
	)
	appendCond := func(cond string, value any) {
		conds = append(conds, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}
	if filter.From != "" {
		appendCond("r.request_date >= $%d", filter.From)
	}
	if filter.To != "" {
		appendCond("r.request_date <= $%d", filter.To)
	}
	if filter.CompanyID != 0 {
		appendCond("r.company_id = $%d", filter.CompanyID)
	}
	if filter.Status != "" {
		appendCond("r.status = $%d", filter.Status)
	}
	where := ""
	if len(conds) > 0 {
		where = "where " + strings.Join(conds, " and ")
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select r.id, r.company_id, to_char(r.request_date, 'YYYY-MM-DD'), r.status,
		       coalesce(r.notes, ''), coalesce(r.created_by, 0), r.created_at, r.updated_at,
		       c.name
		from daily_requests r
		join companies c on c.id = r.company_id
		%s
		order by r.request_date, r.id
	`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []hr.DailyRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := s.attachShifts(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *requestStore) UpdateStatus(ctx context.Context, id int, status string) (hr.DailyRequest, error) {
	res, err := s.db.ExecContext(ctx, `update daily_requests set status = $1, updated_at = now() where id = $2`, status, id)
	if err != nil {
		return hr.DailyRequest{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return hr.DailyRequest{}, err
	}
	if affected == 0 {
		return hr.DailyRequest{}, hr.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *requestStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `delete from daily_requests where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return hr.ErrNotFound
	}
	return nil
}

func (s *requestStore) CreateAssignment(ctx context.Context, asg hr.ShiftAssignment) (hr.ShiftAssignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hr.ShiftAssignment{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var quantity int
	err = tx.QueryRowContext(ctx, `select quantity from work_shifts where id = $1 for update`, asg.ShiftID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.ShiftAssignment{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.ShiftAssignment{}, err
	}

	var active, held int
	err = tx.QueryRowContext(ctx, `
		select count(*), count(*) filter (where employee_id = $2)
		from shift_assignments
		where shift_id = $1 and status <> $3
	`, asg.ShiftID, asg.EmployeeID, hr.AssignmentStatusCancelled).Scan(&active, &held)
	if err != nil {
		return hr.ShiftAssignment{}, err
	}
	if held > 0 {
		return hr.ShiftAssignment{}, hr.ErrConflict
	}
	if active >= quantity {
		return hr.ShiftAssignment{}, hr.ErrConflict
	}

	var id int
	err = tx.QueryRowContext(ctx, `
		insert into shift_assignments (shift_id, employee_id, status)
		values ($1, $2, $3)
		returning id
	`, asg.ShiftID, asg.EmployeeID, asg.Status).Scan(&id)
	if err != nil {
		return hr.ShiftAssignment{}, mapWriteError(err)
	}
	if err := tx.Commit(); err != nil {
		return hr.ShiftAssignment{}, err
	}
	return s.GetAssignment(ctx, id)
}

func (s *requestStore) GetAssignment(ctx context.Context, id int) (hr.ShiftAssignment, error) {
	row := s.db.QueryRowContext(ctx, `
		select a.id, a.shift_id, a.employee_id, a.status, a.created_at, a.updated_at,
		       u.first_name, u.last_name, u.email, u.role, u.is_active
		from shift_assignments a
		join users u on u.id = a.employee_id
		where a.id = $1
	`, id)

	var (
		asg      hr.ShiftAssignment
		employee hr.User
	)
	err := row.Scan(
		&asg.ID, &asg.ShiftID, &asg.EmployeeID, &asg.Status, &asg.CreatedAt, &asg.UpdatedAt,
		&employee.FirstName, &employee.LastName, &employee.Email, &employee.Role, &employee.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.ShiftAssignment{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.ShiftAssignment{}, err
	}
	employee.ID = asg.EmployeeID
	asg.Employee = &employee
	return asg, nil
}

func (s *requestStore) UpdateAssignmentStatus(ctx context.Context, id int, status string) (hr.ShiftAssignment, error) {
	res, err := s.db.ExecContext(ctx, `update shift_assignments set status = $1, updated_at = now() where id = $2`, status, id)
	if err != nil {
		return hr.ShiftAssignment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return hr.ShiftAssignment{}, err
	}
	if affected == 0 {
		return hr.ShiftAssignment{}, hr.ErrNotFound
	}
	return s.GetAssignment(ctx, id)
}

func (s *requestStore) DeleteAssignment(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `delete from shift_assignments where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return hr.ErrNotFound
	}
	return nil
}

func scanRequest(row interface{ Scan(...any) error }) (hr.DailyRequest, error) {
	var (
		req         hr.DailyRequest
		companyName string
	)
	err := row.Scan(
		&req.ID, &req.CompanyID, &req.RequestDate, &req.Status,
		&req.Notes, &req.CreatedBy, &req.CreatedAt, &req.UpdatedAt,
		&companyName,
	)
	if err != nil {
		return hr.DailyRequest{}, err
	}
	req.Company = &hr.Company{ID: req.CompanyID, Name: companyName}
	return req, nil
}

func (s *requestStore) attachShifts(ctx context.Context, req *hr.DailyRequest) error {
	rows, err := s.db.QueryContext(ctx, `
		select id, request_id, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       payment_amount, quantity, has_discount, discount_percentage
		from work_shifts
		where request_id = $1
		order by id
	`, req.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	req.Shifts = []hr.WorkShift{}
	for rows.Next() {
		var shift hr.WorkShift
		if err := rows.Scan(
			&shift.ID, &shift.RequestID, &shift.StartTime, &shift.EndTime,
			&shift.PaymentAmount, &shift.Quantity, &shift.HasDiscount, &shift.DiscountPercentage,
		); err != nil {
			return err
		}
		req.Shifts = append(req.Shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range req.Shifts {
		if err := s.attachAssignments(ctx, &req.Shifts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *requestStore) attachAssignments(ctx context.Context, shift *hr.WorkShift) error {
	rows, err := s.db.QueryContext(ctx, `
		select a.id, a.shift_id, a.employee_id, a.status, a.created_at, a.updated_at,
		       u.first_name, u.last_name, u.email, u.role, u.is_active
		from shift_assignments a
		join users u on u.id = a.employee_id
		where a.shift_id = $1
		order by a.id
	`, shift.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			asg      hr.ShiftAssignment
			employee hr.User
		)
		if err := rows.Scan(
			&asg.ID, &asg.ShiftID, &asg.EmployeeID, &asg.Status, &asg.CreatedAt, &asg.UpdatedAt,
			&employee.FirstName, &employee.LastName, &employee.Email, &employee.Role, &employee.IsActive,
		); err != nil {
			return err
		}
		employee.ID = asg.EmployeeID
		asg.Employee = &employee
		shift.Assignments = append(shift.Assignments, asg)
	}
	return rows.Err()
}
