package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spacerh.dev/internal/hr"
)

type companyStore Store

const companyColumns = `id, name, tax_id, phone, email, contact_person, is_active, created_by, updated_by, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (hr.Company, error) {
	var (
		company   hr.Company
		phone     sql.NullString
		email     sql.NullString
		contact   sql.NullString
		createdBy sql.NullInt64
		updatedBy sql.NullInt64
	)
	err := row.Scan(
		&company.ID,
		&company.Name,
		&company.TaxID,
		&phone,
		&email,
		&contact,
		&company.IsActive,
		&createdBy,
		&updatedBy,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	company.Phone = phone.String
	company.Email = email.String
	company.ContactPerson = contact.String
	company.CreatedBy = int(createdBy.Int64)
	company.UpdatedBy = int(updatedBy.Int64)
	return company, err
}

func (s *companyStore) Create(ctx context.Context, company hr.Company) (hr.Company, error) {
	row := s.db.QueryRowContext(ctx, `
		insert into companies (name, tax_id, phone, email, contact_person, is_active, created_by, updated_by)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning `+companyColumns,
		company.Name, company.TaxID, company.Phone, company.Email, company.ContactPerson,
		company.IsActive, company.CreatedBy, company.UpdatedBy)
	created, err := scanCompany(row)
	if err != nil {
		return hr.Company{}, mapWriteError(err)
	}
	return created, nil
}

func (s *companyStore) GetByID(ctx context.Context, id int) (hr.Company, error) {
	row := s.db.QueryRowContext(ctx, `select `+companyColumns+` from companies where id = $1`, id)
	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.Company{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.Company{}, err
	}
	return company, nil
}

func (s *companyStore) GetByTaxID(ctx context.Context, taxID string) (hr.Company, error) {
	row := s.db.QueryRowContext(ctx, `select `+companyColumns+` from companies where tax_id = $1`, taxID)
	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.Company{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.Company{}, err
	}
	return company, nil
}

func (s *companyStore) List(ctx context.Context) ([]hr.Company, error) {
	rows, err := s.db.QueryContext(ctx, `select `+companyColumns+` from companies order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []hr.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, company)
	}
	return result, rows.Err()
}

func (s *companyStore) Update(ctx context.Context, id int, upd hr.CompanyUpdate) (hr.Company, error) {
	var (
		setClauses []string
		args       []any
		idx        = 1
	)
	appendSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if upd.Name != nil {
		appendSet("name", *upd.Name)
	}
	if upd.TaxID != nil {
		appendSet("tax_id", *upd.TaxID)
	}
	if upd.Phone != nil {
		appendSet("phone", *upd.Phone)
	}
	if upd.Email != nil {
		appendSet("email", *upd.Email)
	}
	if upd.ContactPerson != nil {
		appendSet("contact_person", *upd.ContactPerson)
	}
	if upd.IsActive != nil {
		appendSet("is_active", *upd.IsActive)
	}
	if len(setClauses) == 0 {
		return s.GetByID(ctx, id)
	}
	if upd.UpdatedBy != 0 {
		appendSet("updated_by", upd.UpdatedBy)
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`update companies set %s where id = $%d returning `+companyColumns,
		strings.Join(setClauses, ", "), idx)
	args = append(args, id)

	company, err := scanCompany(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return hr.Company{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.Company{}, mapWriteError(err)
	}
	return company, nil
}
