package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spacerh.dev/internal/hr"
)

type userStore Store

const userColumns = `id, first_name, last_name, cpf, email, hashed_password, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (hr.User, error) {
	var user hr.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.CPF,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *userStore) Create(ctx context.Context, user hr.User) (hr.User, error) {
	row := s.db.QueryRowContext(ctx, `
		insert into users (first_name, last_name, cpf, email, hashed_password, role, is_active)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning `+userColumns,
		user.FirstName, user.LastName, user.CPF, user.Email, user.PasswordHash, user.Role, user.IsActive)
	created, err := scanUser(row)
	if err != nil {
		return hr.User{}, mapWriteError(err)
	}
	return created, nil
}

func (s *userStore) GetByID(ctx context.Context, id int) (hr.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.User{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.User{}, err
	}
	return user, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (hr.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.User{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.User{}, err
	}
	return user, nil
}

func (s *userStore) GetByCPF(ctx context.Context, cpf string) (hr.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where cpf = $1`, cpf)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.User{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.User{}, err
	}
	return user, nil
}

func (s *userStore) List(ctx context.Context) ([]hr.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []hr.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (s *userStore) Update(ctx context.Context, id int, upd hr.UserUpdate) (hr.User, error) {
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
	if upd.FirstName != nil {
		appendSet("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		appendSet("last_name", *upd.LastName)
	}
	if upd.Email != nil {
		appendSet("email", *upd.Email)
	}
	if upd.Password != nil {
		appendSet("hashed_password", *upd.Password)
	}
	if upd.Role != nil {
		appendSet("role", *upd.Role)
	}
	if upd.IsActive != nil {
		appendSet("is_active", *upd.IsActive)
	}
	if len(setClauses) == 0 {
		return s.GetByID(ctx, id)
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`update users set %s where id = $%d returning `+userColumns,
		strings.Join(setClauses, ", "), idx)
	args = append(args, id)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return hr.User{}, hr.ErrNotFound
	}
	if err != nil {
		return hr.User{}, mapWriteError(err)
	}
	return user, nil
}
