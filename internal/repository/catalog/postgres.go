package catalog

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
)

// pgQuerier is the slice of pgx behaviour the loader needs; both
// *pgxpool.Pool and pgxmock satisfy it.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresLoader reads the credential catalog from a portal.users table.
type PostgresLoader struct {
	exec    pgQuerier
	builder squirrel.StatementBuilderType
}

// NewPostgresLoader constructs a loader backed by any executor that
// satisfies pgQuerier.
func NewPostgresLoader(exec pgQuerier) *PostgresLoader {
	return &PostgresLoader{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Load fetches every catalog row ordered by username.
func (l *PostgresLoader) Load(ctx context.Context) ([]domain.UserRecord, error) {
	query := l.builder.
		Select("username", "salt", "password_hash", "role", "branch", "permissions").
		From("portal.users").
		OrderBy("username")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select users sql: %w", err)
	}

	rows, err := l.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var records []domain.UserRecord
	for rows.Next() {
		var (
			record      domain.UserRecord
			role        string
			branch      *string
			permissions []string
		)
		if err := rows.Scan(&record.Username, &record.Salt, &record.PasswordHash, &role, &branch, &permissions); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}

		record.Role = domain.ParseRole(role)
		if branch != nil {
			record.Branch = *branch
		}
		record.Permissions = permissions
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return records, nil
}
