package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"
)

// ErrConnUnavailable wraps failures to obtain a dedicated storage connection.
var ErrConnUnavailable = errors.New("database connection unavailable")

// CopyStatement renders a COPY ... FROM STDIN statement for a CSV stream whose
// first line is a header.
func CopyStatement(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pgx.Identifier{col}.Sanitize()
	}
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		pgx.Identifier{table}.Sanitize(), strings.Join(quoted, ", "))
}

// CopyFromCSV streams r into table with a single COPY statement on a dedicated
// connection. COPY is atomic: on error nothing from r is committed.
// Connection acquisition failures wrap ErrConnUnavailable.
func CopyFromCSV(ctx context.Context, db *gorm.DB, table string, columns []string, r io.Reader) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConnUnavailable, err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConnUnavailable, err)
	}
	defer conn.Close()

	var tag pgconn.CommandTag
	err = conn.Raw(func(driverConn any) error {
		pgxConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("%w: driver connection %T does not support COPY", ErrConnUnavailable, driverConn)
		}
		var copyErr error
		tag, copyErr = pgxConn.Conn().PgConn().CopyFrom(ctx, r, CopyStatement(table, columns))
		return copyErr
	})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
