package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// DB wraps the Postgres connection shared by the resume and shortlist
// repositories. The similarity search itself runs inside the database
// (pgvector); this layer only invokes it.
type DB struct {
	conn   *sql.DB
	logger *zap.Logger
}

func NewDB(dataSourceName string, logger *zap.Logger) (*DB, error) {
	conn, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{conn: conn, logger: logger}, nil
}

func (db *DB) Close() {
	if err := db.conn.Close(); err != nil {
		db.logger.Warn("closing database connection", zap.Error(err))
	}
}

// vectorLiteral renders an embedding as a pgvector input literal,
// e.g. [0.1,0.2,0.3].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
