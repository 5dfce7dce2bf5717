// Package postgres reads input tables from a PostgreSQL schema
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Client struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	config map[string]string
}

func NewClient(ctx context.Context, config map[string]string, logger *zap.Logger) (*Client, error) {
	dsn := buildConnectionString(config)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// One connection per input table is enough
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	client := &Client{
		pool:   pool,
		logger: logger,
		config: config,
	}

	return client, nil
}

func (c *Client) Close() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return c.pool.Query(ctx, sql, args...)
}

func (c *Client) GetColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	query := `
		SELECT
			column_name,
			data_type,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := c.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	return columns, nil
}

func buildConnectionString(config map[string]string) string {
	query := url.Values{}
	query.Set("sslmode", config["sslmode"])

	if connectTimeout := config["connect_timeout"]; connectTimeout != "" {
		// Convert duration string to seconds for PostgreSQL
		if duration, err := time.ParseDuration(connectTimeout); err == nil {
			query.Set("connect_timeout", strconv.Itoa(int(duration.Seconds())))
		}
	}

	if statementTimeout := config["statement_timeout"]; statementTimeout != "" {
		// statement_timeout is a server setting in milliseconds
		if duration, err := time.ParseDuration(statementTimeout); err == nil {
			query.Set("statement_timeout", strconv.FormatInt(duration.Milliseconds(), 10))
		}
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(config["username"], config["password"]),
		Host:     net.JoinHostPort(config["host"], config["port"]),
		Path:     "/" + config["database"],
		RawQuery: query.Encode(),
	}
	return dsn.String()
}

type ColumnInfo struct {
	Name     string
	DataType string
	Position int
}
