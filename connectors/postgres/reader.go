package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/aarondill/TaraBomSheets/internal/tables"
)

// ReadTable reads a whole table of the configured schema. Every value is
// rendered as text; NULL becomes an empty cell. When an order_by column is
// configured and present in the table, rows come back in that order,
// otherwise in the server's physical order.
func (c *Client) ReadTable(ctx context.Context, name string) (*tables.Table, error) {
	schema := c.config["schema"]

	columns, err := c.GetColumns(ctx, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s.%s: %w", schema, name, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found or has no columns", schema, name)
	}

	query := buildSelectQuery(schema, name, columns, c.config["order_by"])

	c.logger.Info("Executing full table read",
		zap.String("schema", schema),
		zap.String("table", name),
		zap.String("query", query))

	rows, err := c.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	data, err := collectRows(rows, len(columns))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s.%s: %w", schema, name, err)
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	return tables.NewTable(name, header, data), nil
}

func buildSelectQuery(schema, table string, columns []ColumnInfo, orderBy string) string {
	var columnNames []string
	hasOrderColumn := false
	for _, col := range columns {
		name := quoteIdent(col.Name)
		if col.DataType == "numeric" {
			// the server's text form keeps the declared scale
			name = fmt.Sprintf("%s::text AS %s", name, name)
		}
		columnNames = append(columnNames, name)
		if col.Name == orderBy {
			hasOrderColumn = true
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM %s.%s`,
		strings.Join(columnNames, ", "), quoteIdent(schema), quoteIdent(table))

	if orderBy != "" && hasOrderColumn {
		query += fmt.Sprintf(` ORDER BY %s ASC`, quoteIdent(orderBy))
	}
	return query
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func collectRows(rows pgx.Rows, width int) ([][]string, error) {
	var data [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, width)
		for i := 0; i < width && i < len(values); i++ {
			cell, err := formatValue(values[i])
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i+1, err)
			}
			row[i] = cell
		}
		data = append(data, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return data, nil
}

// formatValue renders a decoded column value as a table cell. Numerics keep
// their exact decimal text, scale included.
func formatValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case pgtype.Numeric:
		text, err := v.Value()
		if err != nil {
			return "", fmt.Errorf("failed to render numeric: %w", err)
		}
		if text == nil {
			return "", nil
		}
		return fmt.Sprintf("%v", text), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}
