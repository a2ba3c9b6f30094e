package eph

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/stdlib"
	"github.com/rs/zerolog"
)

// All code interacting with a database is here.

var (
	//go:embed skeletons/clickhouse/create.txt
	chCreate string
	//go:embed skeletons/postgres/create.txt
	pgCreate string

	//go:embed skeletons/clickhouse/types.txt
	chTypes string
	//go:embed skeletons/postgres/types.txt
	pgTypes string

	//go:embed skeletons/clickhouse/fields.txt
	chFields string
	//go:embed skeletons/postgres/fields.txt
	pgFields string

	//go:embed skeletons/clickhouse/dropIf.txt
	chDropIf string
	//go:embed skeletons/postgres/dropIf.txt
	pgDropIf string
)

const (
	ch = "clickhouse"
	pg = "postgres"
)

// Dialect writes DFs to a ClickHouse or Postgres database.
type Dialect struct {
	db      *sql.DB
	dialect string

	dtTypes []string
	dbTypes []string

	create string
	dropIf string
	fields string

	bufSize int // in MB
}

// NewDialect loads the SQL skeletons of dialect for the connection db.
func NewDialect(dialect string, db *sql.DB) (*Dialect, error) {
	dialect = strings.ToLower(dialect)

	d := &Dialect{db: db, dialect: dialect, bufSize: 1}

	var types string
	switch d.dialect {
	case ch:
		d.create, d.fields, d.dropIf = chCreate, chFields, chDropIf
		types = chTypes
	case pg:
		d.create, d.fields, d.dropIf = pgCreate, pgFields, pgDropIf
		types = pgTypes
	default:
		return nil, fmt.Errorf("%w: no skeletons for database %s", ErrUnsupportedFormat, dialect)
	}

	for _, line := range strings.Split(types, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		t := strings.Split(line, ",")
		if len(t) != 2 {
			return nil, fmt.Errorf("bad type line in skeleton: %s", line)
		}

		if DTFromString(t[0]) == DTunknown {
			return nil, fmt.Errorf("unknown data type %s in NewDialect", t[0])
		}

		d.dtTypes = append(d.dtTypes, strings.TrimSpace(t[0]))
		d.dbTypes = append(d.dbTypes, strings.TrimSpace(t[1]))
	}

	return d, nil
}

// Connect opens and pings the database of cfg and returns its Dialect.
func Connect(ctx context.Context, cfg DBConfig) (*Dialect, error) {
	var db *sql.DB

	switch strings.ToLower(cfg.Dialect) {
	case ch:
		port := cfg.Port
		if port == 0 {
			port = 9000
		}

		database := cfg.Database
		if database == "" {
			database = "default"
		}

		db = clickhouse.OpenDB(
			&clickhouse.Options{
				Addr: []string{cfg.Host + ":" + strconv.Itoa(port)},
				Auth: clickhouse.Auth{
					Database: database,
					Username: cfg.User,
					Password: cfg.Password,
				},
				DialTimeout: 300 * time.Second,
				Compression: &clickhouse.Compression{
					Method: clickhouse.CompressionLZ4,
					Level:  0,
				},
			})
	case pg:
		port := cfg.Port
		if port == 0 {
			port = 5432
		}

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, port, cfg.Database)

		var e error
		if db, e = sql.Open("pgx", dsn); e != nil {
			return nil, e
		}
	default:
		return nil, fmt.Errorf("%w: database %s", ErrUnsupportedFormat, cfg.Dialect)
	}

	if e := db.PingContext(ctx); e != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s at %s: %w", cfg.Dialect, cfg.Host, e)
	}

	return NewDialect(cfg.Dialect, db)
}

// ***************** Methods *****************

func (d *Dialect) BufSize() int {
	return d.bufSize
}

func (d *Dialect) SetBufSize(mb int) {
	d.bufSize = mb
}

func (d *Dialect) Close() error {
	return d.db.Close()
}

func (d *Dialect) DB() *sql.DB {
	return d.db
}

func (d *Dialect) DialectName() string {
	return d.dialect
}

// Create creates tableName with the given fields. orderBy is a comma-separated list of fields and
// defaults to the first field.
func (d *Dialect) Create(ctx context.Context, tableName, orderBy string, fields []string, types []DataTypes) error {
	if len(fields) == 0 || len(fields) != len(types) {
		return fmt.Errorf("need one type per field in Dialect.Create")
	}

	if orderBy == "" {
		orderBy = fields[0]
	}

	create := strings.ReplaceAll(d.create, "?TableName", tableName)
	create = strings.Replace(create, "?OrderBy", orderBy, 1)

	var flds []string
	for ind := 0; ind < len(fields); ind++ {
		dbType, e := d.dbtype(types[ind])
		if e != nil {
			return e
		}

		field := strings.ReplaceAll(d.fields, "?Field", fields[ind])
		field = strings.ReplaceAll(field, "?Type", dbType)
		flds = append(flds, field)
	}

	create = strings.Replace(create, "?fields", strings.Join(flds, ",\n"), 1)

	if strings.Contains(create, "?") {
		return fmt.Errorf("create still has placeholders: %s", create)
	}

	_, e := d.db.ExecContext(ctx, create)

	return e
}

// CreateTable creates tableName with the columns of df. Every column in orderBy must be in df.
func (d *Dialect) CreateTable(ctx context.Context, tableName string, orderBy []string, df *DF) error {
	if !df.HasColumns(orderBy...) {
		return fmt.Errorf("%w: not all columns present in order by %v", ErrColumnNotFound, orderBy)
	}

	dts, e := df.ColumnTypes()
	if e != nil {
		return e
	}

	return d.Create(ctx, tableName, strings.Join(d.quoteAll(orderBy), ","), df.ColumnNames(), dts)
}

// DropTable drops tableName if it exists.
func (d *Dialect) DropTable(ctx context.Context, tableName string) error {
	qry := strings.ReplaceAll(d.dropIf, "?TableName", tableName)
	_, e := d.db.ExecContext(ctx, qry)

	return e
}

// InsertValues appends the VALUES list values to tableName.
func (d *Dialect) InsertValues(ctx context.Context, tableName string, values []byte) error {
	qry := fmt.Sprintf("INSERT INTO %s VALUES ", tableName) + string(values)
	_, e := d.db.ExecContext(ctx, qry)

	return e
}

// IterSave inserts the rows of df into tableName, flushing whenever the buffer reaches BufSize MB.
func (d *Dialect) IterSave(ctx context.Context, tableName string, df *DF) error {
	const (
		bSep   = byte(',')
		bOpen  = byte('(')
		bClose = byte(')')
	)

	var buffer []byte
	bsize := d.bufSize * 1024 * 1024

	for row := 0; row < df.RowCount(); row++ {
		if buffer != nil {
			buffer = append(buffer, bSep)
		}

		buffer = append(buffer, bOpen)
		for _, x := range df.Row(row) {
			buffer = append(append(buffer, []byte(d.ToString(x))...), bSep)
		}

		buffer[len(buffer)-1] = bClose

		if bsize > 0 && len(buffer) >= bsize {
			if e := d.InsertValues(ctx, tableName, buffer); e != nil {
				return e
			}

			buffer = nil
		}
	}

	if buffer != nil {
		return d.InsertValues(ctx, tableName, buffer)
	}

	return nil
}

// Save replaces tableName with the contents of df, ordered by the columns orderBy.
func (d *Dialect) Save(ctx context.Context, tableName string, orderBy []string, df *DF) error {
	if e := d.DropTable(ctx, tableName); e != nil {
		return e
	}

	if e := d.CreateTable(ctx, tableName, orderBy, df); e != nil {
		return e
	}

	if e := d.IterSave(ctx, tableName, df); e != nil {
		return e
	}

	zerolog.Ctx(ctx).Info().Str("table", tableName).Int("rows", df.RowCount()).Msg("table saved")

	return nil
}

// ToString returns a string version of val that can be placed into SQL. nil and NaN are NULL.
func (d *Dialect) ToString(val any) string {
	switch x := val.(type) {
	case nil:
		return "NULL"
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "NULL"
		}

		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	default:
		panic(fmt.Errorf("unsupported type %T in Dialect.ToString", val))
	}
}

func (d *Dialect) dbtype(dt DataTypes) (string, error) {
	pos := position(dt.String(), d.dtTypes)
	if pos < 0 {
		return "", fmt.Errorf("cannot find type %s to map to DB type", dt.String())
	}

	return d.dbTypes[pos], nil
}

func (d *Dialect) quoteAll(names []string) []string {
	q := `"`
	if d.dialect == ch {
		q = "`"
	}

	var out []string
	for _, n := range names {
		out = append(out, q+n+q)
	}

	return out
}
