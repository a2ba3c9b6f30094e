package eph

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// All code interacting with delimited files is here

const (
	InSep       = ';'
	OutSep      = ','
	EOL         = '\n'
	StringDelim = '"'
	Header      = true

	Latin1 = "latin1"
	UTF8   = "utf-8"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Files reads and writes delimited text.
type Files struct {
	Sep         byte
	EOL         byte
	StringDelim byte
	FloatFormat string // empty: shortest representation that round-trips
	Header      bool
	Encoding    string
	BOM         bool

	file *os.File
	buf  *bufio.Writer
}

// NewInputFiles returns the settings of the survey microdata: ';' separated, Latin-1, with header.
func NewInputFiles() *Files {
	return &Files{
		Sep:         byte(InSep),
		EOL:         byte(EOL),
		StringDelim: byte(StringDelim),
		Header:      Header,
		Encoding:    Latin1,
	}
}

// NewOutputFiles returns the settings of the aggregate tables: ',' separated, UTF-8 with a byte-order mark.
func NewOutputFiles() *Files {
	return &Files{
		Sep:         byte(OutSep),
		EOL:         byte(EOL),
		StringDelim: byte(StringDelim),
		Header:      Header,
		Encoding:    UTF8,
		BOM:         true,
	}
}

func (f *Files) Open(fileName string) error {
	var e error
	f.file, e = os.Open(fileName)

	return e
}

// Create creates fileName, and any missing parent directories, for writing.
func (f *Files) Create(fileName string) error {
	if e := os.MkdirAll(filepath.Dir(fileName), 0o755); e != nil {
		return e
	}

	var e error
	if f.file, e = os.Create(fileName); e != nil {
		return e
	}

	f.buf = bufio.NewWriter(f.file)
	if f.BOM {
		_, e = f.buf.Write(bom)
	}

	return e
}

func (f *Files) Close() error {
	if f.file == nil {
		return fmt.Errorf("no open files")
	}

	var e error
	if f.buf != nil {
		e = f.buf.Flush()
		f.buf = nil
	}

	e = errors.Join(e, f.file.Close())
	f.file = nil

	return e
}

// *********** Reading ***********

// Read reads fileName into a DF of DTstring columns. Only the columns named in keep are retained, in the
// order of keep; those absent from the file are skipped. If keep is empty, every column is retained.
func (f *Files) Read(fileName string, keep ...string) (*DF, error) {
	if e := f.Open(fileName); e != nil {
		return nil, e
	}
	defer func() { _ = f.Close() }()

	rdr := csv.NewReader(f.decoder(f.file))
	rdr.Comma = rune(f.Sep)
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true
	rdr.ReuseRecord = true

	if f.StringDelim != StringDelim {
		return nil, fmt.Errorf("%w: quote character %q", ErrUnsupportedFormat, f.StringDelim)
	}

	if !f.Header {
		return nil, fmt.Errorf("%w: files without a header row", ErrUnsupportedFormat)
	}

	header, e := rdr.Read()
	if e == io.EOF {
		return &DF{}, nil
	}

	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(bom))
	}

	if len(keep) == 0 {
		keep = trimAll(header)
	}

	var (
		names []string
		pos   []int
	)
	for _, cn := range keep {
		if p := position(strings.TrimSpace(cn), trimAll(header)); p >= 0 {
			names = append(names, cn)
			pos = append(pos, p)
		}
	}

	data := make([][]string, len(names))
	missing := make([][]int, len(names))
	for row := 0; ; row++ {
		rec, e := rdr.Read()
		if e == io.EOF {
			break
		}

		if e != nil {
			return nil, fmt.Errorf("%s: %w", fileName, e)
		}

		for ind, p := range pos {
			if p >= len(rec) {
				data[ind] = append(data[ind], "")
				missing[ind] = append(missing[ind], row)
				continue
			}

			data[ind] = append(data[ind], rec[p])
		}
	}

	df := &DF{}
	for ind, cn := range names {
		if data[ind] == nil {
			data[ind] = []string{}
		}

		v, _ := NewVector(data[ind], DTstring)
		for _, row := range missing[ind] {
			v.SetMissing(row)
		}

		col, e := NewCol(cn, v)
		if e != nil {
			return nil, fmt.Errorf("%s: %w", fileName, e)
		}

		df.cols = append(df.cols, col)
	}

	return df, nil
}

func (f *Files) decoder(r io.Reader) io.Reader {
	if strings.EqualFold(f.Encoding, Latin1) {
		return charmap.ISO8859_1.NewDecoder().Reader(r)
	}

	return r
}

// *********** Writing ***********

func (f *Files) WriteHeader(fieldNames []string) error {
	if !f.Header {
		return nil
	}

	if fieldNames == nil {
		return fmt.Errorf("field names not set in WriteHeader")
	}

	var vals []any
	for _, fn := range fieldNames {
		vals = append(vals, fn)
	}

	return f.WriteLine(vals)
}

// WriteLine writes one row. nil values, and nil pointers, are written as empty fields.
func (f *Files) WriteLine(v []any) error {
	if f.buf == nil {
		return fmt.Errorf("no file open for writing")
	}

	var line []byte
	for ind := 0; ind < len(v); ind++ {
		var lx []byte
		switch d := v[ind].(type) {
		case nil:
		case float64:
			lx = []byte(f.formatFloat(d))
		case int:
			lx = []byte(strconv.Itoa(d))
		case string:
			lx = f.quote(d)
		case *float64:
			if d != nil {
				lx = []byte(f.formatFloat(*d))
			}
		case *int:
			if d != nil {
				lx = []byte(strconv.Itoa(*d))
			}
		case *string:
			if d != nil {
				lx = f.quote(*d)
			}
		default:
			return fmt.Errorf("unsupported type %T in WriteLine", d)
		}

		line = append(line, lx...)
		if ind < len(v)-1 {
			line = append(line, f.Sep)
		}
	}

	line = append(line, f.EOL)
	_, e := f.buf.Write(line)

	return e
}

// WriteDF writes df, header first, to fileName.
func (f *Files) WriteDF(fileName string, df *DF) (err error) {
	if e := f.Create(fileName); e != nil {
		return e
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	if e := f.WriteHeader(df.ColumnNames()); e != nil {
		return e
	}

	for row := 0; row < df.RowCount(); row++ {
		if e := f.WriteLine(df.Row(row)); e != nil {
			return e
		}
	}

	return nil
}

func (f *Files) formatFloat(x float64) string {
	if f.FloatFormat == "" {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}

	return fmt.Sprintf(f.FloatFormat, x)
}

// quote delimits s only if it holds the separator, the delimiter or a line break.
func (f *Files) quote(s string) []byte {
	if !strings.ContainsAny(s, string([]byte{f.Sep, f.StringDelim, f.EOL, '\r'})) {
		return []byte(s)
	}

	delim := string(f.StringDelim)
	s = strings.ReplaceAll(s, delim, delim+delim)

	return []byte(delim + s + delim)
}

func trimAll(x []string) []string {
	out := make([]string, len(x))
	for ind, s := range x {
		out[ind] = strings.TrimSpace(s)
	}

	return out
}
