// Package testing writes survey fixtures for tests: EPH individual files, Latin-1 encoded, laid out in
// year directories the way they are published.
package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// Header is the column layout of the fixture files. It carries columns that are not read, as the
// published files do.
var Header = []string{"CODUSU", "ANO4", "TRIMESTRE", "REGION", "AGLOMERADO", "PONDERA", "CH04", "CH06",
	"NIVEL_ED", "ESTADO", "P47T", "IPCF"}

// Person is one record of an individual file. Text fields hold the value as written; an empty string is blank.
type Person struct {
	Year, Quarter, Geography int
	Weight                   string
	Sex                      string
	Age                      string
	Education                string
	Status                   string
	Income                   string
	IPCF                     string
}

// Record returns p in Header order.
func (p Person) Record() []string {
	return []string{"TQRMNOSUXHKMLMCDEGNFJ00", strconv.Itoa(p.Year), strconv.Itoa(p.Quarter), "42",
		strconv.Itoa(p.Geography), p.Weight, p.Sex, p.Age, p.Education, p.Status, p.Income, p.IPCF}
}

// FileName is where the individual file of year and quarter lives under root.
func FileName(root string, year, quarter int) string {
	return filepath.Join(root, strconv.Itoa(year), fmt.Sprintf("usu_individual_T%d%02d.txt", quarter, year%100))
}

// WritePeople writes the individual file of year and quarter under root and returns its name.
func WritePeople(tb testing.TB, root string, year, quarter int, people []Person) string {
	tb.Helper()

	var rows [][]string
	for _, p := range people {
		rows = append(rows, p.Record())
	}

	fileName := FileName(root, year, quarter)
	WriteFile(tb, fileName, Header, rows)

	return fileName
}

// WriteFile writes a ';' separated Latin-1 file with CRLF line ends.
func WriteFile(tb testing.TB, fileName string, header []string, rows [][]string) {
	tb.Helper()

	var sb strings.Builder
	sb.WriteString(strings.Join(header, ";") + "\r\n")
	for _, row := range rows {
		sb.WriteString(strings.Join(row, ";") + "\r\n")
	}

	data, e := charmap.ISO8859_1.NewEncoder().String(sb.String())
	if e != nil {
		tb.Fatalf("encoding %s: %v", fileName, e)
	}

	if e := os.MkdirAll(filepath.Dir(fileName), 0o755); e != nil {
		tb.Fatal(e)
	}

	if e := os.WriteFile(fileName, []byte(data), 0o644); e != nil {
		tb.Fatal(e)
	}
}

// RatesPeople are four San Juan records of 2016T2, weight 10 each: one employed, one unemployed, two
// inactive. Activity is 50%, employment 25%, unemployment 50%. Their IPCF are 100, 200, 300 and 400.
func RatesPeople() []Person {
	return []Person{
		{Year: 2016, Quarter: 2, Geography: 27, Weight: "10", Sex: "1", Age: "30", Education: "4", Status: "1", IPCF: "100"},
		{Year: 2016, Quarter: 2, Geography: 27, Weight: "10", Sex: "2", Age: "40", Education: "6", Status: "2", IPCF: "200"},
		{Year: 2016, Quarter: 2, Geography: 27, Weight: "10", Sex: "1", Age: "20", Education: "3", Status: "3", IPCF: "300"},
		{Year: 2016, Quarter: 2, Geography: 27, Weight: "10", Sex: "2", Age: "70", Education: "7", Status: "3", IPCF: "400"},
	}
}

// Scenario writes a two-year tree under root: 2016 with RatesPeople plus GBA and out-of-scope records,
// and 2017 with a GBA record. It returns the file names.
func Scenario(tb testing.TB, root string) []string {
	tb.Helper()

	p2016 := append(RatesPeople(),
		Person{Year: 2016, Quarter: 2, Geography: 33, Weight: "20", Sex: "1", Age: "50", Education: "5", Status: "1", IPCF: "1000"},
		Person{Year: 2016, Quarter: 2, Geography: 33, Weight: "20", Sex: "2", Age: "10", Education: "1", Status: "4", IPCF: "1000"},
		Person{Year: 2016, Quarter: 2, Geography: 2, Weight: "99", Sex: "1", Age: "35", Education: "4", Status: "1", IPCF: "5000"},
	)

	p2017 := []Person{
		{Year: 2017, Quarter: 1, Geography: 33, Weight: "5", Sex: "2", Age: "26", Education: "2", Status: "2", IPCF: "0"},
	}

	return []string{
		WritePeople(tb, root, 2016, 2, p2016),
		WritePeople(tb, root, 2017, 1, p2017),
	}
}
