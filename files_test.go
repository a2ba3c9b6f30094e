package eph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func writeLatin1(t *testing.T, fileName, content string) {
	data, e := charmap.ISO8859_1.NewEncoder().String(content)
	require.Nil(t, e)
	require.Nil(t, os.WriteFile(fileName, []byte(data), 0o644))
}

func TestFilesRead(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "usu_individual_T216.txt")
	writeLatin1(t, fileName, "CODUSU;ANO4; ESTADO ;NOTE\r\n"+
		"A;2016;1;Año\r\n"+
		"B;2016;\r\n"+
		"C;2016;3;\"x;y\"\r\n")

	f := NewInputFiles()
	df, e := f.Read(fileName, "ESTADO", "ANO4", "NOTE", "PONDERA")
	require.Nil(t, e)

	assert.Equal(t, []string{"ESTADO", "ANO4", "NOTE"}, df.ColumnNames())
	assert.Equal(t, 3, df.RowCount())
	assert.Equal(t, []any{"1", "2016", "Año"}, df.Row(0))
	// short rows are missing, not an error
	assert.Equal(t, []any{"", "2016", nil}, df.Row(1))
	assert.Equal(t, "x;y", df.Column("NOTE").AsString()[2])

	// with no allow-list every column is kept, names trimmed
	all, e := f.Read(fileName)
	require.Nil(t, e)
	assert.Equal(t, []string{"CODUSU", "ANO4", "ESTADO", "NOTE"}, all.ColumnNames())

	_, e = f.Read(filepath.Join(t.TempDir(), "nope.txt"))
	assert.NotNil(t, e)
}

func TestFilesReadBadHeader(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "bad.txt")
	writeLatin1(t, fileName, "ANO4;NIVEL ED\r\n2016;3\r\n")

	var (
		df *DF
		e  error
	)
	assert.NotPanics(t, func() { df, e = NewInputFiles().Read(fileName) })
	assert.NotNil(t, e)
	assert.Nil(t, df)

	// the allow-list skips the column, so the file reads
	df, e = NewInputFiles().Read(fileName, ColYear)
	require.Nil(t, e)
	assert.Equal(t, []string{ColYear}, df.ColumnNames())
}

func TestFilesReadEmpty(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "empty.txt")
	require.Nil(t, os.WriteFile(fileName, nil, 0o644))

	df, e := NewInputFiles().Read(fileName)
	require.Nil(t, e)
	assert.Equal(t, 0, df.RowCount())

	headerOnly := filepath.Join(t.TempDir(), "header.txt")
	writeLatin1(t, headerOnly, "ANO4;ESTADO\r\n")
	df, e = NewInputFiles().Read(headerOnly, Columns...)
	require.Nil(t, e)
	assert.Equal(t, []string{"ANO4", "ESTADO"}, df.ColumnNames())
	assert.Equal(t, 0, df.RowCount())
}

func TestFilesWriteDF(t *testing.T) {
	name, _ := NewVector([]string{"Varón", "a,b"}, DTstring)
	rate, _ := NewVector([]float64{50, 1.0 / 3}, DTfloat)
	rate.SetMissing(1)
	n, _ := NewVector([]int{1, 2}, DTint)
	df, e := NewDF(MustCol("SEXO", name), MustCol("tasa", rate), MustCol("n", n))
	require.Nil(t, e)

	fileName := filepath.Join(t.TempDir(), "salidas", "out.csv")
	f := NewOutputFiles()
	require.Nil(t, f.WriteDF(fileName, df))

	data, e := os.ReadFile(fileName)
	require.Nil(t, e)
	assert.Equal(t, "\xEF\xBB\xBFSEXO,tasa,n\nVarón,50,1\n\"a,b\",,2\n", string(data))

	// round trip through the reader
	back, e := NewOutputFiles().Read(fileName)
	require.Nil(t, e)
	assert.Equal(t, []string{"SEXO", "tasa", "n"}, back.ColumnNames())
	assert.Equal(t, []any{"a,b", "", "2"}, back.Row(1))

	f.FloatFormat = "%.2f"
	require.Nil(t, f.WriteDF(fileName, df))
	data, _ = os.ReadFile(fileName)
	assert.Contains(t, string(data), "Varón,50.00,1\n")
}

func TestFilesWriteLine(t *testing.T) {
	f := NewOutputFiles()
	assert.NotNil(t, f.WriteLine([]any{1}))

	fileName := filepath.Join(t.TempDir(), "line.csv")
	f.BOM = false
	require.Nil(t, f.Create(fileName))

	x, s := 1.5, "q\"t"
	var nilInt *int
	assert.Nil(t, f.WriteLine([]any{&x, &s, nilInt, nil, 3}))
	assert.NotNil(t, f.WriteLine([]any{true}))
	require.Nil(t, f.Close())

	data, _ := os.ReadFile(fileName)
	assert.Equal(t, "1.5,\"q\"\"t\",,,3\n", string(data))
}
