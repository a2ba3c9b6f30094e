package eph

// Column names of the EPH individual file consumed here.
const (
	ColYear      = "ANO4"
	ColQuarter   = "TRIMESTRE"
	ColGeography = "AGLOMERADO"
	ColStatus    = "ESTADO"
	ColWeight    = "PONDERA"
	ColIncome    = "P47T"
	ColIPCF      = "IPCF"
	ColEducation = "NIVEL_ED"
	ColSex       = "CH04"
	ColAge       = "CH06"
)

// Derived columns.
const (
	ColGeographyName = "AGLOMERADO_NOM"
	ColPeriod        = "PERIODO"
	ColSexName       = "SEXO"
	ColAgeBracket    = "GRUPO_EDAD"
	ColEducationName = "NIVEL_ED_NOMBRE"
)

// Statistic columns.
const (
	StatActivity     = "tasa_actividad"
	StatEmployment   = "tasa_empleo"
	StatUnemployment = "tasa_desocupacion"

	StatMean   = "media_ipcf"
	StatMedian = "mediana_ipcf"
	StatQ1     = "q1_ipcf"
	StatQ3     = "q3_ipcf"
)

// Activity status codes (ESTADO).
const (
	StatusEmployed   = 1
	StatusUnemployed = 2
	StatusInactive   = 3
	StatusUnderAge   = 4
)

// FilePattern matches the quarterly individual files within a year directory.
const FilePattern = "usu_individual_*.txt"

// Columns is the allow-list read from each survey file, in output order.
var Columns = []string{ColYear, ColQuarter, ColGeography, ColStatus, ColWeight, ColIncome, ColIPCF, ColEducation, ColSex, ColAge}

var (
	codeColumns    = []string{ColYear, ColQuarter, ColGeography, ColStatus, ColEducation, ColSex}
	numericColumns = []string{ColWeight, ColIncome, ColIPCF, ColAge}
)

// Geographies maps AGLOMERADO codes to display names.
type Geographies map[int]string

// DefaultGeographies are Gran San Juan and Partidos del GBA.
func DefaultGeographies() Geographies {
	return Geographies{
		27: "Gran San Juan",
		33: "Partidos del GBA",
	}
}

// SexNames maps CH04.
var SexNames = map[int]string{
	1: "Varón",
	2: "Mujer",
}

// EducationNames maps NIVEL_ED. Code 7 (not stated) is a category of its own.
var EducationNames = map[int]string{
	1: "Primaria incompleta",
	2: "Primaria completa",
	3: "Secundaria incompleta",
	4: "Secundaria completa",
	5: "Superior incompleto",
	6: "Superior completo",
	7: "NS/NC",
}

// EducationOrder lists the education labels by code.
func EducationOrder() []string {
	var out []string
	for code := 1; code <= len(EducationNames); code++ {
		out = append(out, EducationNames[code])
	}

	return out
}

// DefaultAgeBreaks and DefaultAgeLabels define the brackets [..25), [25,55), [55,..).
var (
	DefaultAgeBreaks = []float64{25, 55}
	DefaultAgeLabels = []string{"Jóvenes (15-24)", "Adultos (25-54)", "Mayores (55+)"}
)
