package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

const unhcrCSV = `Year,Country of origin,Country of asylum,Refugees under UNHCR's mandate
2020,Syria,Turkey,3600000
2020,Syria,Germany,560000
2021,Afghanistan,Pakistan,1400000
2019,Syria,Lebanon,0
2021,Eritrea,Sudan,N/A
`

func load(t *testing.T, csv string, s Schema) *Dataset {
	t.Helper()
	ds, err := Load(context.Background(), strings.NewReader(csv), s)
	require.NoError(t, err)
	return ds
}

func TestLoad(t *testing.T) {
	ds := load(t, unhcrCSV, SchemaUNHCR)
	require.Equal(t, 5, ds.Len())
	assert.NotEmpty(t, ds.Digest)

	r := ds.Records[0]
	assert.Equal(t, "2020", r.Year())
	assert.Equal(t, "Syria", r.Origin())
	assert.Equal(t, "Turkey", r.Asylum())
	v, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, 3600000.0, v)

	_, ok = ds.Records[4].Value()
	assert.False(t, ok, "N/A is not a number")
}

func TestLoad_TrimsAndBOM(t *testing.T) {
	csv := "\ufeffYear , Entity ,Refugees by country of origin\n 2015 , Syria ,  4000 \n"
	ds := load(t, csv, SchemaOWID)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "2015", ds.Records[0].Year())
	assert.Equal(t, "Syria", ds.Records[0].Origin())
	assert.Equal(t, "", ds.Records[0].Asylum())
	_, ok := ds.Records[0].Get(FieldAsylum)
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		schema Schema
		code   errors.Code
	}{
		{"empty", "", SchemaUNHCR, errors.ErrCodeInvalidFormat},
		{"missing value column", "Year,Entity\n2020,Syria\n", SchemaOWID, errors.ErrCodeInvalidSchema},
		{"misspelled asylum", "Year,Country of origin,Asylum,applied\n", SchemaApplications, errors.ErrCodeInvalidSchema},
		{"unmapped year", "Year,Entity,v\n", Schema{Origin: "Entity", Value: "v"}, errors.ErrCodeInvalidSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), strings.NewReader(tt.csv), tt.schema)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestLoad_RaggedRows(t *testing.T) {
	csv := "Year,Entity,Refugees by country of origin\n2020,Syria\n2021,Iraq,12\n"
	ds := load(t, csv, SchemaOWID)
	require.Equal(t, 2, ds.Len())
	_, ok := ds.Records[0].Value()
	assert.False(t, ok)
	v, ok := ds.Records[1].Value()
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refugees.csv")
	require.NoError(t, os.WriteFile(path, []byte(unhcrCSV), 0o644))

	ds, err := Open(context.Background(), path, SchemaUNHCR, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())

	_, err = Open(context.Background(), filepath.Join(dir, "missing.csv"), SchemaUNHCR, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = Open(context.Background(), "https://example.org/data.csv", SchemaUNHCR, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

type stubFetcher struct{ body string }

func (s stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return []byte(s.body), nil
}

func TestOpen_Remote(t *testing.T) {
	ds, err := Open(context.Background(), "https://example.org/refugees.csv", SchemaUNHCR, stubFetcher{unhcrCSV})
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
}

func TestOptions(t *testing.T) {
	ds := load(t, unhcrCSV, SchemaUNHCR)
	assert.Equal(t, []string{"2019", "2020", "2021"}, ds.Options(FieldYear))
	assert.Equal(t, []string{"Afghanistan", "Eritrea", "Syria"}, ds.Options(FieldOrigin))
	assert.Equal(t, []string{"Germany", "Lebanon", "Pakistan", "Sudan", "Turkey"}, ds.Options(FieldAsylum))
}

func TestYears(t *testing.T) {
	csv := "Year,Entity,Refugees by country of origin\n" +
		"2024,A,1\n2013,A,1\n2014,A,1\n2014,B,2\nunknown,A,1\n,A,1\n2025,A,1\n2020,A,1\n"
	ds := load(t, csv, SchemaOWID)

	tests := []struct {
		name     string
		min, max string
		want     []string
	}{
		{"unbounded", "", "", []string{"2013", "2014", "2020", "2024", "2025"}},
		{"bounded", "2014", "2024", []string{"2014", "2020", "2024"}},
		{"lower only", "2020", "", []string{"2020", "2024", "2025"}},
		{"empty range", "2030", "2031", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ds.Years(tt.min, tt.max))
		})
	}
}

func TestDropZero(t *testing.T) {
	ds := load(t, unhcrCSV, SchemaUNHCR)
	nz := ds.DropZero()
	assert.Equal(t, 4, nz.Len(), "only the exact zero row is dropped")
	for _, r := range nz.Records {
		assert.NotEqual(t, "Lebanon", r.Asylum())
	}
	assert.NotEqual(t, ds.Digest, nz.Digest)
	assert.Equal(t, 5, ds.Len(), "source is not mutated")
}

func TestFilter(t *testing.T) {
	ds := load(t, unhcrCSV, SchemaUNHCR)
	syria := ds.Filter(func(r Record) bool { return r.Origin() == "Syria" })
	assert.Equal(t, 3, syria.Len())
	assert.Empty(t, syria.Digest)
}

func TestRecord_Field(t *testing.T) {
	r := NewRecord(SchemaApplications, map[string]string{
		"Year":              "2022",
		"Country of origin": "Ukraine",
		"Country of asylum": "Poland",
		"applied":           "1,200",
		"Notes":             " x ",
	})
	v, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, 1200.0, v)
	notes, ok := r.Field("Notes")
	assert.True(t, ok)
	assert.Equal(t, "x", notes)
	_, ok = r.Field("Missing")
	assert.False(t, ok)

	var zero Record
	assert.Equal(t, "", zero.Year())
	_, ok = zero.Value()
	assert.False(t, ok)
}

func TestPreset(t *testing.T) {
	s, err := Preset("OWID")
	require.NoError(t, err)
	assert.Equal(t, SchemaOWID, s)
	assert.False(t, s.HasAsylum())

	_, err = Preset("bogus")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSchema))
	assert.Equal(t, []string{"applications", "owid", "unhcr"}, PresetNames())
}

func TestParseField(t *testing.T) {
	f, err := ParseField("Asylum")
	require.NoError(t, err)
	assert.Equal(t, FieldAsylum, f)
	assert.Equal(t, "asylum", f.String())

	_, err = ParseField("country")
	assert.Error(t, err)
}
