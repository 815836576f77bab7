package csvcodec

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/reel-go/internal/models"
)

func TestEncode(t *testing.T) {
	t.Run("Header only for no records", func(t *testing.T) {
		assert.Equal(t, "tmdbId,imdbId,name,year,mediaType,tmdbRating,imdbRating,tmdbVotes,imdbVotes", string(Encode(nil)))
	})

	t.Run("Rows are joined with newline and quoted only when needed", func(t *testing.T) {
		out := Encode([]models.ExportRecord{
			{TmdbID: "123", Name: "Test Movie", Year: "2022", MediaType: "movie", TmdbRating: "7.3", TmdbVotes: "111"},
			{TmdbID: "7", Name: `Crouching Tiger, "Hidden" Dragon`, MediaType: "movie"},
			{TmdbID: "8", Name: "Line\nBreak", MediaType: "tv"},
		})
		want := Header + "\n" +
			"123,,Test Movie,2022,movie,7.3,,111,\n" +
			`7,,"Crouching Tiger, ""Hidden"" Dragon",,movie,,,,` + "\n" +
			"8,,\"Line\nBreak\",,tv,,,,"
		assert.Equal(t, want, string(out))
	})

	t.Run("CRLF inside a field is written as newline", func(t *testing.T) {
		out := Encode([]models.ExportRecord{{TmdbID: "9", Name: "Line one\r\nLine two", MediaType: "movie"}})
		assert.Equal(t, Header+"\n9,,\"Line one\nLine two\",,movie,,,,", string(out))
	})
}

func TestRoundTrip(t *testing.T) {
	records := []models.ExportRecord{
		{TmdbID: "1", ImdbID: "tt0000001", Name: `He said "no", twice`, Year: "1999", MediaType: "movie", TmdbRating: "6.5", ImdbRating: "7.0", TmdbVotes: "10", ImdbVotes: "2000"},
		{TmdbID: "2", Name: "Multi\nline, with comma", Year: "2005", MediaType: "tv"},
		{TmdbID: "3", Name: `""`, MediaType: "movie"},
		{TmdbID: "4", Name: "Plain", MediaType: "movie"},
		{TmdbID: "5", Name: "Carriage\rreturn", MediaType: "movie"},
	}

	rows, err := Parse(strings.NewReader(string(Encode(records))))
	require.NoError(t, err)
	require.Len(t, rows, len(records))
	for i, r := range records {
		got := rows[i]
		assert.Equal(t, r.TmdbID, got.TmdbID)
		assert.Equal(t, r.ImdbID, got.ImdbID)
		assert.Equal(t, r.Name, got.Name)
		assert.Equal(t, r.Year, got.Year)
		assert.Equal(t, r.MediaType, got.MediaType)
		assert.Equal(t, r.TmdbRating, got.TmdbRating)
		assert.Equal(t, r.ImdbRating, got.ImdbRating)
		assert.Equal(t, r.TmdbVotes, got.TmdbVotes)
		assert.Equal(t, r.ImdbVotes, got.ImdbVotes)
	}
}

func TestRoundTrip_CRLFBecomesNewline(t *testing.T) {
	records := []models.ExportRecord{{TmdbID: "1", Name: "a\r\nb", MediaType: "movie"}}
	encoded := Encode(records)

	rows, err := Parse(strings.NewReader(string(encoded)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a\nb", rows[0].Name)

	again := Encode([]models.ExportRecord{{TmdbID: rows[0].TmdbID, Name: rows[0].Name, MediaType: rows[0].MediaType}})
	assert.Equal(t, string(encoded), string(again))
}

func TestReadRows_KeepsUnsplittableLines(t *testing.T) {
	// A strict reader rejects the stray quote that Parse's lazy reader accepts.
	reader := csv.NewReader(strings.NewReader(Header + "\n1,,\"bad\"quote,2000\n2,,Fine,2001"))
	reader.FieldsPerRecord = -1

	rows, err := readRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Malformed)
	assert.Equal(t, 2, rows[0].Line)
	assert.False(t, rows[1].Malformed)
	assert.Equal(t, "Fine", rows[1].Name)
	assert.Equal(t, 3, rows[1].Line)
}

func TestParse(t *testing.T) {
	t.Run("Skips empty lines and pads short rows", func(t *testing.T) {
		input := Header + "\n\n123,,Heat,1995\n   \n456,tt1,Show,2019,tv,8.1,,222,\n"
		rows, err := Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "123", rows[0].TmdbID)
		assert.Equal(t, "Heat", rows[0].Name)
		assert.Equal(t, "1995", rows[0].Year)
		assert.Equal(t, "", rows[0].MediaType)
		assert.Equal(t, "", rows[0].ImdbVotes)
		assert.Equal(t, 3, rows[0].Line)

		assert.Equal(t, "tv", rows[1].MediaType)
		assert.Equal(t, "222", rows[1].TmdbVotes)
	})

	t.Run("Header with BOM and CRLF", func(t *testing.T) {
		input := "\ufeff" + Header + "\r\n1,,A,2000,movie,,,,\r\n"
		rows, err := Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "A", rows[0].Name)
	})

	t.Run("Header only yields no rows", func(t *testing.T) {
		rows, err := Parse(strings.NewReader(Header + "\n"))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Empty file", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Legacy header is reported distinctly", func(t *testing.T) {
		_, err := Parse(strings.NewReader("tmdbId,Name,Year,Letterboxd URI\n1,Heat,1995,https://boxd.it/x\n"))
		assert.ErrorIs(t, err, ErrLegacyHeaders)

		_, err = Parse(strings.NewReader("Date,Name,Year,Letterboxd URI\n"))
		assert.ErrorIs(t, err, ErrLegacyHeaders)
	})

	t.Run("Other headers are invalid", func(t *testing.T) {
		_, err := Parse(strings.NewReader("tmdbId,wrong,headers\n1,2,3\n"))
		assert.ErrorIs(t, err, ErrInvalidHeaders)
		assert.NotErrorIs(t, err, ErrLegacyHeaders)

		_, err = Parse(strings.NewReader("tmdbId,imdbId,name,year,mediaType,tmdbRating,imdbRating,tmdbVotes\n"))
		assert.ErrorIs(t, err, ErrInvalidHeaders)
	})
}
