package models

// ExportRecord is one CSV row. Every field is already formatted as text.
type ExportRecord struct {
	TmdbID     string `json:"tmdbId"`
	ImdbID     string `json:"imdbId"`
	Name       string `json:"name"`
	Year       string `json:"year"`
	MediaType  string `json:"mediaType"`
	TmdbRating string `json:"tmdbRating"`
	ImdbRating string `json:"imdbRating"`
	TmdbVotes  string `json:"tmdbVotes"`
	ImdbVotes  string `json:"imdbVotes"`
}

// Fields returns the record in export column order.
func (r ExportRecord) Fields() []string {
	return []string{r.TmdbID, r.ImdbID, r.Name, r.Year, r.MediaType, r.TmdbRating, r.ImdbRating, r.TmdbVotes, r.ImdbVotes}
}

// ImportRow is one parsed CSV data row. Missing trailing fields are empty.
// Malformed rows could not be split into fields and carry only Line.
type ImportRow struct {
	Line       int    `json:"line"`
	Malformed  bool   `json:"malformed,omitempty"`
	TmdbID     string `json:"tmdbId"`
	ImdbID     string `json:"imdbId"`
	Name       string `json:"name"`
	Year       string `json:"year"`
	MediaType  string `json:"mediaType"`
	TmdbRating string `json:"tmdbRating"`
	ImdbRating string `json:"imdbRating"`
	TmdbVotes  string `json:"tmdbVotes"`
	ImdbVotes  string `json:"imdbVotes"`
}

type MatchedRow struct {
	Row  ImportRow `json:"row"`
	Item *ListItem `json:"item"`
}

type DuplicateRow struct {
	Row      ImportRow `json:"row"`
	Existing *ListItem `json:"existing"`
}

type UnmatchedRow struct {
	Row    ImportRow `json:"row"`
	Reason string    `json:"reason"`
}

// AnalysisResult partitions uploaded rows. Each row appears in exactly one slice.
type AnalysisResult struct {
	Matched    []MatchedRow   `json:"matched"`
	Unmatched  []UnmatchedRow `json:"unmatched"`
	Duplicates []DuplicateRow `json:"duplicates"`
}

// NewAnalysisResult returns a result whose slices marshal as [] rather than null.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Matched:    []MatchedRow{},
		Unmatched:  []UnmatchedRow{},
		Duplicates: []DuplicateRow{},
	}
}
