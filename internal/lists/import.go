package lists

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/csvcodec"
	"github.com/vrsandeep/reel-go/internal/limiter"
	"github.com/vrsandeep/reel-go/internal/metrics"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
	"github.com/vrsandeep/reel-go/internal/util"
)

const (
	ReasonMissingTitleAndID = "missing title and id"
	ReasonNotFound          = "not found in provider"
	ReasonMalformed         = "malformed row"
)

type rowClass int

const (
	classUnmatched rowClass = iota
	classMatched
	classDuplicate
)

type classification struct {
	class    rowClass
	item     *models.ListItem
	existing *models.ListItem
	reason   string
}

// existingIndex finds existing items by id or by normalized title and year.
type existingIndex struct {
	byID    map[string]*models.ListItem
	byTitle map[string]*models.ListItem
}

func titleKey(title, year string) string {
	return util.NormalizeTitle(title) + "\x00" + strings.TrimSpace(year)
}

func newExistingIndex(items []*models.ListItem) *existingIndex {
	idx := &existingIndex{
		byID:    make(map[string]*models.ListItem, len(items)),
		byTitle: make(map[string]*models.ListItem, len(items)),
	}
	for _, item := range items {
		idx.byID[item.ID] = item
		if title := item.DisplayTitle(); title != "" {
			key := titleKey(title, item.Year())
			if _, ok := idx.byTitle[key]; !ok {
				idx.byTitle[key] = item
			}
		}
	}
	return idx
}

func (idx *existingIndex) find(id, name, year string) *models.ListItem {
	if id != "" {
		if item, ok := idx.byID[id]; ok {
			return item
		}
	}
	if util.NormalizeTitle(name) != "" {
		if item, ok := idx.byTitle[titleKey(name, year)]; ok {
			return item
		}
	}
	return nil
}

// AnalyzeImport classifies every uploaded row against rl without writing
// anything. Duplicates win over matches; rows keep upload order within each
// class.
func (s *Service) AnalyzeImport(ctx context.Context, rl *ResolvedList, r io.Reader) (*models.AnalysisResult, error) {
	rows, err := csvcodec.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	items, err := s.items(ctx, rl)
	if err != nil {
		return nil, err
	}
	idx := newExistingIndex(items)

	outcomes := limiter.Map(ctx, s.limiter, rows, func(ctx context.Context, row models.ImportRow) classification {
		return s.classify(ctx, row, idx)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := models.NewAnalysisResult()
	for i, c := range outcomes {
		row := rows[i]
		switch c.class {
		case classDuplicate:
			result.Duplicates = append(result.Duplicates, models.DuplicateRow{Row: row, Existing: c.existing})
			metrics.ImportRows.WithLabelValues("duplicate").Inc()
		case classMatched:
			result.Matched = append(result.Matched, models.MatchedRow{Row: row, Item: c.item})
			metrics.ImportRows.WithLabelValues("matched").Inc()
		default:
			result.Unmatched = append(result.Unmatched, models.UnmatchedRow{Row: row, Reason: c.reason})
			metrics.ImportRows.WithLabelValues("unmatched").Inc()
		}
	}

	log.Info().Str("user_id", rl.Ref.UserID).Str("list_id", rl.Ref.ListID).
		Int("matched", len(result.Matched)).
		Int("duplicates", len(result.Duplicates)).
		Int("unmatched", len(result.Unmatched)).
		Msg("Analyzed import")
	return result, nil
}

func (s *Service) classify(ctx context.Context, row models.ImportRow, idx *existingIndex) classification {
	if row.Malformed {
		return classification{class: classUnmatched, reason: ReasonMalformed}
	}
	id := strings.TrimSpace(row.TmdbID)
	name := strings.TrimSpace(row.Name)

	if existing := idx.find(id, name, row.Year); existing != nil {
		return classification{class: classDuplicate, existing: existing}
	}
	if id == "" && name == "" {
		return classification{class: classUnmatched, reason: ReasonMissingTitleAndID}
	}

	details := s.matchRow(ctx, row, id, name)
	if details == nil {
		return classification{class: classUnmatched, reason: ReasonNotFound}
	}
	// A name match can resolve to a title that is already in the list under
	// a different spelling.
	if existing, ok := idx.byID[details.ID]; ok {
		return classification{class: classDuplicate, existing: existing}
	}
	return classification{class: classMatched, item: details.ToListItem()}
}

// matchRow resolves a row against the metadata provider, by numeric id first
// and then by name and year.
func (s *Service) matchRow(ctx context.Context, row models.ImportRow, id, name string) *models.TitleDetails {
	if s.metadata == nil {
		return nil
	}
	mediaType := models.MediaType(strings.ToLower(strings.TrimSpace(row.MediaType)))

	if isNumericID(id) {
		var (
			details *models.TitleDetails
			err     error
		)
		if mediaType.Valid() {
			details, err = s.metadata.Details(ctx, mediaType, id)
		} else {
			details, err = s.metadata.Lookup(ctx, id)
		}
		if err == nil && details != nil {
			return details
		}
		if !providers.IsNotFound(err) {
			log.Debug().Err(err).Str("tmdb_id", id).Msg("Import row lookup by id failed")
		}
	}

	if name == "" {
		return nil
	}
	if !mediaType.Valid() {
		mediaType = models.MediaTypeMovie
	}
	year, _ := strconv.Atoi(strings.TrimSpace(row.Year))
	candidates, err := s.metadata.Search(ctx, mediaType, name, year)
	if err != nil {
		log.Debug().Err(err).Str("name", name).Msg("Import row search failed")
		return nil
	}
	return closestTitle(name, row.Year, candidates)
}

// closestTitle picks the candidate whose title is nearest to name, among
// those released in year when year is set.
func closestTitle(name, year string, candidates []models.TitleDetails) *models.TitleDetails {
	year = strings.TrimSpace(year)
	var (
		best     *models.TitleDetails
		bestDist int
	)
	for i := range candidates {
		c := &candidates[i]
		if year != "" && models.YearOf(c.ReleaseDate) != year {
			continue
		}
		if !util.TitlesMatch(name, c.Title) {
			continue
		}
		dist := util.TitleDistance(name, c.Title)
		if best == nil || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}

func isNumericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
