package lists

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/csvcodec"
	"github.com/vrsandeep/reel-go/internal/limiter"
	"github.com/vrsandeep/reel-go/internal/metrics"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/util"
)

type ExportFile struct {
	Filename string
	Body     []byte
	Rows     int
}

// Export renders a list as CSV with ratings merged from both providers.
// Rows keep the list's order. An empty list yields ErrEmptyList.
func (s *Service) Export(ctx context.Context, userID, listID string) (*ExportFile, error) {
	rl, err := s.ResolveList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx, rl)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyList
	}

	records := limiter.Map(ctx, s.limiter, items, func(ctx context.Context, item *models.ListItem) models.ExportRecord {
		return s.enricher.EnrichItem(ctx, item).Record
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.ExportRows.Add(float64(len(records)))
	log.Info().Str("user_id", userID).Str("list_id", rl.Ref.ListID).Int("rows", len(records)).Msg("Exported list")

	return &ExportFile{
		Filename: fmt.Sprintf("%s-%s.csv", util.SanitizeFilename(rl.DisplayName), s.now().UTC().Format("20060102")),
		Body:     csvcodec.Encode(records),
		Rows:     len(records),
	}, nil
}
