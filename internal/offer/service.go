package offer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"bks/internal"
	"bks/internal/catalog"
	"bks/internal/config"
	"bks/internal/logger"
	"bks/internal/quote"
	"bks/internal/storage"
)

// Service ties the catalog cache, the calculator and storage together.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	cache  *catalog.Cache
	tables quote.Tables
	log    *zap.SugaredLogger
}

// NewService wires the quote flow. The pricing tables are validated once
// here so a gap in enum coverage fails at startup instead of mid-quote.
func NewService(db *storage.DB, cfg config.Config, cache *catalog.Cache, log *zap.SugaredLogger) (*Service, error) {
	tables := quote.DefaultTables()
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("pricing tables: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{db: db, cfg: cfg, cache: cache, tables: tables, log: log}, nil
}

// Request carries one set of validated form answers plus optional
// contact details for the lead record.
type Request struct {
	Answers internal.FormAnswers
	Lead    *internal.Lead
}

// Result is a persisted quote. Missing lists catalog names that had no
// active component and were skipped.
type Result struct {
	Quote      internal.Quote
	Missing    []string
	QuoteRowID int64
	LeadID     *int64
}

// CreateQuote validates the answers, calculates a quote against the
// current catalog snapshot and stores it together with the lead.
func (s *Service) CreateQuote(ctx context.Context, req Request) (Result, error) {
	if err := ValidateAnswers(req.Answers); err != nil {
		return Result{}, err
	}

	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog: %w", err)
	}
	if snapshot.Len() == 0 {
		s.log.Warnw("catalog snapshot is empty, quote will have no priced items")
	}

	calc := quote.NewCalculator(s.cfg, snapshot, s.tables, s.log)
	q, lines := calc.CalculateDetailed(req.Answers)

	missing := lo.FilterMap(lines, func(l quote.LineResult, _ int) (string, bool) {
		return l.Missing, !l.Priced()
	})
	for _, name := range missing {
		s.log.Warnw("component missing from catalog, line skipped", "component", name, "quoteId", q.ID)
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return Result{}, fmt.Errorf("encode answers: %w", err)
	}

	var leadID *int64
	if req.Lead != nil {
		id, err := s.db.InsertLead(*req.Lead)
		if err != nil {
			return Result{}, fmt.Errorf("store lead: %w", err)
		}
		leadID = &id
	}

	rowID, err := s.db.InsertQuote(q, leadID, string(answersJSON))
	if err != nil {
		return Result{}, fmt.Errorf("store quote: %w", err)
	}

	s.log.Infow("quote created",
		"quoteId", q.ID,
		"items", len(q.Items),
		"subtotal", q.Subtotal.String(),
		"totalWithTax", q.TotalWithTax.String(),
		"estimatedDays", q.EstimatedDays,
	)
	return Result{Quote: q, Missing: missing, QuoteRowID: rowID, LeadID: leadID}, nil
}
