package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"mifi/internal/log"
	"mifi/internal/ports"
)

// Summary reports what an import did.
type Summary struct {
	Parsed   int
	Inserted int
	Skipped  int // duplicates already stored plus unusable lines
	Warnings []string
}

// Service parses statements and hands the rows to a writer.
type Service struct {
	parser *MBank
	writer ports.TransactionWriter
	logger *log.Logger
}

func NewService(parser *MBank, writer ports.TransactionWriter, logger *log.Logger) *Service {
	if parser == nil {
		parser = NewMBank()
	}
	return &Service{
		parser: parser,
		writer: writer,
		logger: log.OrDefault(logger).WithComponent(log.ComponentImporter),
	}
}

// ImportMBank parses r and stores the result. Nothing is written when the
// statement cannot be parsed.
func (s *Service) ImportMBank(ctx context.Context, name string, r io.Reader) (Summary, error) {
	start := time.Now()
	res, err := s.parser.Parse(r)
	if err != nil {
		return Summary{}, fmt.Errorf("parse %s: %w", name, err)
	}
	for _, w := range res.Warnings {
		s.logger.WarnContext(ctx, "statement line", log.FieldFile, name, "warning", w)
	}

	sum := Summary{Parsed: len(res.Transactions), Skipped: res.Skipped, Warnings: res.Warnings}
	if len(res.Transactions) == 0 {
		return sum, nil
	}

	inserted, dup, err := s.writer.AppendTransactions(ctx, res.Transactions)
	if err != nil {
		return sum, fmt.Errorf("store %s: %w", name, err)
	}
	sum.Inserted = inserted
	sum.Skipped += dup

	s.logger.InfoContext(ctx, "statement imported",
		log.FieldFile, name,
		log.FieldCount, inserted,
		log.FieldSkipped, sum.Skipped,
		log.FieldDuration, time.Since(start).Milliseconds())
	return sum, nil
}
