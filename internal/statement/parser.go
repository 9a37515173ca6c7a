// Package statement parses tabular bank statements into transaction
// candidates. Extraction runs an ordered chain of strategies and stops at
// the first one producing a non-empty result; strategy failures are logged
// and swallowed so one bad detector never aborts the document.
package statement

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mlevkov/docledger/internal/domain"
)

// ParseResult is the outcome of running the strategy chain over one
// document.
type ParseResult struct {
	Transactions []domain.CandidateTransaction `json:"transactions"`
	Method       string                        `json:"method"`
	Success      bool                          `json:"success"`
	Message      string                        `json:"message"`
}

// Parser runs extraction strategies in priority order.
type Parser struct {
	strategies []Strategy
	log        zerolog.Logger
}

// NewParser builds a parser over the given strategies, tried in order.
func NewParser(log zerolog.Logger, strategies ...Strategy) *Parser {
	return &Parser{strategies: strategies, log: log}
}

// NewDefaultParser wires the standard chain: geometry-based grid detection
// first, whitespace-layout detection second.
func NewDefaultParser(log zerolog.Logger, classifier *Classifier) *Parser {
	return NewParser(log,
		NewGridStrategy(classifier),
		NewTextStrategy(classifier),
	)
}

// Parse runs the chain over the raw document bytes. It never returns an
// error: exhausting every strategy yields a ParseResult with Success=false.
func (p *Parser) Parse(data []byte) *ParseResult {
	for _, strategy := range p.strategies {
		txs, err := strategy.Extract(data)
		if err != nil {
			p.log.Warn().
				Err(err).
				Str("strategy", strategy.Name()).
				Msg("Extraction strategy failed, trying next")
			continue
		}
		if len(txs) == 0 {
			p.log.Debug().
				Str("strategy", strategy.Name()).
				Msg("Extraction strategy found no transactions")
			continue
		}
		return &ParseResult{
			Transactions: txs,
			Method:       strategy.Name(),
			Success:      true,
			Message:      fmt.Sprintf("Successfully parsed %d transactions", len(txs)),
		}
	}

	return &ParseResult{
		Transactions: []domain.CandidateTransaction{},
		Method:       "none",
		Success:      false,
		Message:      "Unable to extract transaction data from the statement",
	}
}
