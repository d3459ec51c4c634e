package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool hands out parsers for one grammar. Parsers are created lazily
// up to maxSize; past that, acquire blocks until one is released.
type parserPool struct {
	pool    chan *ts.Parser
	langPtr unsafe.Pointer
	key     poolKey
	maxSize int
	logger  *slog.Logger

	mu      sync.Mutex
	created int
}

func newParserPool(key poolKey, langPtr unsafe.Pointer, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		langPtr: langPtr,
		key:     key,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
	}

	p.mu.Lock()
	if p.created >= p.maxSize {
		p.mu.Unlock()
		return <-p.pool, nil
	}

	parser := ts.NewParser()
	if parser == nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("failed to create %s parser", p.key)
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
		parser.Close()
		p.mu.Unlock()
		return nil, fmt.Errorf("failed to set %s grammar: %w", p.key, err)
	}
	p.created++
	p.mu.Unlock()

	p.logger.Debug("Created parser", "grammar", p.key.String(), "pool_size", p.created)
	return parser, nil
}

func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	select {
	case p.pool <- parser:
	default:
		parser.Close()
	}
}

func (p *parserPool) close() int {
	close(p.pool)
	n := 0
	for parser := range p.pool {
		parser.Close()
		n++
	}
	return n
}

func (p *parserPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
