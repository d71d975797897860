// Package source provides a file-backed container so the CLI can run the
// full sampling pipeline against NDJSON or JSON-array document dumps.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/oneiriq/cosmiq-graphql/pkg/cosmos"
)

// FileContainer serves documents from a local dump. Request charges are zero;
// there is no store to bill against.
type FileContainer struct {
	docs []cosmos.Document
}

// Load reads documents from path, or stdin when path is "-". The format is
// detected: a leading '[' means one JSON array, anything else is NDJSON.
func Load(path string) (*FileContainer, error) {
	if path == "-" {
		return FromReader(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document dump: %w", err)
	}
	defer f.Close()
	return FromReader(f)
}

// FromReader parses documents from r.
func FromReader(r io.Reader) (*FileContainer, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document dump: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)

	var docs []cosmos.Document
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("parsing JSON array dump: %w", err)
		}
		return &FileContainer{docs: docs}, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var doc cosmos.Document
		if err := json.Unmarshal(text, &doc); err != nil {
			return nil, fmt.Errorf("parsing NDJSON line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning document dump: %w", err)
	}
	return &FileContainer{docs: docs}, nil
}

// Len returns the number of loaded documents.
func (f *FileContainer) Len() int {
	return len(f.docs)
}

// Query implements cosmos.Container. Strategy top pages in file order,
// recent in reverse, random in a shuffled order.
func (f *FileContainer) Query(spec cosmos.QuerySpec) cosmos.Pager {
	ordered := make([]cosmos.Document, len(f.docs))
	copy(ordered, f.docs)

	switch spec.Strategy {
	case cosmos.StrategyRecent:
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	case cosmos.StrategyRandom:
		rand.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	pageSize := spec.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &filePager{docs: ordered, pageSize: pageSize}
}

type filePager struct {
	docs     []cosmos.Document
	pageSize int
	offset   int
}

func (p *filePager) More() bool {
	return p.offset < len(p.docs)
}

func (p *filePager) Next(ctx context.Context) (cosmos.FeedPage, error) {
	if err := ctx.Err(); err != nil {
		return cosmos.FeedPage{}, err
	}
	end := p.offset + p.pageSize
	if end > len(p.docs) {
		end = len(p.docs)
	}
	page := cosmos.FeedPage{Documents: p.docs[p.offset:end]}
	p.offset = end
	return page, nil
}
