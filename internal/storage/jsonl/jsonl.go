// Package jsonl reads and writes record streams as JSON Lines.
//
// Each line holds one record of one issue:
//
//	{"issue":"<id>","hash":"<hash>","files":{"text":"<base64>",".type/Commented":""}}
//
// Lines of the same issue appear in fold order.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sitproject/sit/internal/storage"
	"github.com/sitproject/sit/internal/storage/memory"
	"github.com/sitproject/sit/internal/types"
)

// maxLineSize bounds a single exported record.
const maxLineSize = 64 * 1024 * 1024

// Line is one record in an export.
type Line struct {
	Issue string `json:"issue"`
	types.Record
}

// LoadResult contains statistics about a load.
type LoadResult struct {
	Lines int
	// Duplicates counts records dropped because an earlier line of the
	// same issue had the same hash.
	Duplicates int
	Issues     int
}

// Load reads an export into a memory store. Blank lines are skipped. A
// repeated (issue, hash) pair keeps its first occurrence, so concatenated
// exports of the same repository fold the same way as a single one.
func Load(r io.Reader) (*memory.Store, *LoadResult, error) {
	store := memory.New()
	result := &LoadResult{}
	seen := make(map[string]map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var line Line
		if err := json.Unmarshal(data, &line); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if line.Issue == "" || line.Hash == "" {
			return nil, nil, fmt.Errorf("line %d: issue and hash are required", lineNo)
		}
		result.Lines++
		hashes, ok := seen[line.Issue]
		if !ok {
			hashes = make(map[string]bool)
			seen[line.Issue] = hashes
			result.Issues++
		}
		if hashes[line.Hash] {
			result.Duplicates++
			continue
		}
		hashes[line.Hash] = true
		if line.Files == nil {
			line.Files = map[string][]byte{}
		}
		store.Append(line.Issue, line.Record)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading export: %w", err)
	}
	return store, result, nil
}

// Writer writes records as JSON Lines.
type Writer struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter returns a Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{w: bw, enc: json.NewEncoder(bw)}
}

// Write appends one record of issueID.
func (w *Writer) Write(issueID string, rec types.Record) error {
	return w.enc.Encode(Line{Issue: issueID, Record: rec})
}

// Flush writes buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Export writes every record of every issue in src, issue by issue, and
// returns the number of records written.
func Export(ctx context.Context, w *Writer, src storage.Source) (int, error) {
	ids, err := src.Issues(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		for rec, err := range src.Records(ctx, id) {
			if err != nil {
				return n, fmt.Errorf("exporting %s: %w", id, err)
			}
			if err := w.Write(id, rec); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, w.Flush()
}
