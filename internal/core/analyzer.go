package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/moredip/session-share/pkg/models"
	"github.com/tidwall/gjson"
)

// TranscriptAnalyzer folds a JSONL transcript into aggregate statistics.
type TranscriptAnalyzer interface {
	Analyze(path string) (*models.SessionAnalysis, error)
	AnalyzeReader(r io.Reader) (*models.SessionAnalysis, error)
}

type analyzer struct{}

// NewTranscriptAnalyzer creates a TranscriptAnalyzer.
func NewTranscriptAnalyzer() TranscriptAnalyzer {
	return &analyzer{}
}

func (a *analyzer) Analyze(path string) (*models.SessionAnalysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %s: %w", path, err)
	}
	defer f.Close()

	result, err := a.AnalyzeReader(f)
	if err != nil {
		return nil, fmt.Errorf("analyzing transcript %s: %w", path, err)
	}
	return result, nil
}

// AnalyzeReader reads r one line at a time. Lines are not length-limited;
// only the current line is held in memory. A line that is not a JSON object
// is counted in SkippedLines and contributes to nothing else.
func (a *analyzer) AnalyzeReader(r io.Reader) (*models.SessionAnalysis, error) {
	acc := newAccumulator()
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			acc.add(bytes.TrimSpace(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading transcript: %w", err)
		}
	}
	return acc.result(), nil
}

type accumulator struct {
	entries  map[string]int
	blocks   map[string]int
	tools    map[string]struct{}
	thinking bool
	images   bool
	total    int
	skipped  int
}

func newAccumulator() *accumulator {
	return &accumulator{
		entries: make(map[string]int),
		blocks:  make(map[string]int),
		tools:   make(map[string]struct{}),
	}
}

// tag returns the "type" field of a record or block. A missing field yields
// def; an explicit null yields the empty string.
func tag(obj gjson.Result, def string) string {
	t := obj.Get("type")
	if !t.Exists() {
		return def
	}
	if t.Type == gjson.Null {
		return ""
	}
	return t.String()
}

func (acc *accumulator) add(line []byte) {
	if len(line) == 0 {
		return
	}
	if !gjson.ValidBytes(line) {
		acc.skipped++
		return
	}
	rec := gjson.ParseBytes(line)
	if !rec.IsObject() {
		acc.skipped++
		return
	}

	acc.total++
	acc.entries[tag(rec, string(models.EntryUnknown))]++

	msg := rec.Get("message")
	if !msg.IsObject() {
		return
	}
	content := msg.Get("content")
	if !content.IsArray() {
		return
	}
	content.ForEach(func(_, block gjson.Result) bool {
		if block.IsObject() {
			acc.addBlock(block)
		}
		return true
	})
}

func (acc *accumulator) addBlock(block gjson.Result) {
	bt := models.BlockType(tag(block, ""))
	acc.blocks[string(bt)]++

	switch bt {
	case models.BlockToolUse:
		if name := block.Get("name"); name.Type == gjson.String && name.Str != "" {
			acc.tools[name.Str] = struct{}{}
		}
	case models.BlockThinking:
		acc.thinking = true
	case models.BlockImage:
		acc.images = true
	case models.BlockToolResult:
		// Nested content is inspected one level deep, for images only.
		inner := block.Get("content")
		if !inner.IsArray() {
			return
		}
		inner.ForEach(func(_, nested gjson.Result) bool {
			if nested.IsObject() && models.BlockType(tag(nested, "")) == models.BlockImage {
				acc.images = true
				return false
			}
			return true
		})
	}
}

func (acc *accumulator) result() *models.SessionAnalysis {
	tools := make([]string, 0, len(acc.tools))
	for name := range acc.tools {
		tools = append(tools, name)
	}
	sort.Strings(tools)
	return &models.SessionAnalysis{
		EntryTypeCounts:    acc.entries,
		ContentBlockCounts: acc.blocks,
		ToolsUsed:          tools,
		HasThinking:        acc.thinking,
		HasImages:          acc.images,
		TotalEntries:       acc.total,
		SkippedLines:       acc.skipped,
	}
}
