package script

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Version is written into generated scripts.
const Version = "1.0"

// Script is an importance script: per-line importance curves for a
// transcript, applied by line index.
type Script struct {
	Version string `yaml:"version"`
	Source  string `yaml:"source,omitempty"` // transcript the script was made for
	Lines   []Line `yaml:"lines"`
}

// Line holds one importance per word of a lyric line.
type Line struct {
	Index      int       `yaml:"index"`
	Text       string    `yaml:"text,omitempty"`
	Importance []float64 `yaml:"importance"`
	Instrument string    `yaml:"instrument,omitempty"`
}

var ErrInvalidScript = errors.New("invalid importance script")

// Generate builds a neutral script (every word at 0.5) for lines of words.
func Generate(source string, lines [][]string) *Script {
	s := &Script{Version: Version, Source: source, Lines: make([]Line, len(lines))}
	for i, words := range lines {
		imp := make([]float64, len(words))
		for j := range imp {
			imp[j] = 0.5
		}
		s.Lines[i] = Line{Index: i, Text: strings.Join(words, " "), Importance: imp}
	}
	return s
}

// Validate checks indices and value ranges.
func (s *Script) Validate() error {
	seen := make(map[int]bool, len(s.Lines))
	for _, ln := range s.Lines {
		if ln.Index < 0 {
			return fmt.Errorf("line index %d: %w", ln.Index, ErrInvalidScript)
		}
		if seen[ln.Index] {
			return fmt.Errorf("line %d listed twice: %w", ln.Index, ErrInvalidScript)
		}
		seen[ln.Index] = true
		for j, v := range ln.Importance {
			if math.IsNaN(v) || v < 0 || v > 1 {
				return fmt.Errorf("line %d word %d importance %v: %w", ln.Index, j, v, ErrInvalidScript)
			}
		}
	}
	return nil
}

// Importances returns the curves indexed by line. Lines the script does
// not mention are nil.
func (s *Script) Importances() [][]float64 {
	size := 0
	for _, ln := range s.Lines {
		if ln.Index+1 > size {
			size = ln.Index + 1
		}
	}
	out := make([][]float64, size)
	for _, ln := range s.Lines {
		if ln.Index >= 0 {
			out[ln.Index] = ln.Importance
		}
	}
	return out
}
