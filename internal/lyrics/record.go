package lyrics

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTailSec is how long the last line of a transcript lasts when
// nothing follows it.
const DefaultTailSec = 5.0

// Record is one timed unit of a transcript: a word in enhanced mode, a full
// line in basic mode.
type Record struct {
	Text           string
	StartSec       float64
	IsSentenceEnd  bool
	WordEndSec     float64
	SentenceEndSec float64
	// Line is the ordinal of the sentence the record belongs to.
	Line int
}

// StartMs returns the start time in milliseconds.
func (r Record) StartMs() float64 { return toMs(r.StartSec) }

// WordEndMs returns the word end time in milliseconds.
func (r Record) WordEndMs() float64 { return toMs(r.WordEndSec) }

// SentenceEndMs returns the sentence end time in milliseconds, rounded so
// that words of one sentence share the same key.
func (r Record) SentenceEndMs() float64 { return toMs(r.SentenceEndSec) }

func toMs(sec float64) float64 {
	return math.Round(sec * 1000)
}

var (
	ErrMissingLineTime     = errors.New("missing line timestamp")
	ErrUnterminatedBracket = errors.New("unterminated '<'")
	ErrWordWithoutTime     = errors.New("word without timestamp")
	ErrNoClosingTimestamp  = errors.New("missing closing timestamp")
	ErrIterationCap        = errors.New("iteration cap reached")
)

// ParseError describes a recovered problem on one transcript line. Parsing
// continues after it; the words read before the problem are kept.
type ParseError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result is the output of a parse.
type Result struct {
	Mode        Mode
	Records     []Record
	Diagnostics []*ParseError
}

// Sentences returns the number of sentences in the result.
func (r Result) Sentences() int {
	n := 0
	for _, rec := range r.Records {
		if rec.IsSentenceEnd {
			n++
		}
	}
	return n
}

// EndSec returns the latest sentence end, which is a natural timeline length.
func (r Result) EndSec() float64 {
	var end float64
	for _, rec := range r.Records {
		end = math.Max(end, rec.SentenceEndSec)
	}
	return end
}
