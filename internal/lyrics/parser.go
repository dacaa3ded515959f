package lyrics

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

// Mode selects the transcript grammar.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeEnhanced Mode = "enhanced"
	ModeAuto     Mode = "auto"
)

// DefaultMaxIterations bounds the word scan of one enhanced line.
const DefaultMaxIterations = 1000

// Options configures a Parser.
type Options struct {
	Mode          Mode
	Strict        bool
	MaxIterations int
	TailSec       float64
}

// Parser turns transcripts into timing records. It keeps no state between
// calls.
type Parser struct {
	opts Options
	log  logrus.FieldLogger
}

func NewParser(opts Options, log logrus.FieldLogger) *Parser {
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.TailSec <= 0 {
		opts.TailSec = DefaultTailSec
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Parser{opts: opts, log: log.WithField("component", "lyrics")}
}

// sourceLine is a non-empty input line with its leading [mm:ss.cc] split off.
type sourceLine struct {
	num      int
	text     string
	startSec float64
	body     int // byte offset just past ']'
}

// word is one enhanced-mode word before sentence times are known.
type word struct {
	text     string
	startSec float64
	endSec   float64
	hasEnd   bool
}

// ParseString parses an in-memory transcript.
func (p *Parser) ParseString(s string) Result {
	res, _ := p.Parse(strings.NewReader(s))
	return res
}

// Parse reads a transcript. Malformed lines become diagnostics; the error
// is reserved for read failures.
func (p *Parser) Parse(r io.Reader) (Result, error) {
	var (
		res   Result
		lines []sourceLine
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	num := 0
	for sc.Scan() {
		num++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		ln, err := splitLineTime(num, text)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, err)
			continue
		}
		lines = append(lines, ln)
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read transcript: %w", err)
	}

	res.Mode = p.opts.Mode
	if res.Mode == ModeAuto {
		res.Mode = detectMode(lines)
	}
	if res.Mode == ModeEnhanced {
		p.parseEnhanced(lines, &res)
	} else {
		p.parseBasic(lines, &res)
	}

	for _, d := range res.Diagnostics {
		p.log.WithFields(logrus.Fields{"line": d.Line, "reason": d.Reason}).Warnf("[!] %v", d.Err)
	}
	return res, nil
}

func splitLineTime(num int, text string) (sourceLine, *ParseError) {
	open := strings.IndexByte(text, '[')
	closeIdx := strings.IndexByte(text, ']')
	if open != 0 || closeIdx < 0 {
		return sourceLine{}, &ParseError{Line: num, Text: text, Err: ErrMissingLineTime}
	}
	sec, err := ParseTimecode(text[1:closeIdx])
	if err != nil {
		return sourceLine{}, &ParseError{Line: num, Text: text, Reason: err.Error(), Err: ErrMissingLineTime}
	}
	return sourceLine{num: num, text: text, startSec: sec, body: closeIdx + 1}, nil
}

func detectMode(lines []sourceLine) Mode {
	for _, ln := range lines {
		if strings.ContainsRune(ln.text[ln.body:], '<') {
			return ModeEnhanced
		}
	}
	return ModeBasic
}

// parseBasic emits one record per line. A line lasts until the next line
// starts. Lines with no text only close the previous line.
func (p *Parser) parseBasic(lines []sourceLine, res *Result) {
	ordinal := 0
	for i, ln := range lines {
		text := normalize(ln.text[ln.body:])
		if text == "" {
			continue
		}
		end := ln.startSec + p.opts.TailSec
		if i+1 < len(lines) {
			end = lines[i+1].startSec
		}
		res.Records = append(res.Records, Record{
			Text:           text,
			StartSec:       ln.startSec,
			IsSentenceEnd:  true,
			WordEndSec:     end,
			SentenceEndSec: end,
			Line:           ordinal,
		})
		ordinal++
	}
}

func (p *Parser) parseEnhanced(lines []sourceLine, res *Result) {
	ordinal := 0
	for i, ln := range lines {
		words, diag := p.scanWords(ln)
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, diag)
		}
		if len(words) == 0 {
			continue
		}

		last := words[len(words)-1]
		var sentenceEnd float64
		switch {
		case i+1 < len(lines):
			sentenceEnd = lines[i+1].startSec
		case last.hasEnd:
			sentenceEnd = last.endSec
		default:
			sentenceEnd = last.startSec + p.opts.TailSec
		}

		for j, w := range words {
			end := w.endSec
			if !w.hasEnd || j == len(words)-1 {
				end = sentenceEnd
			}
			res.Records = append(res.Records, Record{
				Text:           w.text,
				StartSec:       w.startSec,
				IsSentenceEnd:  j == len(words)-1,
				WordEndSec:     end,
				SentenceEndSec: sentenceEnd,
				Line:           ordinal,
			})
		}
		ordinal++
	}
}

// scanWords walks one enhanced line. The scan looks for the next character
// that cannot belong to a timestamp, takes the <...> pair before it as the
// word's start and the next pair as its end. A returned diagnostic means
// the line was cut short; the words before it are still returned.
func (p *Parser) scanWords(ln sourceLine) ([]word, *ParseError) {
	line := ln.text
	cursor := ln.body
	var words []word

	fail := func(err error, reason string) ([]word, *ParseError) {
		return words, &ParseError{Line: ln.num, Text: line, Reason: reason, Err: err}
	}

	for iter := 0; ; iter++ {
		if iter >= p.opts.MaxIterations {
			return fail(ErrIterationCap, fmt.Sprintf("after %d iterations", iter))
		}
		k := nextWordChar(line, cursor)
		if k < 0 {
			return words, nil
		}

		rb := strings.LastIndexByte(line[:k], '>')
		if rb < ln.body {
			return fail(ErrWordWithoutTime, fmt.Sprintf("at column %d", k+1))
		}
		lb := strings.LastIndexByte(line[:rb], '<')
		if lb < ln.body {
			return fail(ErrWordWithoutTime, fmt.Sprintf("at column %d", k+1))
		}

		start, err := ParseTimecode(line[lb+1 : rb])
		if err != nil {
			if p.opts.Strict {
				return fail(ErrMalformedTimestamp, err.Error())
			}
			start = ln.startSec
			if len(words) > 0 {
				start = words[len(words)-1].startSec
			}
		}

		nlb := strings.IndexByte(line[rb+1:], '<')
		if nlb < 0 {
			text := normalize(line[rb+1:])
			if p.opts.Strict {
				return fail(ErrNoClosingTimestamp, fmt.Sprintf("word %q", text))
			}
			if text != "" {
				words = append(words, word{text: text, startSec: start})
			}
			return words, nil
		}
		nlb += rb + 1

		nrb := strings.IndexByte(line[nlb+1:], '>')
		if nrb < 0 {
			return fail(ErrUnterminatedBracket, fmt.Sprintf("at column %d", nlb+1))
		}
		nrb += nlb + 1

		w := word{text: normalize(line[rb+1 : nlb]), startSec: start}
		if end, err := ParseTimecode(line[nlb+1 : nrb]); err == nil {
			w.endSec, w.hasEnd = end, true
		} else if p.opts.Strict {
			return fail(ErrMalformedTimestamp, err.Error())
		}
		if w.text != "" {
			words = append(words, w)
		}

		if nrb+1 <= cursor {
			return fail(ErrIterationCap, "scan made no progress")
		}
		cursor = nrb + 1
	}
}

// nextWordChar returns the index of the first byte at or after from that is
// not part of the timestamp alphabet [0-9<>: .].
func nextWordChar(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '<', c == '>', c == ':', c == ' ', c == '.':
		default:
			return i
		}
	}
	return -1
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
