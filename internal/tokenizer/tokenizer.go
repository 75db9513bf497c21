// Package tokenizer streams whitespace-delimited words out of files without
// loading them into memory. A Sequencer holds at most one line of input and
// the tokens of that line at any time.
package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"

	internalErrors "github.com/gcbaptista/go-word-finder/internal/errors"
)

const (
	// DefaultMaxLineBytes bounds the line buffer of a Sequencer (1 MiB).
	DefaultMaxLineBytes = 1 << 20

	initialBufferBytes = 4096

	// lineTerminatorBytes leaves room in the scan buffer for a trailing "\r\n".
	lineTerminatorBytes = 2
)

// Tokenize splits a single line into whitespace-delimited tokens.
// It never returns nil; a blank line yields an empty slice.
func Tokenize(line string) []string {
	tokens := strings.Fields(line)
	if tokens == nil {
		return make([]string, 0)
	}
	return tokens
}

// Option configures a Sequencer.
type Option func(*options)

type options struct {
	maxLineBytes int
}

// WithMaxLineBytes sets the largest line, excluding its terminator, the
// Sequencer accepts. Non-positive values fall back to DefaultMaxLineBytes.
func WithMaxLineBytes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineBytes = n
		}
	}
}

// Sequencer is a lazy, finite, non-restartable sequence of tokens read from
// one input. It is not safe for concurrent use.
type Sequencer struct {
	name         string
	closer       io.Closer
	scanner      *bufio.Scanner
	maxLineBytes int

	line  []string // tokens of the current line
	pos   int      // next unconsumed token in line
	count int

	done bool
	err  error
}

// Open opens name in fsys and returns a Sequencer over its words.
// Failure to open yields an *errors.OpenError.
func Open(fsys fs.FS, name string, opts ...Option) (*Sequencer, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, internalErrors.NewOpenError(name, err)
	}
	s := newSequencer(f, name, opts)
	s.closer = f
	return s, nil
}

// OpenFile opens the file at path on the local filesystem.
func OpenFile(path string, opts ...Option) (*Sequencer, error) {
	f, err := os.Open(path) // #nosec G304 -- reading user-selected files is the purpose of this package
	if err != nil {
		return nil, internalErrors.NewOpenError(path, err)
	}
	s := newSequencer(f, path, opts)
	s.closer = f
	return s, nil
}

// NewSequencer returns a Sequencer over r. If r implements io.Closer it is
// closed once the sequence is exhausted or Close is called.
func NewSequencer(r io.Reader, opts ...Option) *Sequencer {
	s := newSequencer(r, "", opts)
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func newSequencer(r io.Reader, name string, opts []Option) *Sequencer {
	o := options{maxLineBytes: DefaultMaxLineBytes}
	for _, opt := range opts {
		opt(&o)
	}

	scanBytes := o.maxLineBytes + lineTerminatorBytes
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(initialBufferBytes, scanBytes)), scanBytes)

	return &Sequencer{
		name:         name,
		scanner:      scanner,
		maxLineBytes: o.maxLineBytes,
	}
}

// Next returns the next token. The second result is false once the input is
// exhausted; every later call keeps returning false.
func (s *Sequencer) Next() (string, bool) {
	for s.pos >= len(s.line) {
		if s.done {
			return "", false
		}
		if !s.scanner.Scan() {
			s.recordScanError(s.scanner.Err())
			s.finish()
			return "", false
		}
		if len(s.scanner.Bytes()) > s.maxLineBytes {
			s.err = internalErrors.NewLineTooLongError(s.name, s.maxLineBytes)
			s.finish()
			return "", false
		}
		// Blank lines tokenize to nothing and the loop reads on.
		s.line = Tokenize(s.scanner.Text())
		s.pos = 0
	}

	token := s.line[s.pos]
	s.line[s.pos] = ""
	s.pos++
	s.count++
	return token, true
}

// All returns the remaining tokens as an iterator. Breaking out of the loop
// early closes the underlying input.
func (s *Sequencer) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		defer func() { _ = s.Close() }()
		for {
			token, ok := s.Next()
			if !ok || !yield(token) {
				return
			}
		}
	}
}

// Count returns the number of tokens produced so far.
func (s *Sequencer) Count() int {
	return s.count
}

// Err returns the error that ended the sequence early, if any.
// Reaching end of input is not an error.
func (s *Sequencer) Err() error {
	return s.err
}

// Close releases the underlying input. It is safe to call more than once and
// after the sequence has been exhausted.
func (s *Sequencer) Close() error {
	if s.done {
		return nil
	}
	s.finish()
	return s.err
}

func (s *Sequencer) recordScanError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, bufio.ErrTooLong) {
		s.err = internalErrors.NewLineTooLongError(s.name, s.maxLineBytes)
		return
	}
	if s.name != "" {
		s.err = fmt.Errorf("failed to read %s: %w", s.name, err)
		return
	}
	s.err = fmt.Errorf("failed to read input: %w", err)
}

func (s *Sequencer) finish() {
	s.done = true
	s.line = nil
	s.pos = 0
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && s.err == nil {
			s.err = fmt.Errorf("failed to close %s: %w", s.name, err)
		}
		s.closer = nil
	}
}
