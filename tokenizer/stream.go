package tokenizer

import "iter"

// TokenStream is a pull-based cursor over a token iterator with bounded
// lookahead. Peek(n) fills the internal buffer to n+1 entries on demand, so
// long patterns are never fully materialized up front.
type TokenStream struct {
	next     func() (Token, error, bool)
	stop     func()
	buffer   []Token
	eofToken Token
	eofSeen  bool
}

// NewTokenStream creates a TokenStream over the tokenizer's iterator.
func NewTokenStream(t *PatternTokenizer) *TokenStream {
	next, stop := iter.Pull2(iter.Seq2[Token, error](t.Tokens()))

	return &TokenStream{
		next:     next,
		stop:     stop,
		eofToken: Token{Type: EOF},
	}
}

// fill ensures the buffer holds at least n+1 tokens. Past end of input the
// EOF sentinel repeats.
func (s *TokenStream) fill(n int) error {
	for len(s.buffer) <= n {
		if s.eofSeen {
			s.buffer = append(s.buffer, s.eofToken)
			continue
		}

		token, err, ok := s.next()
		if err != nil {
			return err
		}
		if !ok {
			s.eofSeen = true
			continue
		}

		if token.Type == EOF {
			s.eofSeen = true
			s.eofToken = token
		}

		s.buffer = append(s.buffer, token)
	}

	return nil
}

// Current returns the token under the cursor.
func (s *TokenStream) Current() (Token, error) {
	return s.Peek(0)
}

// Peek returns the token n positions ahead of the cursor (Peek(0) == Current).
func (s *TokenStream) Peek(n int) (Token, error) {
	if err := s.fill(n); err != nil {
		return Token{}, err
	}
	return s.buffer[n], nil
}

// Advance consumes and returns the token under the cursor.
func (s *TokenStream) Advance() (Token, error) {
	token, err := s.Current()
	if err != nil {
		return Token{}, err
	}

	s.buffer = s.buffer[1:]

	return token, nil
}

// EOF reports whether the cursor has reached the end-of-stream sentinel.
func (s *TokenStream) EOF() bool {
	token, err := s.Current()
	if err != nil {
		return false
	}
	return token.Type == EOF
}

// Close releases the underlying iterator.
func (s *TokenStream) Close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}
