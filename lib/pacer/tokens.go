// Tokens for controlling concurrency

package pacer

import "context"

// TokenDispenser is for controlling concurrency
type TokenDispenser struct {
	tokens chan struct{}
}

// NewTokenDispenser makes a pool of n tokens
func NewTokenDispenser(n int) *TokenDispenser {
	if n < 1 {
		n = 1
	}
	td := &TokenDispenser{
		tokens: make(chan struct{}, n),
	}
	// Fill up the tokens
	for i := 0; i < n; i++ {
		td.tokens <- struct{}{}
	}
	return td
}

// Get gets a token from the pool - don't forget to return it with Put
//
// It returns an error without a token if ctx is done first.
func (td *TokenDispenser) Get(ctx context.Context) error {
	select {
	case <-td.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Put returns a token
func (td *TokenDispenser) Put() {
	td.tokens <- struct{}{}
}
