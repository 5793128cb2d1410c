// Package floor holds the table and order lifecycle rules. Every operation
// takes the last-known document and returns a complete replacement document
// or a typed error; the input is never modified.
package floor

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

const (
	tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	tokenLength   = 6
)

type Engine struct {
	Now      func() time.Time
	NewID    func() string
	NewToken func() string
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now, NewID: newID, NewToken: newSessionToken}
}

func (e *Engine) millis() int64 { return e.Now().UnixMilli() }

// newID returns a UUIDv7 so ids sort by creation time.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func newSessionToken() string {
	var b [tokenLength]byte
	_, _ = rand.Read(b[:])
	out := make([]byte, tokenLength)
	for i, v := range b {
		out[i] = tokenAlphabet[int(v)%len(tokenAlphabet)]
	}
	return string(out)
}
