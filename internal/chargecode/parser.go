// Package chargecode splits raw charge-code text into individual LC tokens.
package chargecode

import "strings"

// Split describes how a record's cost is divided across LC tokens.
type Split struct {
	Tokens []string  // distinct LC tokens in source order; empty when input is blank
	Shares []float64 // equal percentage share per token, summing to 100
}

// Parse splits a raw charge-code field on comma, slash or semicolon, trims
// whitespace and drops empty or duplicate tokens. Each of the N surviving
// tokens receives a 100/N share. No validation happens here; whether a token
// is a real LC is decided by ledger lookup downstream.
func Parse(raw string) Split {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return Split{}
	}
	share := 100.0 / float64(len(tokens))
	shares := make([]float64, len(tokens))
	for i := range shares {
		shares[i] = share
	}
	return Split{Tokens: tokens, Shares: shares}
}

func tokenize(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '/' || r == ';'
	})
	seen := make(map[string]bool, len(fields))
	var tokens []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}
