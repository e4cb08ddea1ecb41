package sqlite

import (
	"strings"
)

// placeholder returns the SQLite bind marker. The position argument is
// ignored since SQLite binds positionally with "?"; it exists so the
// listing and chat query builders read the same as the postgres driver's.
func placeholder(n int) string {
	return "?"
}

// placeholders returns n comma-joined bind markers for IN clauses.
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}
