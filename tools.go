//go:build tools
// +build tools

// Package tools pins CLI tools used during development so their versions
// are tracked in go.mod.
//
// Regenerate API docs with: swag init -g cmd/api/main.go -o docs
package tools

import (
	_ "github.com/swaggo/swag/cmd/swag"
)
