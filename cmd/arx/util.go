package main

import (
	"errors"
	"path/filepath"
)

func isErr(err, target error) bool {
	return errors.Is(err, target)
}

func parentOf(path string) string {
	return filepath.Dir(path)
}
