// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectLockerCandidatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.ankiaddon")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	// Одиночный файл регистрируется ровно один раз
	require.Equal(t, []string{path}, collectLockerCandidates(path))
}

func TestCollectLockerCandidatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myaddon")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	a := filepath.Join(dir, "__init__.py")
	b := filepath.Join(dir, "sub", "data.txt")
	require.NoError(t, os.WriteFile(a, []byte("# init"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("data"), 0o644))

	got := collectLockerCandidates(dir)
	require.Equal(t, dir, got[0])
	require.ElementsMatch(t, []string{dir, a, b}, got)
}

func TestCollectLockerCandidatesMissingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "нет такого")
	require.Equal(t, []string{path}, collectLockerCandidates(path))
}
