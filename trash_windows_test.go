// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubDeleteCalls подменяет все три механизма удаления и записывает порядок их вызовов
func stubDeleteCalls(t *testing.T, calls *[]string, trashOK, removeOK, removeAllOK bool) {
	t.Helper()
	trashPath = func(string) bool {
		*calls = append(*calls, "trash")
		return trashOK
	}
	removePath = func(string) error {
		*calls = append(*calls, "remove")
		if removeOK {
			return nil
		}
		return errors.New("занят")
	}
	removeAllPath = func(string) error {
		*calls = append(*calls, "removeAll")
		if removeAllOK {
			return nil
		}
		return errors.New("занят")
	}
	t.Cleanup(func() {
		trashPath = sendToTrash
		removePath = os.Remove
		removeAllPath = os.RemoveAll
	})
}

func TestSoftDeleteFallbackOrder(t *testing.T) {
	tests := []struct {
		name      string
		trashOK   bool
		removeOK  bool
		removeAll bool
		want      bool
		wantCalls []string
	}{
		// Корзина сработала — безвозвратное удаление не пробуется вовсе
		{"trash success skips fallback", true, true, true, true, []string{"trash"}},
		// Корзина недоступна — сначала попытка как файл
		{"fallback as file", false, true, true, true, []string{"trash", "remove"}},
		// Файлом не удалилось — затем как каталог
		{"fallback as directory", false, false, true, true, []string{"trash", "remove", "removeAll"}},
		{"all attempts fail", false, false, false, false, []string{"trash", "remove", "removeAll"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			stubDeleteCalls(t, &calls, tt.trashOK, tt.removeOK, tt.removeAll)

			got := windowsOps{}.SoftDelete(filepath.Join(t.TempDir(), "myaddon"))
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestSoftDeleteDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myaddon")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "__init__.py"), []byte("# init"), 0o644))

	require.True(t, windowsOps{}.SoftDelete(dir))

	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}

func TestSoftDeleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.ankiaddon")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	require.True(t, windowsOps{}.SoftDelete(path))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
