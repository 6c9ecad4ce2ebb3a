// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/charmap"
)

// manifestName — имя манифеста внутри пакета дополнения
const manifestName = "manifest.json"

// addonManifest описывает manifest.json внутри пакета дополнения
type addonManifest struct {
	Package string `json:"package"` // Имя каталога, в который будет установлено дополнение
	Name    string `json:"name"`    // Отображаемое имя дополнения
}

// isPackageFile проверяет, оканчивается ли путь расширением пакета дополнения.
// Сравнение точное, с учётом регистра; пустая строка пакетом не считается
func isPackageFile(path string) bool {
	return strings.HasSuffix(path, packageSuffix)
}

// logPackageDetails пишет в лог сведения о подготавливаемом пакете.
// Только диагностика: любая ошибка — предупреждение, ход работы не меняется
func logPackageDetails(path string) {
	if sum, err := packageChecksum(path); err == nil {
		log.Printf("Контрольная сумма пакета (XXH3): %s", sum)
	} else {
		log.Printf("Предупреждение: не удалось вычислить контрольную сумму пакета: %v", err)
	}

	man, entries, err := inspectPackage(path)
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать пакет: %v", err)
		return
	}
	if man.Name != "" || man.Package != "" {
		log.Printf("Пакет дополнения: %q (package=%s), файлов: %d", man.Name, man.Package, entries)
	} else {
		log.Printf("Пакет дополнения без манифеста, файлов: %d", entries)
	}
}

// inspectPackage открывает пакет как ZIP-архив, считает файлы и читает манифест (если есть)
func inspectPackage(path string) (addonManifest, int, error) {
	var man addonManifest

	r, err := zip.OpenReader(path)
	if err != nil {
		return man, 0, err
	}
	defer r.Close()

	entries := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries++

		if !strings.EqualFold(normalizeZipName(f.Name), manifestName) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return man, entries, fmt.Errorf("манифест недоступен: %w", err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return man, entries, fmt.Errorf("ошибка чтения манифеста: %w", err)
		}
		if err := json.Unmarshal(b, &man); err != nil {
			return man, entries, fmt.Errorf("повреждён %s: %w", manifestName, err)
		}
	}
	return man, entries, nil
}

// packageChecksum возвращает потоковый хеш XXH3 файла пакета
func packageChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := xxh3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// normalizeZipName преобразует имя записи ZIP-архива в корректный UTF-8.
// Имена не в UTF-8 пробуются в основных кодировках для кириллицы
func normalizeZipName(n string) string {
	n = strings.TrimLeft(n, "/\\")
	if n == "" || utf8.ValidString(n) {
		return n
	}

	raw := []byte(n)
	candidates := make([]string, 0, 3)
	for _, cm := range []*charmap.Charmap{charmap.Windows1251, charmap.CodePage866, charmap.CodePage437} {
		if b, err := cm.NewDecoder().Bytes(raw); err == nil {
			candidates = append(candidates, string(b))
		}
	}

	// Выбирает кандидата с наибольшим числом распознанных символов
	best := n
	bestScore := -1
	for _, s := range candidates {
		if sc := scoreName(s); sc > bestScore {
			best = s
			bestScore = sc
		}
	}
	return best
}

// scoreName подсчитывает количество символов, похожих на кириллицу или служебные символы имени файла
func scoreName(s string) int {
	cnt := 0
	for _, r := range s {
		if (r >= 0x0400 && r <= 0x04FF) || r == ' ' || r == '.' || r == '_' || r == '-' || (r >= '0' && r <= '9') {
			cnt++
		}
	}
	return cnt
}
