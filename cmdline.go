// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"strings"
)

// escapeArgWin приводит один аргумент к виду, который CreateProcess разберёт обратно без искажений
func escapeArgWin(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\"") {
		return s // Без пробелов и кавычек экранирование не требуется
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			slashes++
		case '"':
			// Обратные слэши перед кавычкой удваиваются, сама кавычка экранируется
			b.WriteString(strings.Repeat(`\`, slashes*2+1))
			b.WriteByte('"')
			slashes = 0
		default:
			for ; slashes > 0; slashes-- {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
	}

	// Слэши в конце тоже удваиваются, иначе они экранировали бы закрывающую кавычку
	b.WriteString(strings.Repeat(`\`, slashes*2))
	b.WriteByte('"')
	return b.String()
}

// buildCommandLine собирает аргументы в строку командной строки Windows
func buildCommandLine(args []string) string {
	escaped := make([]string, len(args))
	for i, a := range args {
		escaped[i] = escapeArgWin(a)
	}
	return strings.Join(escaped, " ")
}
