// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	logDirName  = "log"                   // Подкаталог для логов рядом с исполняемым файлом
	logFileName = "log_RestartHelper.log" // Название лог-файла
	maxLogSize  = 512_000                 // Порог ротации лог-файла в байтах
)

// rotatingWriter — потокобезопасный писатель лог-файла с ротацией по размеру.
// Хранится текущий файл и один архив с суффиксом "_old"
type rotatingWriter struct {
	path  string
	limit int64
	mu    sync.Mutex
}

// initLogging направляет лог одновременно в stderr и ротируемый файл.
// Несколько запусков пишут в общий файл, поэтому каждый помечается идентификатором сессии
func initLogging() {
	dir := filepath.Join(exeDir(), logDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Предупреждение: не удалось подготовить каталог логов %s: %v (лог только в stderr)", dir, err)
		return
	}

	logPath := filepath.Join(dir, logFileName)
	log.SetOutput(io.MultiWriter(os.Stderr, &rotatingWriter{path: logPath, limit: maxLogSize}))
	log.Printf("Лог инициализирован: %s (сессия %s)", logPath, uuid.New())
}

// Write реализует io.Writer, при необходимости выполняя ротацию перед записью
func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if info, err := os.Stat(w.path); err == nil && info.Size() >= w.limit {
		rotateLog(w.path)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

// rotateLog замещает архивный файл текущим: "x.log" -> "x_old.log"
func rotateLog(path string) {
	ext := filepath.Ext(path)
	old := strings.TrimSuffix(path, ext) + "_old" + ext
	_ = os.Remove(old)
	_ = os.Rename(path, old)
}

// exeDir возвращает директорию, в которой находится исполняемый файл
func exeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
