// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"golang.org/x/sys/windows"
)

// stillActive — код состояния GetExitCodeProcess для работающего процесса
const stillActive uint32 = 259

// windowsOps — рабочая реализация systemOps поверх Windows API
type windowsOps struct{}

// ProcessExists проверяет, работает ли процесс с указанным PID.
// Дескриптор открывается только на время одной проверки и сразу закрывается
func (windowsOps) ProcessExists(pid uint32) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		// Несуществующий процесс и отказ в доступе равнозначны: ждать больше нечего
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}
