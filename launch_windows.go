// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"os/exec"
	"syscall"
)

// Флаги CreateProcess
const (
	createBreakawayFromJob uint32 = 0x01000000 // Запускает процесс отдельно от родительского (переживает завершение RestartHelper)
	createNewProcessGroup  uint32 = 0x00000200 // Создаёт независимую группу процессов (изолирует управляющие сигналы)
)

// LaunchDetached запускает программу в фоне независимо от текущего процесса.
// Вывод и код завершения запущенного процесса не отслеживаются
func (windowsOps) LaunchDetached(exe string, args []string) error {
	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createBreakawayFromJob | createNewProcessGroup,
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	// Освобождает дескриптор сразу: дочерний процесс дальше не сопровождается
	return cmd.Process.Release()
}
