// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Restart Manager API для определения процессов, удерживающих файлы
var (
	rstrtmgr                = windows.NewLazySystemDLL("rstrtmgr.dll")
	procRmStartSession      = rstrtmgr.NewProc("RmStartSession")
	procRmRegisterResources = rstrtmgr.NewProc("RmRegisterResources")
	procRmGetList           = rstrtmgr.NewProc("RmGetList")
	procRmEndSession        = rstrtmgr.NewProc("RmEndSession")
)

const (
	cchSessionKey  = 256 // Максимальная длина ключа сессии Restart Manager
	maxLockerFiles = 16  // Предел количества файлов каталога, регистрируемых для анализа
)

// rmProcessInfo описывает информацию о процессе из Restart Manager
type rmProcessInfo struct {
	Process struct {
		DwProcessId      uint32
		ProcessStartTime windows.Filetime
	}
	StrAppName      [256]uint16
	StrServiceShort [64]uint16
	ApplicationType uint32
	AppStatus       uint32
	TSSessionId     uint32
	BRestartable    int32
}

// logLockers пишет в лог процессы, удерживающие путь, когда удаление не удалось.
// Только наблюдение: никакие процессы не завершаются
func logLockers(path string) {
	pids, err := findLockingPIDs(collectLockerCandidates(path))
	if err != nil {
		log.Printf("Предупреждение: не удалось определить удерживающие процессы: %v", err)
		return
	}
	if len(pids) == 0 {
		return
	}
	for _, pid := range pids {
		log.Printf("Путь удерживает процесс: %s (PID=%d)", processImageName(pid), pid)
	}
}

// collectLockerCandidates возвращает сам путь и первые файлы внутри него (если это каталог)
func collectLockerCandidates(path string) []string {
	files := []string{path}
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		// Сам путь уже зарегистрирован, каталоги Restart Manager не принимает
		if err != nil || d.IsDir() || p == path {
			return nil
		}
		files = append(files, p)
		if len(files) >= maxLockerFiles {
			return filepath.SkipAll
		}
		return nil
	})
	return files
}

// findLockingPIDs возвращает список PID процессов, удерживающих любой из указанных файлов
func findLockingPIDs(files []string) ([]uint32, error) {
	var sessionHandle uint32
	sessionKey := make([]uint16, cchSessionKey+1)

	// Запускает сессию Restart Manager
	ret, _, _ := procRmStartSession.Call(
		uintptr(unsafe.Pointer(&sessionHandle)),
		0,
		uintptr(unsafe.Pointer(&sessionKey[0])),
	)
	if ret != 0 {
		return nil, fmt.Errorf("RmStartSession вернул %d", ret)
	}
	defer procRmEndSession.Call(uintptr(sessionHandle))

	// Регистрирует файлы для анализа
	paths := make([]*uint16, 0, len(files))
	for _, f := range files {
		p, err := windows.UTF16PtrFromString(f)
		if err != nil {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, nil
	}
	ret, _, _ = procRmRegisterResources.Call(
		uintptr(sessionHandle),
		uintptr(len(paths)),
		uintptr(unsafe.Pointer(&paths[0])),
		0, 0, 0, 0,
	)
	if ret != 0 {
		return nil, fmt.Errorf("RmRegisterResources вернул %d", ret)
	}

	var nProcInfoNeeded, nProcInfo uint32
	var rebootReasons uint32

	// Первый вызов для определения количества процессов
	procRmGetList.Call(
		uintptr(sessionHandle),
		uintptr(unsafe.Pointer(&nProcInfoNeeded)),
		uintptr(unsafe.Pointer(&nProcInfo)),
		0,
		uintptr(unsafe.Pointer(&rebootReasons)),
	)
	if nProcInfoNeeded == 0 {
		return nil, nil // Никто не удерживает
	}

	// Выделяет буфер и получает информацию о процессах
	procInfos := make([]rmProcessInfo, nProcInfoNeeded)
	nProcInfo = nProcInfoNeeded

	ret, _, _ = procRmGetList.Call(
		uintptr(sessionHandle),
		uintptr(unsafe.Pointer(&nProcInfoNeeded)),
		uintptr(unsafe.Pointer(&nProcInfo)),
		uintptr(unsafe.Pointer(&procInfos[0])),
		uintptr(unsafe.Pointer(&rebootReasons)),
	)
	if ret != 0 {
		return nil, fmt.Errorf("RmGetList вернул %d", ret)
	}

	pids := make([]uint32, 0, nProcInfo)
	for i := uint32(0); i < nProcInfo; i++ {
		pids = append(pids, procInfos[i].Process.DwProcessId)
	}
	return pids, nil
}

// processImageName возвращает имя исполняемого файла процесса по PID
func processImageName(pid uint32) string {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return fmt.Sprintf("PID=%d", pid)
	}
	defer windows.CloseHandle(handle)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(handle, 0, &buf[0], &size); err != nil {
		return fmt.Sprintf("PID=%d", pid)
	}
	return filepath.Base(windows.UTF16ToString(buf[:size]))
}
