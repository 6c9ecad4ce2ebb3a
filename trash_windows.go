// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"log"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Shell API для отправки файлов и каталогов в корзину
var (
	shell32              = windows.NewLazySystemDLL("shell32.dll")
	procSHFileOperationW = shell32.NewProc("SHFileOperationW")
)

// Константы SHFileOperationW
const (
	foDelete          uint32 = 0x0003 // Операция удаления
	fofAllowUndo      uint16 = 0x0040 // Разрешает восстановление (перемещение в корзину вместо стирания)
	fofNoConfirmation uint16 = 0x0010 // Не запрашивает подтверждение у пользователя
	fofSilent         uint16 = 0x0004 // Не показывает индикатор выполнения
)

// shFileOpStruct повторяет SHFILEOPSTRUCTW для вызова через shell32
type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

// Точки подмены для тестов порядка удаления; в работе остаются прежние вызовы
var (
	trashPath     = sendToTrash
	removePath    = os.Remove
	removeAllPath = os.RemoveAll
)

// SoftDelete отправляет путь в корзину, при неудаче удаляет напрямую:
// сначала как файл, затем как каталог. Прямое удаление безвозвратно —
// это осознанный размен надёжности на восстановимость
func (windowsOps) SoftDelete(path string) bool {
	if trashPath(path) {
		return true
	}
	log.Printf("Корзина недоступна, попытка безвозвратного удаления...")

	if err := removePath(path); err == nil {
		return true
	}
	if err := removeAllPath(path); err == nil {
		return true
	}

	// Диагностика: называет процессы, удерживающие путь
	logLockers(path)
	return false
}

// sendToTrash перемещает файл или каталог в корзину средствами Shell
func sendToTrash(path string) bool {
	from, err := windows.UTF16FromString(path)
	if err != nil {
		return false
	}
	from = append(from, 0) // pFrom требует двойного завершающего NUL

	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  &from[0],
		fFlags: fofAllowUndo | fofNoConfirmation | fofSilent,
	}

	ret, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	return ret == 0 && op.fAnyOperationsAborted == 0
}
