// Copyright (c) 2025 Otto
// Лицензия: MIT (см. LICENSE)

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CurrentVersion = "01.11.25" // Текущая версия RestartHelper в формате "дд.мм.гг"

	packageSuffix = ".ankiaddon" // Расширение пакета дополнения: четвёртый аргумент с таким суффиксом означает установку, а не удаление
	baseDirFlag   = "-b"         // Ключ, с которым приложению передаётся базовая директория данных

	pollInterval = 500 * time.Millisecond // Период опроса процесса в ожидании его завершения
)

// runOptions содержит аргументы запуска, неизменяемые на протяжении работы
type runOptions struct {
	Pid          uint32        // PID процесса, завершения которого нужно дождаться
	AppExe       string        // Путь к исполняемому файлу приложения
	BaseDir      string        // Базовая директория данных приложения
	Target       string        // Каталог дополнения для удаления либо пакет для установки
	PollInterval time.Duration // Период опроса (фиксированный, вынесен для тестов)
}

// systemOps изолирует платформенные вызовы, чтобы основную последовательность
// шагов можно было проверить без Windows API
type systemOps interface {
	// ProcessExists сообщает, наблюдается ли работающий процесс с данным PID
	ProcessExists(pid uint32) bool
	// SoftDelete отправляет путь в корзину, при неудаче удаляет напрямую
	SoftDelete(path string) bool
	// LaunchDetached запускает программу независимо от текущего процесса
	LaunchDetached(exe string, args []string) error
}

func main() {
	// Показывает версию RestartHelper
	if len(os.Args) >= 2 && strings.EqualFold(os.Args[1], "--version") {
		fmt.Printf("Версия \"RestartHelper\": %s\n", CurrentVersion)
		return
	}

	if len(os.Args) != 5 {
		printUsage()
		os.Exit(1)
	}

	pid, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil || pid == 0 {
		fmt.Println("Ошибка: некорректный PID")
		os.Exit(1)
	}

	opts := runOptions{
		Pid:          uint32(pid),
		AppExe:       os.Args[2],
		BaseDir:      os.Args[3],
		Target:       os.Args[4],
		PollInterval: pollInterval,
	}

	// Логирование (инициализация только после проверки аргументов — до неё никаких побочных эффектов)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[RestartHelper] ")
	initLogging()

	if err := run(opts, windowsOps{}); err != nil {
		log.Printf("Ошибка: %v", err)
		os.Exit(1)
	}
}

// run выполняет основную последовательность: ожидание, удаление либо подготовка пакета, перезапуск
func run(opts runOptions, sys systemOps) error {
	log.Printf("Ожидание завершения процесса PID=%d...", opts.Pid)
	waitForExit(sys, opts.Pid, opts.PollInterval)
	log.Printf("Процесс PID=%d завершён, продолжение работы.", opts.Pid)

	// Ровно одно из двух действий: подготовка пакета либо удаление каталога
	var packageFile string
	if isPackageFile(opts.Target) {
		log.Printf("Установка дополнения из пакета %s...", opts.Target)
		logPackageDetails(opts.Target)
		packageFile = opts.Target
	} else {
		log.Printf("Удаление каталога дополнения %s...", opts.Target)
		if !sys.SoftDelete(opts.Target) {
			// Удаление не критично для перезапуска, поэтому работа продолжается
			log.Printf("Предупреждение: не удалось удалить каталог дополнения")
		}
	}

	args := []string{baseDirFlag, opts.BaseDir}
	if packageFile != "" {
		args = append(args, packageFile)
	}
	log.Printf("Запуск: %s %s", opts.AppExe, buildCommandLine(args))

	if err := sys.LaunchDetached(opts.AppExe, args); err != nil {
		return fmt.Errorf("не удалось запустить приложение: %w", err)
	}

	log.Printf("Приложение успешно запущено.")
	return nil
}

// waitForExit блокирует выполнение, пока процесс с указанным PID наблюдается работающим.
// Несуществующий или недоступный процесс считается завершённым — возврат без единой паузы
func waitForExit(sys systemOps, pid uint32, interval time.Duration) {
	for sys.ProcessExists(pid) {
		log.Printf("PID=%d ещё работает, ожидание...", pid)
		time.Sleep(interval)
	}
}

func printUsage() {
	fmt.Printf("Использование: %s <pid> <app_exe> <app_base> <addon_dir_or_package>\n", exeName())
	fmt.Println()
	fmt.Println("Аргументы:")
	fmt.Println("  pid                   PID процесса, завершения которого нужно дождаться")
	fmt.Println("  app_exe               Путь к исполняемому файлу приложения")
	fmt.Println("  app_base              Базовая директория данных приложения")
	fmt.Println("  addon_dir_or_package  Каталог дополнения для удаления либо пакет для установки")
}

// exeName возвращает имя текущего исполняемого файла для строки использования
func exeName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return os.Args[0]
	}
	return "RestartHelper"
}
