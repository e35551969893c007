package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// AssetExtensions - расширения файлов кривых, которые ищем в input/
var AssetExtensions = []string{".json", ".yaml", ".yml"}

// FindLatest находит самый свежий файл в dir с одним из расширений exts
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", strings.Join(exts, "/"), dir)
	}

	return latestFile, nil
}

// FindLatestAsset находит самый свежий файл кривых в dir
func FindLatestAsset(dir string) (string, error) {
	return FindLatest(dir, AssetExtensions...)
}

func hasExt(name string, exts []string) bool {
	name = strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// OutputPath собирает имя результата с временной меткой,
// например output/cam_01_2026-02-12_10-00-00.vmd
func OutputPath(dir, input, ext string, now time.Time) string {
	base := filepath.Base(input)
	// cam.imo.json -> cam
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.ReplaceAll(base, " ", "_")
	timestamp := now.Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, timestamp, ext))
}

// Usage - снимок потребления ресурсов процессом
type Usage struct {
	RSS        uint64  // байты
	CPUPercent float64 // с момента старта, сумма по ядрам
	Threads    int32
}

// ProcessUsage возвращает потребление ресурсов текущим процессом
func ProcessUsage() (Usage, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Usage{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return Usage{}, fmt.Errorf("memory info: %w", err)
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return Usage{}, fmt.Errorf("cpu percent: %w", err)
	}
	threads, err := p.NumThreads()
	if err != nil {
		return Usage{}, fmt.Errorf("threads: %w", err)
	}
	return Usage{RSS: mem.RSS, CPUPercent: cpu, Threads: threads}, nil
}
