package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/imo2vmd/internal/config"
	"github.com/ivlev/imo2vmd/internal/motion"
	"github.com/ivlev/imo2vmd/internal/report"
	"github.com/ivlev/imo2vmd/internal/sampler"
	"github.com/ivlev/imo2vmd/internal/source"
	"github.com/ivlev/imo2vmd/internal/system"
	"github.com/ivlev/imo2vmd/internal/transform"
)

// ErrEmptyAnimation - кривые короче одного кадра
var ErrEmptyAnimation = errors.New("animation has no frames")

// BenchmarkLog - файл, в который дописывается статистика запусков
var BenchmarkLog = "benchmark.log"

// Logf принимает предупреждения. По умолчанию log.Printf
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger заменяет Logf. nil отключает предупреждения
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

type Project struct {
	Config  *config.Config
	Source  source.Source
	Encoder motion.Encoder

	// Куда печатать прогресс (nil - os.Stdout)
	Stdout io.Writer

	stats report.Stats
}

func NewProject(cfg *config.Config, src source.Source, enc motion.Encoder) *Project {
	return &Project{
		Config:  cfg,
		Source:  src,
		Encoder: enc,
	}
}

// Stats возвращает статистику последнего успешного Run
func (p *Project) Stats() report.Stats { return p.stats }

func (p *Project) printf(format string, a ...interface{}) {
	w := p.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format, a...)
}

// Run конвертирует источник в файл результата. Файл пишется только если
// преобразованы все кадры; при ошибке существующий файл не трогаем
func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	curves, err := p.Source.Curves()
	if err != nil {
		return fmt.Errorf("ошибка чтения источника: %w", err)
	}
	set, skipped, err := sampler.Bind(curves)
	if err != nil {
		return fmt.Errorf("ошибка разбора кривых: %w", err)
	}
	for _, c := range skipped {
		Logf("[!] Кривая пропущена: %s %v", c.Path, c.Attribs)
	}
	loadEnd := time.Now()

	seq := (&sampler.Sampler{Rate: cfg.SampleRate}).Sample(set)
	if seq.Len() == 0 {
		return fmt.Errorf("%s: %w", p.Source.Name(), ErrEmptyAnimation)
	}

	if n := countBadFocal(seq); n > 0 {
		Logf("[!] Фокусное расстояние отсутствует или не больше нуля в %d из %d кадров: угол обзора будет 180°", n, seq.Len())
	}

	p.printf("--- [PROJECT: CAMERA CONVERTER] ---\n")
	p.printf("[*] Источник: %s | Кривых: %d | Длительность: %.2fs\n", p.Source.Name(), len(curves)-len(skipped), set.Duration())
	p.printf("[*] Кадров: %d @ %.0f FPS | Формат: %s | Потоки: %d\n", seq.Len(), seq.Rate(), cfg.Format, cfg.Workers)
	p.printf("-----------------------------\n")

	cams, err := transform.New().ToDestinationAll(ctx, seq, cfg.Workers)
	if err != nil {
		return fmt.Errorf("ошибка преобразования: %w", err)
	}
	transformEnd := time.Now()

	if n := cfg.Patches.Apply(cams); n > 0 {
		p.printf("[*] Поправки дистанции применены к %d кадрам\n", n)
	}

	// Кодируем в буфер из пула, на диск пишем только готовый результат
	buf := system.GetBuffer()
	defer system.PutBuffer(buf)
	if err := p.Encoder.Encode(buf, cams); err != nil {
		return fmt.Errorf("ошибка кодирования: %w", err)
	}
	encodeEnd := time.Now()

	if err := writeFileAtomic(cfg.OutputPath, buf.Bytes()); err != nil {
		return fmt.Errorf("ошибка записи результата: %w", err)
	}
	writeEnd := time.Now()
	p.printf("[>] Записано: %s (%d байт)\n", cfg.OutputPath, buf.Len())

	p.writeDiagnostics(seq, cams)

	p.stats = report.Stats{
		Build:     cfg.BuildVersion,
		Input:     p.Source.Name(),
		Format:    cfg.Format,
		Frames:    len(cams),
		Total:     time.Since(startTime),
		Load:      loadEnd.Sub(startTime),
		Transform: transformEnd.Sub(loadEnd),
		Encode:    encodeEnd.Sub(transformEnd),
		Write:     writeEnd.Sub(encodeEnd),
	}

	if cfg.ShowStats {
		usage, err := system.ProcessUsage()
		if err != nil {
			Logf("[!] Не удалось получить статистику процесса: %v", err)
		}
		p.stats.Usage = usage
		p.printf("%s", p.stats)

		if err := report.AppendLog(BenchmarkLog, p.stats, time.Now()); err != nil {
			p.printf("[!] Не удалось записать %s: %v\n", BenchmarkLog, err)
		}
	}

	return nil
}

// writeDiagnostics сохраняет дамп позиций и график траектории, если они
// запрошены. Ошибки здесь только логируются
func (p *Project) writeDiagnostics(seq sampler.Sequence, cams []transform.Camera) {
	cfg := p.Config
	if cfg.DumpPoses != "" {
		dump, err := report.NewPoseDump(seq, cams)
		if err == nil {
			err = report.WritePoses(dump, cfg.DumpPoses)
		}
		if err != nil {
			Logf("[!] Ошибка записи позиций камеры: %v", err)
		} else {
			p.printf("[*] Позиции камеры сохранены: %s\n", cfg.DumpPoses)
		}
	}
	if cfg.PlotPath != "" {
		if err := report.PlotTrajectory(cams, cfg.PlotPath); err != nil {
			Logf("[!] Ошибка построения графика: %v", err)
		} else {
			p.printf("[*] График траектории сохранен: %s\n", cfg.PlotPath)
		}
	}
}

// countBadFocal считает кадры без положительного фокусного расстояния.
// Отсутствующий трек фокуса дает ноль во всех кадрах
func countBadFocal(seq sampler.Sequence) int {
	n := 0
	for _, pose := range seq.All() {
		if !(pose.FocalLength > 0) {
			n++
		}
	}
	return n
}

// writeFileAtomic пишет во временный файл рядом с path и переименовывает его
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
