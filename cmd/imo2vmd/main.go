package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/ivlev/imo2vmd/internal/config"
	"github.com/ivlev/imo2vmd/internal/engine"
	"github.com/ivlev/imo2vmd/internal/geom"
	"github.com/ivlev/imo2vmd/internal/motion"
	"github.com/ivlev/imo2vmd/internal/source"
	"github.com/ivlev/imo2vmd/internal/system"
	"github.com/ivlev/imo2vmd/internal/vmd"
)

var version = "dev"

const (
	inputDir  = "input"
	outputDir = "output"
)

func main() {
	// Создаем нужные директории, если их нет
	for _, d := range []string{inputDir, outputDir} {
		os.MkdirAll(d, 0755)
	}

	opts := newOptions(flag.CommandLine)
	flag.Parse()

	if opts.inspect != "" {
		if err := inspect(os.Stdout, opts.inspect); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		return
	}

	cfg := config.Default()
	if opts.config != "" {
		loaded, err := config.Load(opts.config)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения настроек: %v", err)
		}
		cfg = loaded
		fmt.Printf("[*] Настройки: %s\n", opts.config)
	}

	mergeFlags(flag.CommandLine, opts, cfg)
	cfg.BuildVersion = version

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	if cfg.InputPath == "" {
		latest, err := system.FindLatestAsset(inputDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите файл кривых (.json/.yaml) в %s/", err, inputDir)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.InputPath)
	}

	src, err := source.NewFileSource(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}

	encOpts := motion.Options{Name: cfg.Name, FPS: cfg.FPS, FixedFOV: cfg.FixedFOV}
	if cfg.BasePath != "" {
		base, err := readVMD(cfg.BasePath)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения базового VMD: %v", err)
		}
		encOpts.Base = base
		fmt.Printf("[*] Базовый VMD: %s (костей: %d, морфов: %d)\n", cfg.BasePath, len(base.Bones), len(base.Morphs))
	}

	enc, err := motion.ForFormat(cfg.Format, encOpts)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = system.OutputPath(outputDir, cfg.InputPath, enc.Ext(), time.Now())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewProject(cfg, src, enc)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputPath)
}

// options - значения флагов командной строки
type options struct {
	input, output, format, config, base string
	workers                             int
	rate, fps                           float64
	name                                string
	fixedFOV                            uint
	dumpPoses, plot                     string
	stats                               bool
	inspect                             string
}

func newOptions(fs *flag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.input, "input", "", "Путь к JSON/YAML с кривыми камеры (по умолчанию: самый свежий файл в input/)")
	fs.StringVar(&o.output, "output", "", "Путь к результату (если пусто, генерируется автоматически в output/)")
	fs.StringVar(&o.format, "format", config.DefaultFormat, "Формат результата: vmd, mvd")
	fs.StringVar(&o.config, "config", "", "YAML-файл настроек; явно заданные флаги имеют приоритет")
	fs.StringVar(&o.base, "base", "", "Существующий VMD: его кости, морфы, свет и тени переносятся в результат")
	fs.IntVar(&o.workers, "workers", runtime.NumCPU(), "Потоки")
	fs.Float64Var(&o.rate, "rate", config.DefaultSampleRate, "Частота выборки кривых (кадров в секунду)")
	fs.Float64Var(&o.fps, "fps", config.DefaultFPS, "FPS в заголовке MVD")
	fs.StringVar(&o.name, "name", "", "Имя модели (VMD) или объекта камеры (MVD)")
	fs.UintVar(&o.fixedFOV, "fixed-fov", 0, "Фиксированный угол обзора в градусах для VMD (0 - рассчитывать по фокусному расстоянию)")
	fs.StringVar(&o.dumpPoses, "dump-poses", "", "Сохранить позиции камеры по кадрам в YAML")
	fs.StringVar(&o.plot, "plot", "", "Сохранить график траектории камеры (png, svg, pdf)")
	fs.BoolVar(&o.stats, "stats", false, "Показать статистику и дописать её в benchmark.log")
	fs.StringVar(&o.inspect, "inspect", "", "Показать содержимое VMD-файла и выйти")
	return o
}

// mergeFlags переносит в cfg только явно заданные флаги: остальное
// остается из файла настроек
func mergeFlags(fs *flag.FlagSet, o *options, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = o.input
		case "output":
			cfg.OutputPath = o.output
		case "format":
			cfg.Format = o.format
		case "base":
			cfg.BasePath = o.base
		case "workers":
			cfg.Workers = o.workers
		case "rate":
			cfg.SampleRate = o.rate
		case "fps":
			cfg.FPS = o.fps
		case "name":
			cfg.Name = o.name
		case "fixed-fov":
			cfg.FixedFOV = uint32(o.fixedFOV)
		case "dump-poses":
			cfg.DumpPoses = o.dumpPoses
		case "plot":
			cfg.PlotPath = o.plot
		case "stats":
			cfg.ShowStats = o.stats
		}
	})
}

func readVMD(path string) (*vmd.Motion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := vmd.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// inspect prints a summary of a VMD file and its first camera keys.
func inspect(w io.Writer, path string) error {
	m, err := readVMD(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "--- [%s] ---\n", path)
	fmt.Fprintf(w, "Model: %s\n", m.ModelName)
	fmt.Fprintf(w, "Bones: %d | Morphs: %d | Cameras: %d | Lights: %d | Self-shadows: %d\n",
		len(m.Bones), len(m.Morphs), len(m.Cameras), len(m.Lights), len(m.SelfShadows))

	const preview = 5
	for i, c := range m.Cameras {
		if i == preview {
			fmt.Fprintf(w, "... %d more\n", len(m.Cameras)-preview)
			break
		}
		fmt.Fprintf(w, "[%6d] dist %8.3f pos (%8.3f %8.3f %8.3f) rot (%7.2f %7.2f %7.2f) fov %d\n",
			c.Frame, c.Distance,
			c.Position[0], c.Position[1], c.Position[2],
			geom.Degrees(float64(c.Rotation[0])), geom.Degrees(float64(c.Rotation[1])), geom.Degrees(float64(c.Rotation[2])),
			c.FOV)
	}
	return nil
}
