// Command ecsgen writes a function that registers every component type
// declared in a Go package with an ecs.ComponentRegistry.
//
// A type is a component when it embeds ecs.BaseComponent and its pointer has
// a ComponentName() string method. Typical use is a go:generate directive:
//
//	//go:generate go run github.com/plus3/entstore/cmd/ecsgen -out components_gen.go
package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/plus3/entstore/internal/config"
	"github.com/plus3/entstore/internal/logging"
)

func main() {
	pattern := flag.String("pkg", ".", "Package pattern to scan for component types.")
	out := flag.String("out", "components_gen.go", "Output file, written next to the scanned package.")
	funcName := flag.String("func", "RegisterComponents", "Name of the generated registration function.")
	logLevel := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	log, err := logging.New(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(log, *pattern, *out, *funcName); err != nil {
		log.Error("generation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, pattern, out, funcName string) error {
	pkg, err := loadPackage(pattern)
	if err != nil {
		return err
	}

	components, err := findComponents(pkg)
	if err != nil {
		return err
	}

	src, err := render(generatorInput{
		Package:    pkg.Name,
		Func:       funcName,
		Qualifier:  ecsQualifier(pkg.PkgPath),
		Components: components,
	})
	if err != nil {
		return err
	}

	path := outputPath(pkg, out)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return err
	}

	log.Info("components registered",
		zap.String("package", pkg.PkgPath),
		zap.Int("components", len(components)),
		zap.String("output", path))
	return nil
}
