package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gemeindemedia/sermonpress/internal"
	"github.com/gemeindemedia/sermonpress/pkg/logger"
	homedir "github.com/mitchellh/go-homedir"
)

var log = logger.Get("Main")

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the JSON configuration file")
	verbose := flag.Bool("verbose", false, "enable verbose log output")
	flag.Parse()

	if *verbose {
		logger.SetMinLoggingStatus(logger.VERBOSE)
	}

	config := internal.SermonPressConfig{}
	if err := config.LoadFromFile(*configPath); err != nil {
		log.Emit(logger.FATAL, "%s\n", err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := internal.New(config).Run(ctx); err != nil {
		log.Emit(logger.FATAL, "Batch aborted: %s\n", err.Error())
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return "config.json"
	}

	return filepath.Join(home, ".config", "sermonpress", "config.json")
}
