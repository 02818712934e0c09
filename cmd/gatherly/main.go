package main

import (
	"flag"

	"github.com/gatherly/gatherly/internal/bootstrap"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/gatherly/gatherly/pkg/runner"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf conf.d/config.toml")
}

func main() {
	flag.Parse()
	log.Infow("starting gatherly", "hostname", runner.Hostname, "pwd", runner.Pwd)

	app, err := bootstrap.NewApp(configFile)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	if err := app.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
