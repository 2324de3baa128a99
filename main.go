/*
Serves the product configurator: loads the model, binds the panel to the
scene and hands rendering to the web viewer or runs headless.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/configurator/configurator"
	"github.com/spaghettifunk/configurator/engine"
	"github.com/spaghettifunk/configurator/engine/core"
)

func main() {
	configPath := flag.String("config", "", "path of the TOML configuration")
	model := flag.String("model", "", "model URL or path, overrides model.source")
	host := flag.String("host", "", "host kind: web or headless")
	listen := flag.String("listen", "", "listen address of the web host")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

	config := engine.DefaultApplicationConfig()
	if *configPath != "" {
		c, err := engine.LoadConfig(*configPath)
		if err != nil {
			core.LogFatal("failed to load configuration: %s", err.Error())
		}
		config = c
	}
	if *model != "" {
		config.Model.Source = *model
	}
	if *host != "" {
		config.Host.Kind = *host
	}
	if *listen != "" {
		config.Host.Listen = *listen
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}

	cfg := configurator.NewConfigurator(config)
	if config.Host.Kind == engine.HostKindHeadless {
		cfg.Commands = os.Stdin
	}

	engine, err := engine.New(cfg.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := engine.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = engine.Shutdown()
	}()

	// run engine
	if err := engine.Run(); err != nil {
		core.LogFatal(err.Error())
	}
	if err := engine.Shutdown(); err != nil {
		core.LogFatal(err.Error())
	}
}
