package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/log"
	"github.com/devsapp/tiled-upscale-console/pkg/server"
	"github.com/devsapp/tiled-upscale-console/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	shutdownTimeout   = 5 * time.Second // 5s
	defaultConfigPath = "console.yaml"
	portCheckTimeout  = 100 // ms
)

func handleSignal() {
	// Wait for interrupt signal to gracefully shutdown the server with
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")
}

func main() {
	port := flag.String("port", "", "server listen port, overrides the config file")
	configFile := flag.String("config", defaultConfigPath, "default config path")
	mode := flag.String("mode", "prod", "run mode: debug, dev or prod")
	flag.Parse()

	log.InitLog(*mode)

	// init config
	if err := config.InitConfig(*configFile); err != nil {
		logrus.Fatalf("config init fail: %v", err)
	}
	conf := config.ConfigGlobal
	if *port != "" {
		conf.Port = *port
	}
	if utils.PortCheck(conf.Port, portCheckTimeout) {
		logrus.Fatalf("port %s already in use", conf.Port)
	}

	// init server and start
	console, err := server.NewConsoleServer(conf, *mode)
	if err != nil {
		logrus.Fatal("console server init fail")
	}
	go console.Start()

	// wait shutdown signal
	handleSignal()

	if err := console.Close(shutdownTimeout); err != nil {
		logrus.Fatal("Shutdown server fail")
	}

	logrus.Info("Server exiting")
}
