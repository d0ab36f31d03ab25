package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/devsapp/tiled-upscale-console/pkg/client"
	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/datastore"
	"github.com/devsapp/tiled-upscale-console/pkg/handler"
	"github.com/devsapp/tiled-upscale-console/pkg/module"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ConsoleServer struct {
	srv      *http.Server
	session  *module.Session
	listener *module.StatusListener
	history  *datastore.HistorySqlite
}

func NewConsoleServer(conf *config.Config, mode string) (*ConsoleServer, error) {
	backend := client.NewClient(conf.BackendUrl, conf.BackendTimeout())

	// init job history
	var history *datastore.HistorySqlite
	var historyStore datastore.HistoryInterface
	if conf.EnableHistory() {
		var err error
		if history, err = datastore.NewHistorySqlite(conf.DbSqlite); err != nil {
			logrus.Errorf("history init error %v", err)
			return nil, err
		}
		historyStore = history
	}

	session := module.NewSession(backend, conf, historyStore, nil)
	roster := module.NewWorkerRoster(backend)
	// init status listen
	listener := module.NewStatusListener(session, roster, conf.StatusInterval(), int(conf.StatusFailLimit))

	// init handler
	consoleHandler := handler.NewConsoleHandler(session, roster, historyStore)
	validator, err := handler.RequestValidator()
	if err != nil {
		logrus.Errorf("api document error %v", err)
		return nil, err
	}

	// init router
	if mode == gin.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(CORSMiddleware())
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(handler.Stat())

	// auth permission check
	if conf.EnableLogin() {
		router.Use(handler.ApiAuth(conf.LoginUser, conf.LoginPasswordHash))
	}
	handler.RegisterHandlers(router.Group("", validator), consoleHandler)
	router.NoRoute(consoleHandler.NoRouterHandler)

	logrus.WithFields(logrus.Fields{"sessionId": session.Id}).Infof("console for backend %s", backend.Endpoint())
	return &ConsoleServer{
		srv: &http.Server{
			Addr:    net.JoinHostPort("0.0.0.0", conf.Port),
			Handler: router,
		},
		session:  session,
		listener: listener,
		history:  history,
	}, nil
}

// Start console server
func (p *ConsoleServer) Start() error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := p.session.RefreshWorkflows(ctx); err != nil {
			logrus.Warnf("initial workflow list fail err=%s", err.Error())
		}
	}()
	p.listener.Start()
	if err := p.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Fatalf("listen: %s\n", err)
		return err
	}
	return nil
}

// Close shutdown console server, timeout=shutdownTimeout
func (p *ConsoleServer) Close(shutdownTimeout time.Duration) error {
	p.listener.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := p.srv.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
		return err
	}
	if p.history != nil {
		p.history.Close()
	}
	return nil
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "false")
		c.Next()
	}
}
