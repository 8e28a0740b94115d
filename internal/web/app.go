package web

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"urly/internal/registry"
	"urly/internal/scraper"
)

//go:embed templates/index.html
var indexHTML []byte

type App struct {
	host string
	port int
	Dependencies
}

type Dependencies struct {
	registry *registry.Registry
	scrapers *scraper.Registry
	engine   *gin.Engine

	// resolveName enables the listing name lookup on subscribe
	resolveName bool
}

func NewDependencies(reg *registry.Registry, scrapers *scraper.Registry, resolveName bool) Dependencies {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger())

	return Dependencies{
		registry:    reg,
		scrapers:    scrapers,
		engine:      engine,
		resolveName: resolveName,
	}
}

func NewAppWithDeps(host string, port int, deps Dependencies) *App {
	app := &App{
		Dependencies: deps,
		host:         host,
		port:         port,
	}

	engine := deps.engine
	engine.Use(ErrorHandler)
	engine.GET("/", HomeHandler)
	engine.POST("/subscribe", NewSubscribeHandler(deps.registry, deps.scrapers, deps.resolveName))
	engine.GET("/subscriptions", NewSubscriptionListHandler(deps.registry))
	engine.DELETE("/unsubscribe/:id", NewUnsubscribeHandler(deps.registry))
	engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/ping", ApiPingHandler)
	}

	return app
}

// Start serves HTTP until ctx is done, then shuts the server down
func (a *App) Start(ctx context.Context) error {
	s := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", a.host, a.port),
		Handler:        a,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", s.Addr)
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	a.engine.ServeHTTP(w, req)
}

func HomeHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func ApiPingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
