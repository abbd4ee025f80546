package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/itemcrud/config"
	"github.com/prognoshealth/itemcrud/devserver"
	"github.com/prognoshealth/itemcrud/handler"
	"github.com/prognoshealth/itemcrud/itemstore"
)

func main() {
	var (
		memory  = flag.Bool("memory", false, "Keep items in memory instead of dynamodb")
		envFile = flag.String("env", "", "Optional .env file to load")
	)
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}

	cfg := config.Read(envFiles...)
	if *memory && cfg.Table == "" {
		cfg.Table = "memory"
	}

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("failed loading configuration")
	}

	logger := cfg.Logger()

	store, err := newStore(cfg, *memory)
	if err != nil {
		logger.WithError(err).Fatal("failed creating store")
	}

	h, err := handler.New(store, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed building handler")
	}

	var routes []devserver.Route
	for _, r := range h.Routes() {
		routes = append(routes, devserver.Route{Method: r.Method.String(), Path: r.Path})
	}

	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    cfg.DevServerAddr,
		Handler: devserver.NewEngine(h, routes, logger),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("failed starting server")
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":   cfg.DevServerAddr,
		"memory": *memory,
		"table":  cfg.Table,
	}).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}
}

func newStore(cfg *config.Config, memory bool) (itemstore.Store, error) {
	if memory {
		return itemstore.NewMemoryStore(), nil
	}

	sess, err := cfg.Session()
	if err != nil {
		return nil, err
	}

	return itemstore.NewDynamoStoreFromSession(sess, cfg.Table, cfg.Endpoint), nil
}
