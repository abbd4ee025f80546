package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/itemcrud/config"
	"github.com/prognoshealth/itemcrud/handler"
	"github.com/prognoshealth/itemcrud/itemstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed loading configuration")
	}

	logger := cfg.Logger()

	sess, err := cfg.Session()
	if err != nil {
		logger.WithError(err).Fatal("failed creating aws session")
	}

	store := itemstore.NewDynamoStoreFromSession(sess, cfg.Table, cfg.Endpoint)

	h, err := handler.New(store, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed building handler")
	}

	logger.WithField("table", cfg.Table).Info("starting lambda")

	lambda.Start(h.Handle)
}
