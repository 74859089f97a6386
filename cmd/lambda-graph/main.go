package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/config"
	graphlambda "github.com/christophergentle/goaltracker/internal/lambda"
	"github.com/christophergentle/goaltracker/internal/store"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	ctx := context.Background()

	// Load configuration from SSM Parameter Store
	loader, err := config.NewSSMConfigLoader(ctx)
	if err != nil {
		log.Fatalf("Failed to create SSM config loader: %v", err)
	}

	cfg, err := loader.LoadConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration from SSM: %v", err)
	}

	s, err := store.NewStore(ctx, cfg.Tables(), cfg.AWSOptions()...)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	handler, err := graphlambda.NewGraphHandler(cfg, s)
	if err != nil {
		log.Fatalf("Failed to create graph handler: %v", err)
	}

	lambda.Start(handler.HandleRequest)
}
