// Command lambda serves one resource of the resources file as an API Gateway proxy function.
// RESOURCE names the resource; every other setting comes from the usual environment.
package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"crudrouter/internal/adapters/driving/serverless"
	"crudrouter/internal/app"
	"crudrouter/internal/config"
	"crudrouter/internal/logging"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	resources, err := config.LoadResources(cfg.ResourcesFile)
	if err != nil {
		return err
	}

	res, err := selectResource(resources, os.Getenv("RESOURCE"))
	if err != nil {
		return err
	}

	// connections outlive invocations, lambda reuses the process
	backends, release, err := app.OpenBackends(context.Background(), cfg, []config.Resource{res}, logger)
	if err != nil {
		return err
	}
	defer release()

	ctor, err := backends.Constructor(res.Backend)
	if err != nil {
		return err
	}

	logger.Info("serving resource", zap.String("resource", res.Name), zap.String("backend", res.Backend))

	lambda.Start(serverless.APIGatewayHandler(serverless.TriggerContext{
		Constructor: ctor,
		Options:     res.Options(cfg.Debug),
		Logger:      logger.With(zap.String("resource", res.Name)),
	}))
	return nil
}

// selectResource finds name among resources. An empty name is allowed when there is only one.
func selectResource(resources []config.Resource, name string) (config.Resource, error) {
	if name == "" {
		if len(resources) == 1 {
			return resources[0], nil
		}
		return config.Resource{}, fmt.Errorf("RESOURCE must name one of %d resources", len(resources))
	}

	i := slices.IndexFunc(resources, func(r config.Resource) bool { return r.Name == name })
	if i < 0 {
		return config.Resource{}, fmt.Errorf("resource '%s' is not defined", name)
	}
	return resources[i], nil
}
