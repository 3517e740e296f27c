// Command lambda serves the dispatcher behind API Gateway proxy integration.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Lixing-Zhang/pizza-api/internal/config"
	"github.com/Lixing-Zhang/pizza-api/internal/handlers"
	"github.com/Lixing-Zhang/pizza-api/internal/repository"
	"github.com/Lixing-Zhang/pizza-api/internal/service"
	"github.com/Lixing-Zhang/pizza-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level)
	slog.SetDefault(log)

	tables, err := repository.Open(context.Background(), cfg.Store)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	router := handlers.NewRouter(
		service.NewCatalogService(tables.Catalog, log),
		service.NewOrderService(tables.Orders, log),
		log,
		handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins),
	)

	lambda.Start(newHandler(router, log))
}

type proxyHandler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

func newHandler(router *handlers.Router, log *slog.Logger) proxyHandler {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		// An undecodable body is passed on raw and fails JSON validation.
		req, err := toRequest(event)
		if err != nil {
			log.Warn("undecodable request body", "request_id", event.RequestContext.RequestID, "error", err)
		}

		resp := router.Dispatch(ctx, req)
		return events.APIGatewayProxyResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
		}, nil
	}
}

// toRequest converts a proxy event. The resource template (/pizza/{id}) is
// preferred over the concrete path so values come from PathParameters.
func toRequest(event events.APIGatewayProxyRequest) (handlers.Request, error) {
	path := event.Path
	if strings.Contains(event.Resource, "{") || path == "" {
		path = event.Resource
	}

	req := handlers.Request{
		Method:          event.HTTPMethod,
		Path:            path,
		PathParameters:  event.PathParameters,
		QueryParameters: event.QueryStringParameters,
		Headers:         event.Headers,
		Body:            event.Body,
	}

	if event.IsBase64Encoded && event.Body != "" {
		body, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return req, fmt.Errorf("decode base64 body: %w", err)
		}
		req.Body = string(body)
	}
	return req, nil
}
