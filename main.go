// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/medequip-solutions/support-orchestrator/config"
	"github.com/medequip-solutions/support-orchestrator/knowledge"
	"github.com/medequip-solutions/support-orchestrator/pipeline"
	"github.com/medequip-solutions/support-orchestrator/routes"
	"github.com/medequip-solutions/support-orchestrator/session"
	"github.com/medequip-solutions/support-orchestrator/store"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	if endpoint == "" {
		endpoint = "medequip-otel-collector:4317"
	}
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("support-orchestrator")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newKnowledgeSearcher builds the Weaviate-backed searcher, or returns nil
// for lightweight mode when the URL is unset or unusable.
func newKnowledgeSearcher(cfg config.Config) *knowledge.Searcher {
	// Trim quotes and whitespace in case the container runtime passes them
	// through literally.
	weaviateURL := strings.Trim(cfg.WeaviateURL, "\"' ")
	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("Weaviate URL not set or empty. Running in lightweight mode (structured data only).")
		return nil
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		slog.Warn("Weaviate URL is invalid. Running in lightweight mode.",
			"url", weaviateURL, "error", err)
		return nil
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
	if err != nil {
		slog.Error("Failed to create Weaviate client", "error", err)
		return nil
	}

	searcher := knowledge.NewSearcher(client, knowledge.NewHTTPEmbedder(cfg.EmbeddingServiceURL))
	if err := searcher.EnsureSchema(context.Background()); err != nil {
		slog.Error("Failed to ensure the knowledge schema", "error", err)
		return nil
	}
	return searcher
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("MEDEQUIP_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	cleanup, err := initTracer(cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open the operational store: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure the database schema: %v", err)
	}
	if cfg.SeedSampleData {
		if err := db.Seed(ctx); err != nil {
			log.Fatalf("failed to seed sample data: %v", err)
		}
	}

	searcher := newKnowledgeSearcher(cfg)

	sessions := session.NewManager(db, cfg.HistoryMaxTurns)
	pipe := pipeline.New(db, searcherOrNil(searcher), pipeline.Options{
		TopK:              cfg.RetrievalTopK,
		StructuredTimeout: cfg.StructuredTimeout,
		RetrievalTimeout:  cfg.RetrievalTimeout,
	}, logger)

	router := gin.Default()
	router.Use(otelgin.Middleware("support-orchestrator"))

	routes.SetupRoutes(router, sessions, pipe, searcher)

	log.Println("Starting the support orchestrator on port", cfg.ListenPort)
	if err := router.Run(":" + cfg.ListenPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// searcherOrNil keeps a nil *Searcher from becoming a non-nil interface.
func searcherOrNil(s *knowledge.Searcher) pipeline.KnowledgeSearcher {
	if s == nil {
		return nil
	}
	return s
}
