// contentpipeline runs a single content-generation brief through the
// pipeline and serves a small HTTP introspection surface, mirroring
// cmd/tarsy/main.go's config-dir/.env/gin bootstrap.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jakefearsd/contentpipeline/pkg/agent"
	"github.com/jakefearsd/contentpipeline/pkg/agent/prompt"
	"github.com/jakefearsd/contentpipeline/pkg/approval"
	"github.com/jakefearsd/contentpipeline/pkg/config"
	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/events"
	"github.com/jakefearsd/contentpipeline/pkg/llm"
	"github.com/jakefearsd/contentpipeline/pkg/pipeline"
	"github.com/jakefearsd/contentpipeline/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	topic := flag.String("topic", "", "Topic to research, write, and publish")
	audience := flag.String("audience", "general", "Target audience for the brief")
	targetWordCount := flag.Int("word-count", 800, "Target word count for the brief")
	flag.Parse()

	log.Printf("starting %s", version.Full())

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables...")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	ginMode := getEnv("GIN_MODE", "release")
	gin.SetMode(ginMode)

	cfg, err := config.Load(filepath.Join(*configDir, "pipeline.yaml"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	bus := events.NewBus()
	metrics := events.NewMetrics()
	bus.Register(events.ListenerFunc(func(e events.Event) {
		slog.Info("pipeline event",
			"type", e.Type,
			"document_id", e.ID,
			"topic", e.Topic,
			"from", e.PreviousState,
			"to", e.CurrentState,
			"message", e.Message,
		)
	}))

	client, err := buildLLMClient(cfg.LLM)
	if err != nil {
		log.Fatalf("failed to build LLM client: %v", err)
	}

	gate := buildApprovalGate(cfg.Pipeline.Approval)
	executor := buildExecutor(client, gate, cfg, bus, metrics)
	pool := pipeline.NewRunPool(cfg.RunPool, executor)

	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": version.Full()})
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Snapshot())
	})

	srv := &http.Server{Addr: ":" + httpPort, Handler: router}
	go func() {
		log.Printf("HTTP server listening on :%s", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	if *topic == "" {
		log.Println("no -topic given; serving HTTP introspection only, Ctrl+C to exit")
		select {}
	}

	brief := document.Brief{
		Topic:           *topic,
		Audience:        *audience,
		TargetWordCount: *targetWordCount,
	}
	doc := document.New(brief)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.PhaseTimeout*10)
	defer cancel()

	result, err := pool.Submit(ctx, doc)
	if err != nil {
		log.Fatalf("pipeline submission failed: %v", err)
	}

	if !result.Success {
		log.Printf("pipeline failed at %s: %s", result.FailedAtState, result.ErrorMessage)
		if result.FailedDocumentPath != "" {
			log.Printf("partial content dumped to %s", result.FailedDocumentPath)
		}
		os.Exit(1)
	}

	log.Printf("published %q to %s in %s (%d revisions)", brief.Topic, result.OutputPath, result.TotalTime, result.RevisionsPerformed)
	os.Exit(0)
}

func buildLLMClient(cfg config.LLMConfig) (llm.Client, error) {
	switch cfg.Provider {
	case "grpc":
		return llm.NewGRPCClient(cfg.GRPCAddress)
	default:
		return llm.NewStubClient(), nil
	}
}

func buildApprovalGate(cfg config.ApprovalConfig) approval.Gate {
	if cfg.AutoApprove {
		return approval.AutoGate{}
	}
	return approval.NewConsoleGate(os.Stdin, os.Stdout)
}

func buildExecutor(client llm.Client, gate approval.Gate, cfg *config.Config, bus *events.Bus, metrics *events.Metrics) *pipeline.Executor {
	envelope := agent.NewEnvelope(client)
	links := prompt.PassthroughProvider{}

	specs := pipeline.AgentSpecs{
		Researcher:  agent.ResearcherSpec(),
		Writer:      agent.WriterSpec(links, links, links),
		FactChecker: agent.FactCheckerSpec(agent.FactCheckerConfig{RequireVerifiedClaims: cfg.Quality.RequireVerifiedClaims}),
		Editor:      agent.EditorSpec(agent.EditorConfig{MinQualityScore: cfg.Quality.MinEditorScore}, links, links),
		Critic:      agent.CriticSpec(),
	}

	pub := agent.PublisherConfig{OutputDir: cfg.Output.Directory, FileExtension: cfg.Output.FileExtension}

	return pipeline.NewExecutor(envelope, specs, pub, gate, cfg.Pipeline, cfg.Quality, bus, metrics)
}
