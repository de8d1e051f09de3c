package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/praxkit/praxis-chat/api"
	"github.com/praxkit/praxis-chat/chat"
	"github.com/praxkit/praxis-chat/config"
	"github.com/praxkit/praxis-chat/database"
	"github.com/praxkit/praxis-chat/embeddings"
	"github.com/praxkit/praxis-chat/ingestion"
	"github.com/praxkit/praxis-chat/llm"
	"github.com/praxkit/praxis-chat/tenant"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "tenant":
		tenantCmd(cfg, logger, os.Args[2:])
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.ListenAddr, "address to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		logger.Fatalf("ensure schema: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	tenants := tenant.NewPostgresStore(pool)
	knowledge := chat.NewPostgresKnowledgeStore(pool)
	svc := chat.NewService(tenants, knowledge, embedder, llmClient, logger, chat.WithTopK(cfg.Retrieval.TopK))

	server := &http.Server{
		Addr:    *addr,
		Handler: api.New(svc, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s (llm %s/%s, embeddings %s/%s)",
		*addr, cfg.LLM.Provider, cfg.LLM.Model, cfg.Embeddings.Provider, cfg.Embeddings.Model)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	slug := flags.String("slug", "", "tenant slug to ingest for")
	sourceURL := flags.String("url", "", "page or PDF URL to ingest")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	if strings.TrimSpace(*slug) == "" || strings.TrimSpace(*sourceURL) == "" {
		logger.Fatal("ingest requires --slug and --url")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		logger.Fatalf("ensure schema: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	svc := ingestion.NewService(
		tenant.NewPostgresStore(pool),
		ingestion.NewPostgresStore(pool),
		embedder,
		logger,
		cfg.Ingestion.ChunkSize,
		cfg.Ingestion.ChunkOverlap,
	)

	logger.Printf("ingesting %s for tenant %s using %s/%s embeddings",
		*sourceURL, *slug, strings.ToUpper(cfg.Embeddings.Provider), cfg.Embeddings.Model)

	count, err := svc.IngestURL(ctx, *slug, *sourceURL)
	if err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}
	logger.Printf("stored %d chunks", count)
}

func tenantCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("tenant", flag.ExitOnError)
	slug := flags.String("slug", "", "unique tenant slug")
	name := flags.String("name", "", "tenant display name")
	practice := flags.String("practice", "", "practice name used in the prompt")
	location := flags.String("location", "", "practice location")
	phone := flags.String("phone", "", "practice contact phone")
	responseTime := flags.String("response-time", "innerhalb eines Werktags", "promised response time for appointment requests")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse tenant flags: %v", err)
	}

	if *slug == "" || *name == "" || *practice == "" || *location == "" || *phone == "" {
		logger.Fatal("tenant requires --slug, --name, --practice, --location and --phone")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		logger.Fatalf("ensure schema: %v", err)
	}

	store := tenant.NewPostgresStore(pool)
	t, err := store.Register(ctx, *slug, *name, tenant.Variables{
		PracticeName: *practice,
		Location:     *location,
		ContactPhone: *phone,
		ResponseTime: *responseTime,
	})
	if err != nil {
		logger.Fatalf("register tenant: %v", err)
	}

	logger.Printf("tenant %s registered with id %s", t.Slug, t.ID)
}

func clearCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	slug := flags.String("slug", "", "tenant slug whose knowledge base to clear")
	confirmed := flags.Bool("confirm", false, "skip confirmation prompt")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse clear flags: %v", err)
	}

	if *slug == "" {
		logger.Fatal("clear requires --slug")
	}

	if !*confirmed {
		fmt.Printf("This will permanently delete all knowledge chunks for tenant %q. Continue? [y/N]: ", *slug)
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Fatalf("read confirmation: %v", err)
			}
			logger.Println("clear aborted")
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			logger.Println("clear aborted")
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pool.Close()

	store := tenant.NewPostgresStore(pool)
	t, err := store.TenantBySlug(ctx, *slug)
	if err != nil {
		logger.Fatalf("resolve tenant: %v", err)
	}

	tag, err := pool.Exec(ctx, "DELETE FROM knowledge_chunks WHERE tenant_id = $1", t.ID)
	if err != nil {
		logger.Fatalf("delete knowledge chunks: %v", err)
	}

	logger.Printf("deleted %d knowledge chunks for tenant %s", tag.RowsAffected(), t.Slug)
}

func printUsage() {
	fmt.Println("Usage: praxis-chat <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the chat API server")
	fmt.Println("  tenant   Register a tenant and its prompt variables")
	fmt.Println("  ingest   Fetch a page or PDF and index it for a tenant (--slug, --url)")
	fmt.Println("  clear    Remove a tenant's knowledge chunks")
}
