package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/54b3r/aimicro-go/internal/config"
	"github.com/54b3r/aimicro-go/internal/document"
	"github.com/54b3r/aimicro-go/internal/embedder"
	"github.com/54b3r/aimicro-go/internal/index"
	"github.com/54b3r/aimicro-go/internal/ingestion"
	"github.com/54b3r/aimicro-go/internal/provider"
	"github.com/54b3r/aimicro-go/internal/qa"
	"github.com/54b3r/aimicro-go/internal/rag"
	"github.com/54b3r/aimicro-go/internal/server"
	"github.com/54b3r/aimicro-go/internal/tracing"
	"github.com/54b3r/aimicro-go/internal/version"
)

// buildChatModel resolves the chat provider from the environment and
// constructs the model. The resolved config is returned for health checks.
func buildChatModel(ctx context.Context, log *slog.Logger) (model.BaseChatModel, *provider.Config, error) {
	cfg := provider.ConfigFromEnv()
	chatModel, err := provider.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}
	log.Info("provider initialised",
		slog.String("provider", string(cfg.Backend)),
		slog.String("model", cfg.ModelName()),
	)
	return chatModel, cfg, nil
}

// indexStack is the embedder and index slot shared by ingestion and answering.
type indexStack struct {
	// embedder produces passage and query vectors.
	embedder rag.Embedder

	// slot holds the live similarity index.
	slot *rag.Slot

	// qdrant is set when the Qdrant backend is in use.
	qdrant *rag.QdrantBuilder
}

// Close releases the live index and any backend connection.
func (s *indexStack) Close() error {
	err := s.slot.Close()
	if s.qdrant != nil {
		err = errors.Join(err, s.qdrant.Close())
	}
	return err
}

// openIndex builds the embedder, connects the configured index backend and
// loads any index persisted by a previous run into a fresh slot.
func openIndex(ctx context.Context, log *slog.Logger, settings *config.Settings) (*indexStack, error) {
	embCfg := embedder.ConfigFromEnv()
	embedder.WarnIfChatModel(log, embCfg)

	emb, err := embedder.New(ctx, embCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised",
		slog.String("backend", embCfg.Backend),
		slog.String("fingerprint", embCfg.Fingerprint()),
	)

	stack := &indexStack{embedder: emb}

	var builder rag.Builder
	switch settings.IndexBackend {
	case config.IndexQdrant:
		q := settings.Qdrant
		qb, err := rag.NewQdrantBuilder(&rag.QdrantConfig{
			Host:       q.Host,
			Port:       q.Port,
			Collection: q.Collection,
			VectorSize: uint64(embCfg.Dimensions), //nolint:gosec // dimensions are validated positive
			APIKey:     q.APIKey,
			UseTLS:     q.TLS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", q.Host, q.Port, err)
		}
		stack.qdrant = qb
		builder = qb
		log.Info("index backend ready", slog.String("backend", "qdrant"), slog.String("collection", q.Collection))
	default:
		sb, err := index.NewSQLiteBuilder(settings.IndexDir())
		if err != nil {
			return nil, fmt.Errorf("failed to open index directory: %w", err)
		}
		builder = sb
		log.Info("index backend ready", slog.String("backend", "sqlite"), slog.String("path", sb.Path()))
	}

	stack.slot = rag.NewSlot(builder, embCfg.Fingerprint(), log)
	if err := stack.slot.Load(ctx); err != nil {
		_ = stack.Close()
		return nil, err
	}
	return stack, nil
}

// buildPipeline wires the ingestion pipeline onto the stack's slot.
func buildPipeline(settings *config.Settings, stack *indexStack) (*ingestion.Pipeline, error) {
	docs, err := document.NewStore(settings.DocsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return ingestion.NewPipeline(docs, document.PDFExtractor{}, stack.embedder, stack.slot, &ingestion.Config{
		BatchSize: settings.EmbedBatchSize,
	})
}

// buildAnswerer wires retrieval-answering onto the stack's slot.
func buildAnswerer(ctx context.Context, settings *config.Settings, stack *indexStack, chatModel model.BaseChatModel) (*qa.Answerer, error) {
	retriever, err := rag.NewRetriever(stack.embedder, stack.slot, settings.TopK)
	if err != nil {
		return nil, err
	}
	return qa.New(ctx, retriever, stack.slot, chatModel, &qa.Config{
		TopK:             settings.TopK,
		MaxContextTokens: settings.QAMaxContextTokens,
	})
}

// buildPingers returns the readiness probes for the configured dependencies.
func buildPingers(chatModel model.BaseChatModel, providerCfg *provider.Config, stack *indexStack) []server.Pinger {
	pingers := []server.Pinger{
		server.NewLLMPinger(chatModel, provider.NewHealthChecker(providerCfg), string(providerCfg.Backend)),
		server.NewEmbedderPinger(stack.embedder),
	}
	if stack.qdrant != nil {
		pingers = append(pingers, server.NewQdrantPinger(stack.qdrant))
	}
	return pingers
}

// installTracing enables Langfuse for the command when configured.
func installTracing(name string, log *slog.Logger) func() {
	cfg := tracing.ConfigFromEnv()
	cfg.Name = name
	cfg.Release = version.Version
	return tracing.Install(cfg, log)
}

// readInput returns the joined args, or stdin when args is empty or "-".
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// getEnvOrDefault returns the env var value or fallback if unset/empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer env var, returning fallback if unset or invalid.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
