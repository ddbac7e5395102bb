package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	// payloadContent, payloadSource, payloadPage and payloadFingerprint are
	// the reserved payload keys written for every point.
	payloadContent     = "content"
	payloadSource      = "source"
	payloadPage        = "page"
	payloadFingerprint = "fingerprint"

	// upsertBatchSize bounds the number of points sent per Upsert call.
	upsertBatchSize = 256
)

// QdrantConfig holds connection parameters for a Qdrant instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the alias the live index is published under. Each build
	// writes a fresh collection named "<Collection>-<uuid>" and repoints the
	// alias at it.
	Collection string

	// VectorSize is the dimensionality of the embeddings stored.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantBuilder implements Builder on top of a Qdrant instance. The slot is
// an alias: readers always resolve it to one complete collection.
type QdrantBuilder struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration.
	cfg *QdrantConfig
}

// NewQdrantBuilder connects to Qdrant and returns a Builder for cfg.Collection.
func NewQdrantBuilder(cfg *QdrantConfig) (*QdrantBuilder, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection name is required")
	}
	if cfg.VectorSize == 0 {
		return nil, fmt.Errorf("qdrant: vector size is required")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantBuilder{client: client, cfg: cfg}, nil
}

// Build writes passages into a new versioned collection, repoints the alias
// at it, and drops the collection it superseded. If any step before the alias
// swap fails the new collection is removed and the alias is untouched.
func (b *QdrantBuilder) Build(ctx context.Context, fingerprint string, passages []Passage, vectors [][]float32) (Index, error) {
	name := versionedName(b.cfg.Collection)

	err := b.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     b.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}

	if err := b.upsert(ctx, name, fingerprint, passages, vectors); err != nil {
		_ = b.client.DeleteCollection(ctx, name)
		return nil, err
	}

	previous, err := b.resolveAlias(ctx)
	if err != nil {
		_ = b.client.DeleteCollection(ctx, name)
		return nil, err
	}

	actions := []*qdrant.AliasOperations{qdrant.NewAliasCreate(b.cfg.Collection, name)}
	if previous != "" {
		actions = append([]*qdrant.AliasOperations{qdrant.NewAliasDelete(b.cfg.Collection)}, actions...)
	}
	if err := b.client.UpdateAliases(ctx, actions); err != nil {
		_ = b.client.DeleteCollection(ctx, name)
		return nil, fmt.Errorf("qdrant: failed to swap alias %q: %w", b.cfg.Collection, err)
	}

	if previous != "" {
		// The alias already points at the new collection; a failed drop only
		// leaks storage.
		_ = b.client.DeleteCollection(ctx, previous)
	}

	return &qdrantIndex{
		client:      b.client,
		collection:  b.cfg.Collection,
		fingerprint: fingerprint,
		size:        len(passages),
	}, nil
}

// upsert writes passages and vectors into collection in batches.
func (b *QdrantBuilder) upsert(ctx context.Context, collection, fingerprint string, passages []Passage, vectors [][]float32) error {
	wait := true
	for start := 0; start < len(passages); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(passages))

		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			p := passages[i]
			payload := map[string]any{
				payloadContent:     p.Content,
				payloadSource:      p.Source,
				payloadPage:        int64(p.Page),
				payloadFingerprint: fingerprint,
			}
			for k, v := range p.Metadata {
				if _, reserved := payload[k]; !reserved {
					payload[k] = v
				}
			}

			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(pointID(p.ID)),
				Vectors: qdrant.NewVectors(vectors[i]...),
				Payload: qdrant.NewValueMap(payload),
			})
		}

		_, err := b.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           &wait,
			Points:         points,
		})
		if err != nil {
			return fmt.Errorf("qdrant: upsert failed: %w", err)
		}
	}
	return nil
}

// resolveAlias returns the collection the alias currently points at, or ""
// when the alias does not exist yet.
func (b *QdrantBuilder) resolveAlias(ctx context.Context) (string, error) {
	aliases, err := b.client.ListAliases(ctx)
	if err != nil {
		return "", fmt.Errorf("qdrant: list aliases: %w", err)
	}
	for _, a := range aliases {
		if a.GetAliasName() == b.cfg.Collection {
			return a.GetCollectionName(), nil
		}
	}
	return "", nil
}

// Load opens the collection behind the alias. The fingerprint is read from
// the payload of an arbitrary point; every point carries the same value.
func (b *QdrantBuilder) Load(ctx context.Context) (Index, error) {
	target, err := b.resolveAlias(ctx)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, ErrNoIndex
	}

	info, err := b.client.GetCollectionInfo(ctx, b.cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("qdrant: collection info: %w", err)
	}

	limit := uint32(1)
	points, err := b.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: b.cfg.Collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: scroll: %w", err)
	}
	if len(points) == 0 {
		return nil, ErrNoIndex
	}

	return &qdrantIndex{
		client:      b.client,
		collection:  b.cfg.Collection,
		fingerprint: points[0].GetPayload()[payloadFingerprint].GetStringValue(),
		size:        int(info.GetPointsCount()),
	}, nil
}

// HealthCheck reports whether the Qdrant server is reachable.
func (b *QdrantBuilder) HealthCheck(ctx context.Context) error {
	if _, err := b.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (b *QdrantBuilder) Close() error {
	return b.client.Close()
}

// qdrantIndex is a read view of the collection behind the alias. It shares
// the builder's client, so Close is a no-op.
type qdrantIndex struct {
	client      *qdrant.Client
	collection  string
	fingerprint string
	size        int
}

// Search performs a cosine similarity search and returns the top-k results.
func (q *qdrantIndex) Search(ctx context.Context, vec []float32, topK int) ([]Passage, error) {
	limit := uint64(topK)
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	passages := make([]Passage, 0, len(results))
	for _, r := range results {
		p := Passage{
			ID:       r.GetId().GetUuid(),
			Score:    r.GetScore(),
			Metadata: make(map[string]string),
		}
		for k, v := range r.GetPayload() {
			switch k {
			case payloadContent:
				p.Content = v.GetStringValue()
			case payloadSource:
				p.Source = v.GetStringValue()
			case payloadPage:
				p.Page = int(v.GetIntegerValue())
			case payloadFingerprint:
			default:
				p.Metadata[k] = v.GetStringValue()
			}
		}
		passages = append(passages, p)
	}

	return passages, nil
}

func (q *qdrantIndex) Fingerprint() string { return q.fingerprint }
func (q *qdrantIndex) Len() int            { return q.size }
func (q *qdrantIndex) Close() error        { return nil }

// versionedName returns a fresh collection name for alias.
func versionedName(alias string) string {
	return alias + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// pointID maps a passage ID to a UUID accepted by Qdrant. IDs that already
// parse as UUIDs are kept; anything else is hashed deterministically.
func pointID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}
