package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"math"
	"math/rand"
)

// DefaultDimension is the embedding vector length when none is configured.
const DefaultDimension = 768

// RemoteEmbedder is the remote half of the provider; *Client implements it.
type RemoteEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider produces vectors of exactly Dimension entries. The remote service
// is the primary path; any remote failure is recovered locally with a
// deterministic pseudo-embedding, so Embed never fails.
type Provider struct {
	remote    RemoteEmbedder
	dimension int
}

// NewProvider creates a Provider. remote may be nil, in which case every call
// takes the fallback path.
func NewProvider(remote RemoteEmbedder, dimension int) *Provider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Provider{remote: remote, dimension: dimension}
}

// Dimension returns the fixed vector length.
func (p *Provider) Dimension() int { return p.dimension }

// Embed returns a vector of exactly Dimension entries for text. Remote
// vectors are resized and L2-normalized; on remote failure a deterministic
// hash-derived vector is returned instead so that ingestion and queries keep
// working without the service.
func (p *Provider) Embed(ctx context.Context, text string) []float32 {
	if p.remote != nil {
		vector, err := p.remote.Embed(ctx, text)
		if err == nil {
			return normalize(resize(vector, p.dimension))
		}
		slog.Warn("embedding service failed, using deterministic fallback", "error", err)
	}
	return p.fallback(text)
}

// fallback derives a pseudo-embedding from a cryptographic hash of the text.
// Identical text always yields an identical vector, which keeps chunk ids and
// stored vectors stable under retries.
func (p *Provider) fallback(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	vector := make([]float32, p.dimension)
	for i := range vector {
		vector[i] = float32(rng.Float64()*2 - 1)
	}
	return vector
}

// resize pads with zeros or truncates so the vector is exactly dimension long.
func resize(vector []float32, dimension int) []float32 {
	if len(vector) == dimension {
		return vector
	}
	if len(vector) > dimension {
		return vector[:dimension]
	}
	padded := make([]float32, dimension)
	copy(padded, vector)
	return padded
}

// normalize scales the vector to unit L2 length. A zero vector is returned
// unchanged to avoid division by zero.
func normalize(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return vector
	}
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector
}
