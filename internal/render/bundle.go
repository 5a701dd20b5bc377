package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jmorel/vibecut/internal/composition"
	"github.com/jmorel/vibecut/pkg/util"
)

const bundleVersion = 1

// bundleManifest is the serialized form of a composition bundle. It holds
// no timestamps so that identical registries produce identical artifacts.
type bundleManifest struct {
	Version      int                       `yaml:"version"`
	Compositions []composition.Composition `yaml:"compositions"`
}

// Bundle is a sealed snapshot of the registry. Rendering selects
// compositions out of the snapshot, never out of the live registry.
type Bundle struct {
	Path         string
	compositions map[string]composition.Composition
}

func newBundle(path string, comps []composition.Composition) *Bundle {
	m := make(map[string]composition.Composition, len(comps))
	for _, c := range comps {
		m[c.ID] = c
	}
	return &Bundle{Path: path, compositions: m}
}

// Select returns the named composition from the snapshot.
func (b *Bundle) Select(id string) (composition.Composition, error) {
	c, ok := b.compositions[id]
	if !ok {
		return composition.Composition{}, fmt.Errorf("composition %q not in bundle", id)
	}
	return c, nil
}

// Compositions returns the snapshot's compositions, sorted by id.
func (b *Bundle) Compositions() []composition.Composition {
	comps := make([]composition.Composition, 0, len(b.compositions))
	for _, c := range b.compositions {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].ID < comps[j].ID })
	return comps
}

// Bundler seals registry snapshots into a content-addressed artifact cache
// under <workdir>/bundles.
type Bundler struct {
	logger zerolog.Logger
	dir    string
}

func NewBundler(logger zerolog.Logger, workDir string) *Bundler {
	return &Bundler{
		logger: logger.With().Str("component", "bundler").Logger(),
		dir:    filepath.Join(workDir, "bundles"),
	}
}

// Bundle writes the registry's compositions as a zstd-compressed manifest.
// The artifact name is derived from the manifest bytes, so re-bundling an
// unchanged registry is a cache hit and touches nothing.
func (b *Bundler) Bundle(reg *composition.Registry) (*Bundle, error) {
	comps := reg.List()
	if len(comps) == 0 {
		return nil, fmt.Errorf("registry holds no compositions")
	}

	payload, err := yaml.Marshal(bundleManifest{
		Version:      bundleVersion,
		Compositions: comps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle manifest: %w", err)
	}

	sum := sha256.Sum256(payload)
	name := fmt.Sprintf("bundle-%s.yaml.zst", hex.EncodeToString(sum[:6]))
	path := filepath.Join(b.dir, name)

	if util.FileExists(path) {
		b.logger.Debug().Str("bundle", path).Msg("bundle cache hit")
		return newBundle(path, comps), nil
	}

	if err := util.EnsureDir(b.dir); err != nil {
		return nil, fmt.Errorf("failed to create bundle dir: %w", err)
	}

	if err := b.writeArtifact(path, payload); err != nil {
		return nil, err
	}

	b.logger.Info().
		Str("bundle", path).
		Int("compositions", len(comps)).
		Msg("bundle sealed")

	return newBundle(path, comps), nil
}

// writeArtifact compresses the payload into place via a temp file so a
// crashed run never leaves a truncated bundle under the content address.
func (b *Bundler) writeArtifact(path string, payload []byte) error {
	tmp, err := util.TempFile(b.dir, "bundle-", ".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp bundle: %w", err)
	}
	tmpPath := tmp.Name()

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		util.CleanupFiles(tmpPath)
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	if _, err := enc.Write(payload); err == nil {
		err = enc.Close()
	} else {
		_ = enc.Close()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		util.CleanupFiles(tmpPath)
		return fmt.Errorf("failed to write bundle: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		util.CleanupFiles(tmpPath)
		return fmt.Errorf("failed to finalize bundle: %w", err)
	}
	return nil
}

// OpenBundle loads a previously sealed bundle from disk.
func OpenBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	payload, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress bundle: %w", err)
	}

	var manifest bundleManifest
	if err := yaml.Unmarshal(payload, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode bundle manifest: %w", err)
	}
	if manifest.Version != bundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d", manifest.Version)
	}
	if len(manifest.Compositions) == 0 {
		return nil, fmt.Errorf("bundle holds no compositions")
	}

	return newBundle(path, manifest.Compositions), nil
}
