package prover

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/rs/zerolog"
)

const (
	backendFile = "backend"
	ccsFile     = "threshold.ccs"
	pkFile      = "threshold.pk"
	vkFile      = "threshold.vk"
)

var ErrNoSetup = errors.New("no proving setup found")

// Save writes the compiled circuit and both keys into dir, so proofs made
// in one process verify in another.
func (s *System) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	var pk, vk io.WriterTo
	switch s.backend {
	case Plonk:
		pk, vk = s.plPK, s.plVK
	default:
		pk, vk = s.g16PK, s.g16VK
	}
	for name, obj := range map[string]io.WriterTo{ccsFile: s.ccs, pkFile: pk, vkFile: vk} {
		if err := writeFile(filepath.Join(dir, name), obj); err != nil {
			return err
		}
	}
	// marker last: a directory with a marker is complete
	return os.WriteFile(filepath.Join(dir, backendFile), []byte(s.backend), 0o600)
}

// Load reads a setup written by Save.
func Load(dir string, log zerolog.Logger) (*System, error) {
	bz, err := os.ReadFile(filepath.Join(dir, backendFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w in %s", ErrNoSetup, dir)
	} else if err != nil {
		return nil, err
	}

	s := &System{backend: Backend(strings.TrimSpace(string(bz)))}
	s.log = log.With().Str("module", "prover").Str("backend", string(s.backend)).Logger()

	var pk, vk io.ReaderFrom
	switch s.backend {
	case Groth16:
		s.ccs = groth16.NewCS(ecc.BN254)
		s.g16PK = groth16.NewProvingKey(ecc.BN254)
		s.g16VK = groth16.NewVerifyingKey(ecc.BN254)
		pk, vk = s.g16PK, s.g16VK
	case Plonk:
		s.ccs = plonk.NewCS(ecc.BN254)
		s.plPK = plonk.NewProvingKey(ecc.BN254)
		s.plVK = plonk.NewVerifyingKey(ecc.BN254)
		pk, vk = s.plPK, s.plVK
	default:
		return nil, fmt.Errorf("unknown proving backend %q in %s", s.backend, dir)
	}

	for name, obj := range map[string]io.ReaderFrom{ccsFile: s.ccs, pkFile: pk, vkFile: vk} {
		if err := readFile(filepath.Join(dir, name), obj); err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("dir", dir).Msg("threshold setup loaded")
	return s, nil
}

// ExportSolidity writes a Solidity contract verifying threshold proofs of
// this setup on chain.
func (s *System) ExportSolidity(w io.Writer) error {
	switch s.backend {
	case Plonk:
		return s.plVK.ExportSolidity(w)
	default:
		return s.g16VK.ExportSolidity(w)
	}
}

func writeFile(path string, obj io.WriterTo) error {
	var buf bytes.Buffer
	if _, err := obj.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func readFile(path string, obj io.ReaderFrom) error {
	bz, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := obj.ReadFrom(bytes.NewReader(bz)); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
