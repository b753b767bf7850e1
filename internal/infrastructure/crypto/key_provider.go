// Package crypto implements the signing-key provider, the JWT codec and the
// stateless CSRF token repository.
package crypto

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

const (
	privateKeyFile = "private_key.pem"
	publicKeyFile  = "public_key.pem"

	privateKeyPEMType = "PRIVATE KEY"
	publicKeyPEMType  = "PUBLIC KEY"

	rsaKeyBits = 2048
)

// selfTestProbe is the fixed message signed and verified at load time to
// prove the private and public key form a matching pair.
var selfTestProbe = []byte("authcore key self-test probe")

type fileKeyProvider struct {
	dir  string
	log  logger.Logger
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// NewFileKeyProvider creates a KeyProvider that persists its RSA keypair as
// two PEM files under dir. Initialize must be called once at startup before
// the provider is handed to the codec.
func NewFileKeyProvider(dir string, log logger.Logger) service.KeyProvider {
	return &fileKeyProvider{dir: dir, log: log.WithComponent("keyprovider")}
}

// Initialize loads the persisted keypair or generates a fresh one, then runs
// a sign/verify self-test. Keys that fail to load or verify are treated as
// absent and regenerated; only I/O and generation failures are fatal.
func (p *fileKeyProvider) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return errors.ErrConfiguration(
			fmt.Sprintf("cannot create keys directory %s", p.dir)).WithCause(err)
	}

	priv, pub, loaded := p.loadFromDisk(ctx)
	if loaded && selfTest(priv, pub) {
		p.priv, p.pub = priv, pub
		p.log.Info(ctx, "signing keypair loaded from disk",
			logger.String("directory", p.dir))
		return nil
	}
	if loaded {
		p.log.Warn(ctx, "persisted keypair failed self-test, regenerating")
	}

	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return errors.ErrConfiguration("failed to generate RSA keypair").WithCause(err)
	}
	pub = &priv.PublicKey

	if !selfTest(priv, pub) {
		return errors.ErrConfiguration("freshly generated keypair failed self-test")
	}

	if err := p.persist(priv, pub); err != nil {
		return err
	}

	p.priv, p.pub = priv, pub
	p.log.Info(ctx, "signing keypair generated and persisted",
		logger.String("directory", p.dir),
		logger.Int("bits", rsaKeyBits))
	return nil
}

func (p *fileKeyProvider) PrivateKey() *rsa.PrivateKey { return p.priv }

func (p *fileKeyProvider) PublicKey() *rsa.PublicKey { return p.pub }

// loadFromDisk reads both PEM files. Any decode or parse failure returns
// loaded=false so the caller regenerates; invalid on-disk keys are not an
// error.
func (p *fileKeyProvider) loadFromDisk(ctx context.Context) (*rsa.PrivateKey, *rsa.PublicKey, bool) {
	privBytes, err := os.ReadFile(filepath.Join(p.dir, privateKeyFile))
	if err != nil {
		return nil, nil, false
	}
	pubBytes, err := os.ReadFile(filepath.Join(p.dir, publicKeyFile))
	if err != nil {
		return nil, nil, false
	}

	privBlock, _ := pem.Decode(privBytes)
	if privBlock == nil || privBlock.Type != privateKeyPEMType {
		p.log.Warn(ctx, "private key file is not valid PEM, treating as absent")
		return nil, nil, false
	}
	parsedPriv, err := x509.ParsePKCS8PrivateKey(privBlock.Bytes)
	if err != nil {
		p.log.Warn(ctx, "private key file failed to parse, treating as absent",
			logger.Err(err))
		return nil, nil, false
	}
	priv, ok := parsedPriv.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, false
	}

	pubBlock, _ := pem.Decode(pubBytes)
	if pubBlock == nil || pubBlock.Type != publicKeyPEMType {
		p.log.Warn(ctx, "public key file is not valid PEM, treating as absent")
		return nil, nil, false
	}
	parsedPub, err := x509.ParsePKIXPublicKey(pubBlock.Bytes)
	if err != nil {
		p.log.Warn(ctx, "public key file failed to parse, treating as absent",
			logger.Err(err))
		return nil, nil, false
	}
	pub, ok := parsedPub.(*rsa.PublicKey)
	if !ok {
		return nil, nil, false
	}

	return priv, pub, true
}

// persist writes the keypair as PKCS#8 and PKIX PEM files. The private key
// file is owner-readable only.
func (p *fileKeyProvider) persist(priv *rsa.PrivateKey, pub *rsa.PublicKey) error {
	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return errors.ErrConfiguration("failed to marshal private key").WithCause(err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: privBytes})
	if err := os.WriteFile(filepath.Join(p.dir, privateKeyFile), privPEM, 0o600); err != nil {
		return errors.ErrConfiguration("failed to write private key file").WithCause(err)
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return errors.ErrConfiguration("failed to marshal public key").WithCause(err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: pubBytes})
	if err := os.WriteFile(filepath.Join(p.dir, publicKeyFile), pubPEM, 0o644); err != nil {
		return errors.ErrConfiguration("failed to write public key file").WithCause(err)
	}

	return nil
}

// selfTest signs the fixed probe with the private key and verifies with the
// public key, proving the two halves form a matching pair.
func selfTest(priv *rsa.PrivateKey, pub *rsa.PublicKey) bool {
	if priv == nil || pub == nil {
		return false
	}
	digest := sha256.Sum256(selfTestProbe)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	if err != nil {
		return false
	}
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig) == nil
}
