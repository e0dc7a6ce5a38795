package pkgindex

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/sirupsen/logrus"

	"github.com/ralt/appstream-gen/internal/fetcher"
	"github.com/ralt/appstream-gen/internal/utils"
)

var translationPattern = regexp.MustCompile(`Translation-([a-zA-Z]+(?:_[a-zA-Z]+)?)\b`)

// fetchRelease resolves and reads a suite's InRelease manifest, returning
// its plaintext body. The manifest is expected to be a PGP cleartext-signed
// message; when keyringPath is non-empty the embedded signature is
// verified and a non-fatal error is returned on mismatch so the caller can
// report it without aborting the scan. Content
// that is not a clearsigned message at all — common for unsigned mirrors
// and test fixtures — is returned as-is with no verification attempted.
func fetchRelease(ctx context.Context, f *fetcher.Fetcher, root, tmpDir, suite, keyringPath string) (body []byte, verifyErr error, err error) {
	path, err := f.Fetch(ctx, root, tmpDir, fmt.Sprintf("dists/%s/InRelease.%%ext%%", suite))
	if err != nil {
		return nil, nil, err
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	raw, err := utils.Decompress(ext, compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("decompressing %s: %w", path, err)
	}

	block, _ := clearsign.Decode(raw)
	if block == nil {
		return raw, nil, nil
	}

	if keyringPath == "" {
		return block.Plaintext, nil, nil
	}

	keyringData, err := os.ReadFile(keyringPath)
	if err != nil {
		logrus.Warnf("pkgindex: could not read signing keyring %s: %v", keyringPath, err)
		return block.Plaintext, err, nil
	}

	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyringData))
	if err != nil {
		return block.Plaintext, fmt.Errorf("parsing signing keyring: %w", err), nil
	}

	if _, verr := openpgp.CheckDetachedSignature(keyring, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, nil); verr != nil {
		return block.Plaintext, fmt.Errorf("verifying InRelease signature: %w", verr), nil
	}
	return block.Plaintext, nil, nil
}

// parseTranslationLanguages scans content for "Translation-<code>" tokens,
// preserving first-seen order and deduplicating.
func parseTranslationLanguages(content []byte) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range translationPattern.FindAllStringSubmatch(string(content), -1) {
		code := m[1]
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}
