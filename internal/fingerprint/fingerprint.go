// Package fingerprint computes content fingerprints for media assets and
// scores the similarity between them. Perceptual fingerprints are 64-bit
// digests encoded as a marker prefix plus 16 hex characters; similarity
// between two fingerprints of the same marker is normalized Hamming
// similarity over the decoded bits.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash/fnv"
	"math/bits"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/shortreel/acquire-cli/internal/model"
)

const (
	// VideoMarker prefixes fingerprints derived from video content.
	VideoMarker = "phash_v_"
	// AudioMarker prefixes fingerprints derived from audio content.
	AudioMarker = "phash_a_"
	// URLMarker prefixes fallback hashes derived from the asset URL alone.
	// URL hashes participate only in exact-duplicate detection.
	URLMarker = "urlhash_"

	totalBits = 64
	hexDigits = totalBits / 4
)

// ErrNoContent is returned when an asset carries nothing to fingerprint.
var ErrNoContent = eris.New("fingerprint: asset has no url or local path")

// Compute derives a perceptual-style fingerprint for the asset. Without frame
// or waveform extraction available, the digest comes from the asset's stable
// content identity: its canonicalized URL plus normalized title. Repeated
// calls for the same asset return the same string.
func Compute(a *model.Asset) (string, error) {
	identity := canonicalIdentity(a)
	if identity == "" {
		return "", ErrNoContent
	}

	h := fnv.New64a()
	h.Write([]byte(identity))

	marker := VideoMarker
	if a.MediaKind == model.KindAudio {
		marker = AudioMarker
	}
	return marker + encodeBits(h.Sum64()), nil
}

// URLHash is the fallback when Compute fails: a truncated SHA-256 of the raw
// URL. It cannot catch near-duplicates but still collapses exact ones.
func URLHash(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return URLMarker + hex.EncodeToString(sum[:8])
}

// Similarity scores two fingerprints in [0.0, 1.0]. Fingerprints sharing a
// perceptual marker are compared bitwise; everything else falls back to exact
// string equality.
func Similarity(a, b string) float64 {
	am, abits, aok := decode(a)
	bm, bbits, bok := decode(b)

	if aok && bok && am == bm {
		distance := bits.OnesCount64(abits ^ bbits)
		return 1.0 - float64(distance)/float64(totalBits)
	}

	if a != "" && a == b {
		return 1.0
	}
	return 0.0
}

// IsPerceptual reports whether the fingerprint carries decodable perceptual
// bits (as opposed to a URL fallback hash or arbitrary string).
func IsPerceptual(fp string) bool {
	_, _, ok := decode(fp)
	return ok
}

// decode splits a fingerprint into its marker and bit string. Only the two
// perceptual markers decode; URL hashes are exact-match only.
func decode(fp string) (marker string, b uint64, ok bool) {
	for _, m := range []string{VideoMarker, AudioMarker} {
		if !strings.HasPrefix(fp, m) {
			continue
		}
		hexPart := fp[len(m):]
		if len(hexPart) != hexDigits {
			return "", 0, false
		}
		v, err := strconv.ParseUint(hexPart, 16, 64)
		if err != nil {
			return "", 0, false
		}
		return m, v, true
	}
	return "", 0, false
}

func encodeBits(v uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return hex.EncodeToString(buf[:])
}

// canonicalIdentity builds the stable identity string hashed into the
// fingerprint. URL query strings and fragments are stripped so that tracking
// parameters do not split otherwise-identical assets; titles are NFKC
// normalized, lowercased, and whitespace-collapsed so near-identical listings
// hash close together.
func canonicalIdentity(a *model.Asset) string {
	var parts []string

	if a.URL != "" {
		if u, err := url.Parse(a.URL); err == nil && u.Host != "" {
			parts = append(parts, strings.ToLower(u.Host)+strings.TrimSuffix(u.Path, "/"))
		} else {
			parts = append(parts, a.URL)
		}
	} else if a.LocalPath != "" {
		parts = append(parts, a.LocalPath)
	}

	if title := NormalizeTitle(a.Title); title != "" {
		parts = append(parts, title)
	}

	return strings.Join(parts, "|")
}

// NormalizeTitle canonicalizes a human-entered title for hashing and
// catalog matching.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}
	normalized := norm.NFKC.String(title)
	var b strings.Builder
	lastSpace := true
	for _, r := range normalized {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
