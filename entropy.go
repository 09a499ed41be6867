package arx

import "math"

// entropyPrefixSize bounds how much of a payload is sampled to decide
// whether compression is worth attempting.
const entropyPrefixSize = 8192

// entropyThreshold is the Shannon-entropy-per-byte above which a payload is
// assumed to already be dense (compressed media, ciphertext, random data)
// and is stored uncompressed rather than spending a compression pass that
// would not shrink it. Fixed at 7.5 bits/byte: high enough that ordinary
// text, source code and most structured binary formats fall well under it,
// low enough to catch already-compressed containers (zip, jpeg, mp4).
const entropyThreshold = 7.5

// shannonEntropy8 estimates the Shannon entropy, in bits per byte, of buf
// using a byte-frequency histogram. An empty buffer has zero entropy.
func shannonEntropy8(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}

	var histogram [256]int
	for _, b := range buf {
		histogram[b]++
	}

	n := float64(len(buf))
	var entropy float64
	for _, count := range histogram {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// looksIncompressible samples at most entropyPrefixSize bytes from the front
// of buf and reports whether its entropy meets entropyThreshold.
func looksIncompressible(buf []byte) bool {
	sample := buf
	if len(sample) > entropyPrefixSize {
		sample = sample[:entropyPrefixSize]
	}
	return shannonEntropy8(sample) >= entropyThreshold
}
