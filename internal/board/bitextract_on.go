//go:build bitextract

package board

// Attack tables are indexed by bit extraction; no magic search runs.
const useBitExtract = true
