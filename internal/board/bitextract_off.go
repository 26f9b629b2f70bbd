//go:build !bitextract

package board

// Attack tables are indexed by magic multiplication, found by the seeded
// search in magicgen.go.
const useBitExtract = false
