package names

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	for range 50 {
		name := Generate()
		parts := strings.Split(name, "-")
		assert.Len(t, parts, 3, name)
		assert.Contains(t, adjectives, parts[0])
		assert.Contains(t, animals, parts[1])
	}
}
