package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	assert.Contains(t, String(), "v1.2.3")
	assert.Contains(t, String(), "commit "+GitCommit)
}
