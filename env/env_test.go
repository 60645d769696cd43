package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostname(t *testing.T) {
	assert.Equal(t, "lsiwindmeter000", Hostname(0))
	assert.Equal(t, "lsiwindmeter007", Hostname(7))
	assert.Equal(t, "lsiwindmeter123", Hostname(123))
}
