// utils/cycles_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleName(t *testing.T) {
	assert.Equal(t, "timely", CycleName(0))
	assert.Equal(t, "evening", CycleName(1))
	assert.Equal(t, "intraday_1", CycleName(3))
	assert.Equal(t, "intraday_2", CycleName(4))
	assert.Equal(t, "final", CycleName(5))
	assert.Equal(t, "intraday_3", CycleName(7))
	assert.Equal(t, "cycle_2", CycleName(2))
}
