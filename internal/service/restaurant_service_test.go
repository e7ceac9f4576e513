package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKM(t *testing.T) {
	assert.InDelta(t, 0, distanceKM(35.68, 139.76, 35.68, 139.76), 1e-9)
	// Tokyo station to Osaka station
	assert.InDelta(t, 403, distanceKM(35.6812, 139.7671, 34.7025, 135.4959), 5)
}
