package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChurchCacheKeys(t *testing.T) {
	// unchanged slug invalidates one key
	assert.Equal(t,
		[]string{"church:slug:grace-chapel"},
		churchCacheKeys("grace-chapel", "grace-chapel"))

	// rename invalidates the new and the previous key
	assert.Equal(t,
		[]string{"church:slug:hope-chapel", "church:slug:grace-chapel"},
		churchCacheKeys("grace-chapel", "hope-chapel"))

	// first save has no previous slug
	assert.Equal(t,
		[]string{"church:slug:grace-chapel"},
		churchCacheKeys("", "grace-chapel"))
}
