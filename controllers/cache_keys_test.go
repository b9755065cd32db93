package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"minitweet/models"
)

func TestStaleCacheKeysTopLevel(t *testing.T) {
	keys := staleCacheKeys(models.Tweet{ID: 7})
	assert.Equal(t, []string{
		"cache:tweets:list",
		"cache:tweet:detail:7",
	}, keys)
}

func TestStaleCacheKeysReplyIncludesParentDetail(t *testing.T) {
	parentID := uint(7)
	keys := staleCacheKeys(models.Tweet{ID: 9, ParentID: &parentID})
	// The parent's detail page embeds reply texts, so mutating a reply must
	// invalidate it too.
	assert.Contains(t, keys, "cache:tweet:detail:7")
	assert.Contains(t, keys, "cache:tweet:detail:9")
	assert.Contains(t, keys, "cache:tweets:list")
}
