package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindingOrigins(t *testing.T) {
	got := bindingOrigins("https://www.perplexity.ai/", "www.perplexity.ai",
		[]string{"perplexity.ai", "www.perplexity.ai", "accounts.google.com"})

	assert.Equal(t, []string{
		"https://www.perplexity.ai",
		"https://perplexity.ai",
		"https://accounts.google.com",
	}, got)
}
