package main

import (
	"net/http"
	"testing"

	"igire/backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewServer_OutlastsMediaSubmission(t *testing.T) {
	srv := newServer("8080", http.NotFoundHandler())

	assert.Equal(t, ":8080", srv.Addr)
	assert.GreaterOrEqual(t, srv.ReadTimeout, config.MediaUploadTimeout)
	assert.Greater(t, srv.WriteTimeout, config.MediaUploadTimeout+config.TranscriptionTimeout)
	assert.Greater(t, srv.WriteTimeout, srv.ReadTimeout)
}
