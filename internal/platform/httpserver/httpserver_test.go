package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	srv := New(":8080", http.NewServeMux(), 10*time.Second)
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.WriteTimeout,
		"write timeout must exceed the request timeout so handlers time out first")

	fallback := New(":8080", nil, 0)
	assert.Equal(t, 35*time.Second, fallback.WriteTimeout)
}
