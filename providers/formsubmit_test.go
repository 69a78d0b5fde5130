package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormSubmitRelay_Submit(t *testing.T) {
	var got url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		http.Redirect(w, r, "https://jondu.example.com/inquiries?submitted=true", http.StatusFound)
	}))
	defer srv.Close()

	relay := NewFormSubmitRelay(srv.URL+"/", "sales@jondu.example.com")
	err := relay.Submit(context.Background(), url.Values{"name": {"Ada"}, "_captcha": {"false"}})

	require.NoError(t, err)
	assert.Equal(t, "/sales@jondu.example.com", path)
	assert.Equal(t, "Ada", got.Get("name"))
	assert.Equal(t, "false", got.Get("_captcha"))
}

func TestFormSubmitRelay_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "form not activated", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewFormSubmitRelay(srv.URL, "x@example.com").Submit(context.Background(), url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "form not activated")
}

func TestNewFormSubmitRelay_DefaultBase(t *testing.T) {
	assert.Equal(t, "https://formsubmit.co/a@b.co", NewFormSubmitRelay("", "a@b.co").Endpoint())
}
