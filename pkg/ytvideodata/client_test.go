package ytvideodata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchPage = `<!DOCTYPE html><html><head>
<title>Never Gonna Give You Up - YouTube</title>
<meta itemprop="duration" content="PT3M33S">
</head><body>
<span itemprop="author"><link itemprop="name" content="Rick Astley"></span>
</body></html>`

func newTestServer(t *testing.T, oembedStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		if oembedStatus != http.StatusOK {
			w.WriteHeader(oembedStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Never Gonna Give You Up","author_name":"Rick Astley","thumbnail_url":"https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"}`))
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(watchPage))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{OEmbedURL: srv.URL + "/oembed", PageURL: srv.URL + "/watch"})
}

func TestGetWithEmbed(t *testing.T) {
	c := newTestClient(newTestServer(t, http.StatusOK))

	data, err := c.Get(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", data.Title)
	assert.Equal(t, "Rick Astley", data.AuthorName)
	assert.Equal(t, 213, data.Duration)
}

func TestGetFallsBackToPage(t *testing.T) {
	c := newTestClient(newTestServer(t, http.StatusUnauthorized))

	data, err := c.Get(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", data.Title)
	assert.Equal(t, "Rick Astley", data.AuthorName)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", data.ThumbnailUrl)
	assert.Equal(t, 213, data.Duration)
}

func TestGetNotFound(t *testing.T) {
	c := newTestClient(newTestServer(t, http.StatusBadRequest))

	_, err := c.Get(context.Background(), "aaaaaaaaaaa")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestParseISODuration(t *testing.T) {
	assert.Equal(t, 213, parseISODuration("PT3M33S"))
	assert.Equal(t, 3601, parseISODuration("PT1H1S"))
	assert.Equal(t, 0, parseISODuration("P1D"))
	assert.Equal(t, 0, parseISODuration(""))
}
