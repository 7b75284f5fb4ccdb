package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"coverTonic/artwork"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedServer struct {
	*httptest.Server
	mu      sync.Mutex
	queries []url.Values
	paths   []string
}

func (s *recordedServer) last() (string, url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths[len(s.paths)-1], s.queries[len(s.queries)-1]
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *recordedServer {
	t.Helper()
	rs := &recordedServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.paths = append(rs.paths, r.URL.Path)
		rs.queries = append(rs.queries, r.URL.Query())
		rs.mu.Unlock()
		assert.Equal(t, "coverTonic-test", r.Header.Get("User-Agent"))
		handler(w, r)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func newTestClient(baseURL string) *Client {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(Options{BaseURL: baseURL, Country: "de", UserAgent: "coverTonic-test", Logger: log})
}

func TestLookupWork(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultCount":1,"results":[{"wrapperType":"collection","collectionName":"Folge 1","artworkUrl100":"https://is1.example/image/thumb/a.jpg/100x100bb.jpg"}]}`)
	})
	c := newTestClient(srv.URL)

	ref, err := c.Lookup(context.Background(), artwork.Work, "4029759108419")
	require.NoError(t, err)
	assert.Equal(t, "https://is1.example/image/thumb/a.jpg/100x100bb.jpg", ref.URL)

	path, q := srv.last()
	assert.Equal(t, "/lookup", path)
	assert.Equal(t, "4029759108419", q.Get("upc"))
	assert.Equal(t, "album", q.Get("entity"))
	assert.Equal(t, "1", q.Get("limit"))
	assert.Equal(t, "de", q.Get("country"))
}

func TestLookupSeries(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultCount":3,"results":[
			{"wrapperType":"artist","artistType":"Artist","artistName":"Die drei ???","artistLinkUrl":"https://music.example/artist/909253","artistId":909253},
			{"wrapperType":"collection","collectionType":"Album","artistName":"Die drei ???","collectionName":"Folge 230","artworkUrl60":"https://is1.example/f230.jpg/60x60bb.jpg","artworkUrl100":"https://is1.example/f230.jpg/100x100bb.jpg"},
			{"wrapperType":"collection","collectionType":"Album","artistName":"Die drei ???","collectionName":"Folge 229","artworkUrl100":"https://is1.example/f229.jpg/100x100bb.jpg"}]}`)
	})
	c := newTestClient(srv.URL)

	ref, err := c.Lookup(context.Background(), artwork.Series, "909253")
	require.NoError(t, err)
	assert.Equal(t, "https://is1.example/f230.jpg/100x100bb.jpg", ref.URL, "first album row supplies the series artwork")

	_, q := srv.last()
	assert.Equal(t, "909253", q.Get("id"))
	assert.Equal(t, "album", q.Get("entity"))
	assert.Equal(t, "2", q.Get("limit"))
	assert.Empty(t, q.Get("upc"))
}

func TestLookupSeriesWithoutAlbums(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultCount":1,"results":[{"wrapperType":"artist","artistType":"Artist","artistName":"Die drei ???","artistLinkUrl":"https://music.example/artist/909253","artistId":909253}]}`)
	})
	_, err := newTestClient(srv.URL).Lookup(context.Background(), artwork.Series, "909253")
	assert.ErrorIs(t, err, artwork.ErrNotFound)
}

func TestLookupNotFound(t *testing.T) {
	tests := map[string]func(w http.ResponseWriter, r *http.Request){
		"empty results": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"resultCount":0,"results":[]}`)
		},
		"result without artwork": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"resultCount":1,"results":[{"collectionName":"x"}]}`)
		},
		"404": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(newServer(t, handler).URL)
			_, err := c.Lookup(context.Background(), artwork.Work, "1")
			assert.ErrorIs(t, err, artwork.ErrNotFound)
		})
	}
}

func TestLookupServerError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c := newTestClient(srv.URL)

	_, err := c.Lookup(context.Background(), artwork.Work, "1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, artwork.ErrNotFound))
}

func TestLookupMalformedJSON(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>`)
	})
	_, err := newTestClient(srv.URL).Lookup(context.Background(), artwork.Work, "1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, artwork.ErrNotFound))
}

func TestSearch(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("attribute") == "artistTerm" {
			fmt.Fprint(w, `{"resultCount":2,"results":[
				{"wrapperType":"collection","collectionType":"Album","artistName":"TKKG Junior","collectionName":"Folge 1"},
				{"wrapperType":"collection","collectionType":"Album","artistName":"TKKG","collectionName":"Folge 200","artworkUrl100":"https://is1.example/t.jpg/100x100bb.jpg"}]}`)
			return
		}
		fmt.Fprint(w, `{"resultCount":1,"results":[{"collectionName":"Folge 200","artistName":"TKKG","artworkUrl100":"https://is1.example/f.jpg/100x100bb.jpg"}]}`)
	})
	c := newTestClient(srv.URL)

	series, err := c.Search(context.Background(), artwork.Series, "TKKG")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "TKKG Junior", series[0].Name)
	assert.True(t, series[0].Artwork.IsZero())
	assert.Equal(t, "TKKG", series[1].Name)
	assert.Equal(t, "https://is1.example/t.jpg/100x100bb.jpg", series[1].Artwork.URL)

	path, q := srv.last()
	assert.Equal(t, "/search", path)
	assert.Equal(t, "TKKG", q.Get("term"))
	assert.Equal(t, "album", q.Get("entity"))
	assert.Equal(t, "artistTerm", q.Get("attribute"))

	works, err := c.Search(context.Background(), artwork.Work, "Folge 200")
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, "Folge 200", works[0].Name, "works are named by collection")

	_, q = srv.last()
	assert.Equal(t, "album", q.Get("entity"))
	assert.Equal(t, "albumTerm", q.Get("attribute"))
}

func TestFetch(t *testing.T) {
	var requested string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		if r.URL.Path == "/image/missing.jpg/768x768bb.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	})
	c := newTestClient(srv.URL)

	data, err := c.Fetch(context.Background(), artwork.ArtworkRef{URL: srv.URL + "/image/a.jpg/100x100bb.jpg"}, 512)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "/image/a.jpg/512x512bb.jpg", requested)

	_, err = c.Fetch(context.Background(), artwork.ArtworkRef{URL: srv.URL + "/image/missing.jpg/100x100bb.jpg"}, 768)
	assert.ErrorIs(t, err, artwork.ErrNotFound)
}

func TestFetchCancelled(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(srv.URL).Fetch(ctx, artwork.ArtworkRef{URL: srv.URL + "/a/100x100bb.jpg"}, 256)
	assert.Error(t, err)
}

func TestSizedURL(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"https://is1.example/thumb/x.jpg/100x100bb.jpg", 512, "https://is1.example/thumb/x.jpg/512x512bb.jpg"},
		{"https://is1.example/thumb/x.png/60x60bb.png", 256, "https://is1.example/thumb/x.png/256x256bb.png"},
		{"https://is1.example/thumb/x/100x100bb-60.jpg", 768, "https://is1.example/thumb/x/768x768bb.jpg"},
		{"https://is1.example/thumb/x/100x100.webp", 768, "https://is1.example/thumb/x/768x768bb.webp"},
		{"https://cdn.example/cover.jpg", 512, "https://cdn.example/cover.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SizedURL(tt.in, tt.width), tt.in)
	}
}

func TestUnsupportedClass(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	_, err := c.Lookup(context.Background(), artwork.EntityClass(0), "1")
	assert.Error(t, err)
	_, err = c.Search(context.Background(), artwork.EntityClass(0), "x")
	assert.Error(t, err)
}
