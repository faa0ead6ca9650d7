package entrez

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meows-bio/meows/internal/adapters/driven/ncbi"
	"github.com/meows-bio/meows/internal/core/domain"
)

const genbankRecord = `LOCUS       AB000001                  12 bp    DNA     linear   BCT 01-JAN-2000
DEFINITION  Testus genus strain X 16S ribosomal RNA gene.
ACCESSION   AB000001
VERSION     AB000001.1
SOURCE      Testus genus
  ORGANISM  Testus genus
            Bacteria; Testaceae; Testus.
ORIGIN      
        1 acgtacgtac gt
//
`

func newTestClient(t *testing.T, baseURL string, cacheSize int) *Client {
	t.Helper()
	transport, err := ncbi.NewClient(
		ncbi.Identity{Email: "me@example.org", Tool: "meows"},
		ncbi.WithRateLimiter(ncbi.NewRateLimiter(0)),
		ncbi.WithRetries(0, 0),
	)
	require.NoError(t, err)
	c, err := NewClient(transport, Config{BaseURL: baseURL + "/", Database: "nucleotide", CacheSize: cacheSize})
	require.NoError(t, err)
	return c
}

func TestClient_Fetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "nucleotide", q.Get("db"))
		assert.Equal(t, "gb", q.Get("rettype"))
		assert.Equal(t, "text", q.Get("retmode"))
		assert.Equal(t, "12345", q.Get("id"))
		assert.Equal(t, "me@example.org", q.Get("email"))
		fmt.Fprint(w, genbankRecord)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	rec, err := c.Fetch(context.Background(), "12345")

	require.NoError(t, err)
	assert.Equal(t, "AB000001.1", rec.ID)
	assert.Equal(t, "AB000001", rec.Accession)
	assert.Equal(t, "Testus genus", rec.Organism)
	assert.Equal(t, "Testus genus strain X 16S ribosomal RNA gene.", rec.Description)
	assert.Equal(t, "ACGTACGTACGT", rec.Sequence)

	_, err = c.Fetch(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second fetch should be cached")
}

func TestClient_Fetch_CacheDisabled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, genbankRecord)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, -1)
	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), "12345")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Fetch_NoRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "\n")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 0).Fetch(context.Background(), "0")

	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Failed to retrieve sequence", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 0).Fetch(context.Background(), "bogus")

	var apiErr *ncbi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_Fetch_EmptyID(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0", 0)

	_, err := c.Fetch(context.Background(), "  ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Testus AND 16S", q.Get("term"))
		assert.Equal(t, "json", q.Get("retmode"))
		assert.Equal(t, "20", q.Get("retmax"))
		fmt.Fprint(w, `{"header":{"type":"esearch"},"esearchresult":{"count":"3","retmax":"3","idlist":["3","1","2"]}}`)
	}))
	defer srv.Close()

	ids, err := newTestClient(t, srv.URL, 0).Search(context.Background(), "Testus AND 16S", 20)

	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestClient_Search_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"count":"0","retmax":"0","idlist":[]}}`)
	}))
	defer srv.Close()

	ids, err := newTestClient(t, srv.URL, 0).Search(context.Background(), "Nope AND gene", 20)

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestClient_Search_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":     "<html>error</html>",
		"no result":    `{"header":{}}`,
		"result error": `{"esearchresult":{"ERROR":"Invalid query"}}`,
		"top error":    `{"error":"API rate limit exceeded"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, 0).Search(context.Background(), "x AND y", 5)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrQuery)
			assert.False(t, strings.Contains(err.Error(), "me@example.org"))
		})
	}
}
