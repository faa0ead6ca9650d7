package blast

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meows-bio/meows/internal/adapters/driven/ncbi"
	"github.com/meows-bio/meows/internal/core/domain"
)

const sampleReport = `<?xml version="1.0"?>
<!DOCTYPE BlastOutput PUBLIC "-//NCBI//NCBI BlastOutput/EN" "http://www.ncbi.nlm.nih.gov/dtd/NCBI_BlastOutput.dtd">
<BlastOutput>
  <BlastOutput_program>blastn</BlastOutput_program>
  <BlastOutput_iterations>
    <Iteration>
      <Iteration_iter-num>1</Iteration_iter-num>
      <Iteration_hits>
        <Hit>
          <Hit_num>1</Hit_num>
          <Hit_id>gi|12345|gb|AB000001.1|</Hit_id>
          <Hit_def>Testus genus 16S ribosomal RNA gene, partial sequence</Hit_def>
          <Hit_accession>AB000001</Hit_accession>
          <Hit_len>1500</Hit_len>
          <Hit_hsps>
            <Hsp>
              <Hsp_num>1</Hsp_num>
              <Hsp_bit-score>2700.5</Hsp_bit-score>
              <Hsp_evalue>0</Hsp_evalue>
            </Hsp>
          </Hit_hsps>
        </Hit>
      </Iteration_hits>
    </Iteration>
  </BlastOutput_iterations>
</BlastOutput>
`

const emptyReport = `<?xml version="1.0"?>
<BlastOutput>
  <BlastOutput_iterations>
    <Iteration>
      <Iteration_iter-num>1</Iteration_iter-num>
      <Iteration_message>No hits found</Iteration_message>
    </Iteration>
  </BlastOutput_iterations>
</BlastOutput>
`

type fakeBlast struct {
	polls     atomic.Int32
	readyAt   int32
	status    string
	report    string
	submitted atomic.Value
}

func (f *fakeBlast) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch {
	case r.Form.Get("CMD") == "Put":
		f.submitted.Store(r.Form.Get("QUERY"))
		fmt.Fprint(w, "<html><!--QBlastInfoBegin\n    RID = TESTRID01\n    RTOE = 12\nQBlastInfoEnd\n--></html>")
	case r.Form.Get("FORMAT_OBJECT") == "SearchInfo":
		status := f.status
		if f.polls.Add(1) < f.readyAt {
			status = StatusWaiting
		}
		fmt.Fprintf(w, "<!--QBlastInfoBegin\n\tStatus=%s\nQBlastInfoEnd\n-->\n<!--QBlastInfoBegin\n\tThereAreHits=yes\nQBlastInfoEnd\n-->", status)
	case r.Form.Get("FORMAT_TYPE") == "XML":
		fmt.Fprint(w, f.report)
	default:
		http.Error(w, "unexpected request", http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	transport, err := ncbi.NewClient(
		ncbi.Identity{Email: "me@example.org", Tool: "meows"},
		ncbi.WithRateLimiter(ncbi.NewRateLimiter(0)),
		ncbi.WithRetries(0, 0),
	)
	require.NoError(t, err)
	return NewClient(transport, Config{
		URL:          url,
		Program:      "blastn",
		Database:     "nt",
		PollInterval: time.Millisecond,
	})
}

func TestClient_Submit_PollsUntilReady(t *testing.T) {
	fake := &fakeBlast{readyAt: 3, status: StatusReady, report: sampleReport}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	raw, err := newTestClient(t, srv.URL).Submit(context.Background(), "ACGTACGT")

	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(raw))
	assert.Equal(t, int32(3), fake.polls.Load())
	assert.Equal(t, "ACGTACGT", fake.submitted.Load())
}

func TestClient_Submit_FailedJob(t *testing.T) {
	for _, status := range []string{StatusFailed, StatusUnknown} {
		t.Run(status, func(t *testing.T) {
			srv := httptest.NewServer(&fakeBlast{readyAt: 1, status: status})
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Submit(context.Background(), "ACGT")

			assert.ErrorIs(t, err, domain.ErrService)
			assert.Contains(t, err.Error(), status)
		})
	}
}

func TestClient_Submit_NoRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>Service temporarily unavailable</html>")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Submit(context.Background(), "ACGT")

	assert.ErrorIs(t, err, domain.ErrService)
}

func TestClient_Submit_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Submit(context.Background(), "ACGT")

	assert.ErrorIs(t, err, domain.ErrService)
	assert.Equal(t, domain.ExitService, domain.ExitCode(err))
}

func TestClient_Submit_Cancelled(t *testing.T) {
	fake := &fakeBlast{readyAt: 1 << 30, status: StatusReady}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, srv.URL).Submit(ctx, "ACGT")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeReport(t *testing.T) {
	hits, err := DecodeReport([]byte(sampleReport))

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Rank)
	assert.Equal(t, "AB000001", hits[0].Accession)
	assert.Equal(t, "gi|12345|gb|AB000001.1| Testus genus 16S ribosomal RNA gene, partial sequence", hits[0].Title)
	assert.InDelta(t, 2700.5, hits[0].Score, 1e-9)
	assert.Zero(t, hits[0].EValue)

	field, err := hits[0].TitleField(1)
	require.NoError(t, err)
	assert.Equal(t, "12345", field)
}

func TestDecodeReport_NoHits(t *testing.T) {
	hits, err := DecodeReport([]byte(emptyReport))

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDecodeReport_Malformed(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":     "",
		"html":      "<html><body>Error</body></html>",
		"truncated": "<BlastOutput><BlastOutput_iterations>",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeReport([]byte(raw))
			assert.ErrorIs(t, err, domain.ErrService)
		})
	}
}

func TestParseQBlastInfo(t *testing.T) {
	info := parseQBlastInfo([]byte("<!--QBlastInfoBegin\n    RID = ABC\n    RTOE = 30\nQBlastInfoEnd\n-->\n<p>x = y z</p>"))

	assert.Equal(t, "ABC", info["RID"])
	assert.Equal(t, "30", info["RTOE"])
	assert.NotContains(t, info, "x")
}
