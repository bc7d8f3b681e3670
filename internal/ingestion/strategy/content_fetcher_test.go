package strategy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-power-rankings/pkg/jina"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	available bool
	article   *jina.Article
	err       error
}

func (r *stubReader) IsAvailable() bool { return r.available }

func (r *stubReader) FetchArticle(context.Context, string) (*jina.Article, error) {
	return r.article, r.err
}

const articlePage = `<html><head><title>Cursor 1.0</title><script>var x = 1;</script></head>
<body><nav>Home | About</nav>
<article><h1>Cursor 1.0 released</h1>
<p>Cursor shipped its 1.0 release today with background agents and a new code review bot.
The release follows a large funding round and rapid user growth across enterprise customers.</p>
<p>Developers can now run agents in parallel against remote environments, according to the announcement.</p>
</article></body></html>`

func TestReadabilityFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	content, err := NewReadabilityFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, content, "background agents")
	assert.NotContains(t, content, "<p>")
	assert.NotContains(t, content, "var x")
}

func TestReadabilityFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewReadabilityFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 403")
}

func TestJinaFetcher(t *testing.T) {
	_, err := NewJinaFetcher(&stubReader{}).Fetch(context.Background(), "https://x.example")
	assert.ErrorIs(t, err, jina.ErrNotConfigured)

	_, err = NewJinaFetcher(&stubReader{available: true, article: &jina.Article{Content: "  "}}).Fetch(context.Background(), "https://x.example")
	assert.ErrorIs(t, err, errEmptyContent)

	content, err := NewJinaFetcher(&stubReader{available: true, article: &jina.Article{Content: "body"}}).Fetch(context.Background(), "https://x.example")
	require.NoError(t, err)
	assert.Equal(t, "body", content)
}

func TestChainFetcher(t *testing.T) {
	blocked := NewJinaFetcher(&stubReader{available: true, err: jina.ErrBlocked})
	ok := &fakeFetcher{content: map[string]string{"https://x.example": "from fallback"}}

	content, err := ChainFetcher{blocked, ok}.Fetch(context.Background(), "https://x.example")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", content)

	_, err = ChainFetcher{blocked, ok}.Fetch(context.Background(), "https://y.example")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jina.ErrBlocked))

	_, err = ChainFetcher{}.Fetch(context.Background(), "https://x.example")
	assert.ErrorIs(t, err, errEmptyContent)
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "", HTMLToText("  "))
	assert.Equal(t, "Hello world", HTMLToText("<div><p>Hello</p>\n<p>world</p><style>p{}</style></div>"))
}
