package manifestserver

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "Content Manifest for Depot 1\n\nline two\nno newline at end"

func TestServeText(t *testing.T) {
	s := New([]byte(sample))
	hs := s.NewTest()
	t.Cleanup(hs.Close)

	resp, err := hs.Client().Get(hs.URL + TextPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, sample, string(body))
	assert.Equal(t, int64(1), s.Requests.Load())
}

func TestServeTextToken(t *testing.T) {
	s := New([]byte(sample))
	s.RequireToken("secret")
	hs := s.NewTest()
	t.Cleanup(hs.Close)

	resp, err := hs.Client().Get(hs.URL + TextPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest("GET", hs.URL+TextPath, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = hs.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeStream(t *testing.T) {
	s := New([]byte(sample))
	hs := s.NewTest()
	t.Cleanup(hs.Close)

	ctx := context.Background()
	conn, _, err := websocket.Dial(ctx, hs.URL+StreamPath, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var frames []string
	for {
		typ, data, err := conn.Read(ctx)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, websocket.MessageText, typ)
		frames = append(frames, string(data))
	}

	assert.Len(t, frames, 4)
	assert.Equal(t, sample, strings.Join(frames, ""))
}

func TestSetText(t *testing.T) {
	s := New([]byte("old"))
	hs := s.NewTest()
	t.Cleanup(hs.Close)

	s.SetText([]byte("new"))
	resp, err := hs.Client().Get(hs.URL + TextPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "new", string(body))
}

func TestUnknownPath(t *testing.T) {
	hs := New(nil).NewTest()
	t.Cleanup(hs.Close)

	resp, err := hs.Client().Get(hs.URL + "/other")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", Addr(":8080"))
	assert.Equal(t, "0.0.0.0:80", Addr("0.0.0.0:80"))
}
