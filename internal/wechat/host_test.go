package wechat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eatmoreapple/openwechat"
	"github.com/stretchr/testify/require"

	"github.com/camuig/sina-stock-bot/internal/logger"
)

type fakeChat struct {
	texts  []string
	images [][]byte
}

func (c *fakeChat) SendText(content string) (*openwechat.SentMessage, error) {
	c.texts = append(c.texts, content)
	return nil, nil
}

func (c *fakeChat) SendImage(file io.Reader) (*openwechat.SentMessage, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	c.images = append(c.images, b)
	return nil, nil
}

type fakeDirectory map[string]*fakeChat

func (d fakeDirectory) Group(userName string) (chat, error) {
	c, ok := d[userName]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return c, nil
}

func (d fakeDirectory) GroupIDs() ([]string, error) {
	return []string{"@@room"}, nil
}

func newTestHost(dir directory, client *http.Client) *Host {
	return &Host{dir: dir, httpClient: client, logger: logger.Discard()}
}

func TestSendText(t *testing.T) {
	t.Parallel()
	room := &fakeChat{}
	h := newTestHost(fakeDirectory{"@@room": room}, http.DefaultClient)

	require.NoError(t, h.SendText(context.Background(), "@@room", "清空订阅成功~"))
	require.Equal(t, []string{"清空订阅成功~"}, room.texts)

	err := h.SendText(context.Background(), "@@gone", "hi")
	require.True(t, errors.Is(err, ErrGroupNotFound))
}

func TestSendImageDownloadsFirst(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/newchart/min/n/sh600519.gif" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write([]byte("GIF89a"))
	}))
	t.Cleanup(srv.Close)

	room := &fakeChat{}
	h := newTestHost(fakeDirectory{"@@room": room}, srv.Client())

	require.NoError(t, h.SendImage(context.Background(), "@@room", srv.URL+"/newchart/min/n/sh600519.gif"))
	require.Equal(t, [][]byte{[]byte("GIF89a")}, room.images)

	err := h.SendImage(context.Background(), "@@room", srv.URL+"/missing.gif")
	require.ErrorContains(t, err, "status 404")
	require.Len(t, room.images, 1)
}

func TestActiveGroups(t *testing.T) {
	t.Parallel()
	h := newTestHost(fakeDirectory{}, http.DefaultClient)

	groups, err := h.ActiveGroups(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"@@room"}, groups)
}
