package feed

import (
	"context"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// wsReader presents the messages of a websocket as one byte stream.
// Message boundaries are not significant; the framer finds the reports.
type wsReader struct {
	conn *websocket.Conn
	buf  []byte
	stop func() bool
}

func openWebsocket(ctx context.Context, url string) (io.ReadCloser, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	log.Debug().Str("url", url).Msg("connected to report feed")
	return &wsReader{
		conn: conn,
		stop: context.AfterFunc(ctx, func() { conn.Close() }),
	}, nil
}

func (w *wsReader) Read(p []byte) (int, error) {
	for len(w.buf) == 0 {
		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		w.buf = msg
	}

	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *wsReader) Close() error {
	w.stop()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := w.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		log.Debug().Err(err).Msg("websocket close handshake")
	}
	return w.conn.Close()
}
