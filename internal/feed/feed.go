// Package feed opens the byte stream the reports are read from.
package feed

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrUnsupportedSource = errors.New("unsupported input source")

const (
	magicGzip1 = 0x1f
	magicGzip2 = 0x8b

	execPrefix = "exec:"
)

// Open returns the stream named by input:
//
//	"" or "-"        standard input
//	exec:<command>   standard output of a producer process
//	ws:// or wss://  text messages of a websocket feed
//	anything else    a replay file, gunzipped if compressed
//
// Cancelling ctx stops a producer process or websocket feed.
func Open(ctx context.Context, input string) (io.ReadCloser, error) {
	switch {
	case input == "" || input == "-":
		log.Debug().Msg("reading reports from standard input")
		return io.NopCloser(os.Stdin), nil
	case strings.HasPrefix(input, execPrefix):
		return openCommand(ctx, strings.TrimPrefix(input, execPrefix))
	case strings.HasPrefix(input, "ws://"), strings.HasPrefix(input, "wss://"):
		return openWebsocket(ctx, input)
	case strings.Contains(input, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, input)
	default:
		return openFile(input)
	}
}

type fileReader struct {
	io.Reader
	file *os.File
}

func (f *fileReader) Close() error {
	return f.file.Close()
}

func openFile(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	r, err := maybeGunzip(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("replaying reports from file")
	return &fileReader{Reader: r, file: file}, nil
}

// maybeGunzip looks at the first two bytes and decompresses when they
// are the gzip magic number.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	input := bufio.NewReader(r)
	magic, err := input.Peek(2)
	if err != nil {
		// Too short to be compressed; let the framer see it as it is.
		return input, nil
	}

	if magic[0] == magicGzip1 && magic[1] == magicGzip2 {
		gzf, err := gzip.NewReader(input)
		if err != nil {
			return nil, err
		}
		return gzf, nil
	}
	return input, nil
}
