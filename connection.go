package hackvr

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hackvr/hackvr/transport"
	"github.com/hackvr/hackvr/wire"
)

// pollReadChunk is the buffer size used for each non-blocking poll read.
const pollReadChunk = 4096

// connection is the shared plumbing both ServerConnection and
// ClientConnection build on: a buffered stream, a frame parser, and a
// per-connection correlation id for logging.
type connection struct {
	id      uuid.UUID
	stream  *transport.BufferedStream
	parser  *wire.ParserStream
	token   transport.ConnectionToken
	log     zerolog.Logger
	metrics *transport.Metrics
	closed  bool
}

func newConnection(stream *transport.BufferedStream, token transport.ConnectionToken, metrics *transport.Metrics) *connection {
	id := uuid.New()
	return &connection{
		id:      id,
		stream:  stream,
		parser:  wire.NewParserStream(),
		token:   token,
		metrics: metrics,
		log:     log.Logger.With().Str("caller", "hackvr<connection>").Str("conn", id.String()).Logger(),
	}
}

// SendFrame implements wire.FrameSender: encode and push one frame.
func (c *connection) SendFrame(name string, params ...string) error {
	frame, err := wire.Encode(name, params...)
	if err != nil {
		return err
	}
	return c.stream.Send([]byte(frame), transport.NEVER)
}

// pollFrames does one non-blocking read/parse pass: drain whatever bytes
// are immediately available, feed them to the parser, and return every
// complete frame recovered. ok is false once the peer has disconnected.
func (c *connection) pollFrames() (frames []wire.Frame, ok bool, err error) {
	buf := make([]byte, pollReadChunk)
	for {
		n, rerr := c.stream.Recv(buf, transport.INSTANT)
		if rerr != nil {
			var timeout *transport.TimeoutError
			if errors.As(rerr, &timeout) {
				break
			}
			return frames, false, rerr
		}
		if n == 0 {
			return frames, false, nil
		}
		c.parser.Write(buf[:n])
		if n < pollReadChunk {
			break
		}
	}
	for {
		frame, got, perr := c.parser.Next()
		if perr != nil {
			return frames, true, perr
		}
		if !got {
			break
		}
		c.metrics.IncFramesReceived()
		frames = append(frames, frame)
	}
	if dropped := c.parser.DrainDropped(); dropped > 0 {
		for i := 0; i < dropped; i++ {
			c.metrics.IncFramesDropped()
		}
	}
	return frames, true, nil
}

func (c *connection) close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.stream.Close()
}
