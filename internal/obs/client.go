package obs

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	subprotocol    = "obswebsocket.json"
	defaultTimeout = 2 * time.Second
	maxMessageSize = 1 << 20
)

type Config struct {
	Host     string
	Port     int
	Password string
	Timeout  time.Duration
}

// WebSocketDialer dials obs-websocket servers.
type WebSocketDialer struct {
	cfg    Config
	dialer *websocket.Dialer
	logger logger.Logger
}

func NewDialer(cfg Config, log logger.Logger) *WebSocketDialer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &WebSocketDialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.Timeout,
			Subprotocols:     []string{subprotocol},
		},
		logger: log,
	}
}

// URL returns the websocket endpoint of the configured server.
func (d *WebSocketDialer) URL() string {
	return "ws://" + net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
}

// Dial connects and completes the Hello/Identify handshake.
func (d *WebSocketDialer) Dial(ctx context.Context) (Session, error) {
	errFactory := errors.New()

	dialCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	conn, _, err := d.dialer.DialContext(dialCtx, d.URL(), nil)
	if err != nil {
		return nil, errFactory.Wrap(ErrUnreachable, err)
	}
	conn.SetReadLimit(maxMessageSize)

	s := &session{conn: conn, timeout: d.cfg.Timeout}
	if err := s.handshake(d.cfg.Password); err != nil {
		conn.Close()
		return nil, err
	}

	d.logger.Debug().Str("url", d.URL()).Msg("obs-websocket session identified")

	return s, nil
}

// session is owned by a single goroutine; it is not safe for concurrent use.
type session struct {
	conn    *websocket.Conn
	timeout time.Duration
	closed  bool
}

func (s *session) handshake(password string) error {
	errFactory := errors.New()

	var h hello
	if err := s.readOp(opHello, &h, time.Now().Add(s.timeout)); err != nil {
		return errFactory.Wrap(ErrHandshake, err)
	}

	id := identify{RPCVersion: rpcVersion}
	if h.Authentication != nil {
		if password == "" {
			return errFactory.WithMessage(ErrAuthFailed, "server requires a password but none is configured")
		}
		id.Authentication = authResponse(password, h.Authentication.Salt, h.Authentication.Challenge)
	}

	if err := s.send(opIdentify, id, time.Now().Add(s.timeout)); err != nil {
		return errFactory.Wrap(ErrHandshake, err)
	}

	var ack identified
	if err := s.readOp(opIdentified, &ack, time.Now().Add(s.timeout)); err != nil {
		if websocket.IsCloseError(err, closeAuthenticationFailed) {
			return errFactory.Wrap(ErrAuthFailed, err)
		}
		return errFactory.Wrap(ErrHandshake, err)
	}

	return nil
}

func (s *session) send(op int, payload any, deadline time.Time) error {
	d, err := json.Marshal(payload)
	if err != nil {
		return errors.New().Wrap(ErrProtocol, err)
	}

	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return errors.New().Wrap(ErrClosed, err)
	}

	return s.conn.WriteJSON(message{Op: op, D: d})
}

// readOp reads until a message with the wanted opcode arrives and decodes it into out.
func (s *session) readOp(op int, out any, deadline time.Time) error {
	errFactory := errors.New()

	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return errFactory.Wrap(ErrClosed, err)
	}

	for {
		var msg message
		if err := s.conn.ReadJSON(&msg); err != nil {
			return err
		}
		if msg.Op != op {
			continue
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(msg.D, out); err != nil {
			return errFactory.Wrap(ErrProtocol, err)
		}
		return nil
	}
}

func (s *session) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (s *session) call(ctx context.Context, requestType string, data any, out any) error {
	errFactory := errors.New()

	if s.closed {
		return errFactory.New(ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return errFactory.Wrap(errors.ErrTimeout, err)
	}

	deadline := s.deadline(ctx)
	req := request{
		RequestType: requestType,
		RequestID:   uuid.NewString(),
		RequestData: data,
	}

	if err := s.send(opRequest, req, deadline); err != nil {
		return errFactory.Wrap(ErrClosed, err)
	}

	for {
		var resp requestResponse
		if err := s.readOp(opRequestResponse, &resp, deadline); err != nil {
			return errFactory.Wrap(ErrClosed, err)
		}
		if resp.RequestID != req.RequestID {
			continue
		}

		if !resp.RequestStatus.Result {
			return errFactory.WithData(ErrRequestFailed,
				fmt.Sprintf("%s: code %d: %s", requestType, resp.RequestStatus.Code, resp.RequestStatus.Comment))
		}

		if out != nil && len(resp.ResponseData) > 0 {
			if err := json.Unmarshal(resp.ResponseData, out); err != nil {
				return errFactory.Wrap(ErrProtocol, err)
			}
		}

		return nil
	}
}

func (s *session) Outputs(ctx context.Context) ([]Output, error) {
	var resp outputListResponse
	if err := s.call(ctx, "GetOutputList", nil, &resp); err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(resp.Outputs))
	for _, o := range resp.Outputs {
		outputs = append(outputs, Output{
			Name:   o.OutputName,
			Kind:   o.OutputKind,
			Active: o.OutputActive,
		})
	}

	return outputs, nil
}

func (s *session) OutputStatus(ctx context.Context, name string) (OutputStatus, error) {
	var resp outputStatusResponse
	data := map[string]string{"outputName": name}
	if err := s.call(ctx, "GetOutputStatus", data, &resp); err != nil {
		return OutputStatus{}, err
	}

	return OutputStatus{
		Active:        resp.OutputActive,
		Reconnecting:  resp.OutputReconnecting,
		Bytes:         counter(resp.OutputBytes),
		SkippedFrames: counter(resp.OutputSkippedFrames),
		TotalFrames:   counter(resp.OutputTotalFrames),
		Duration:      time.Duration(resp.OutputDuration * float64(time.Millisecond)),
	}, nil
}

func (s *session) StreamStatus(ctx context.Context) (StreamStatus, error) {
	var resp outputStatusResponse
	if err := s.call(ctx, "GetStreamStatus", nil, &resp); err != nil {
		return StreamStatus{}, err
	}

	return StreamStatus{
		Active:        resp.OutputActive,
		Reconnecting:  resp.OutputReconnecting,
		Bytes:         counter(resp.OutputBytes),
		SkippedFrames: counter(resp.OutputSkippedFrames),
		TotalFrames:   counter(resp.OutputTotalFrames),
		Duration:      time.Duration(resp.OutputDuration * float64(time.Millisecond)),
	}, nil
}

func (s *session) StreamServiceSettings(ctx context.Context) (StreamServiceSettings, error) {
	var resp streamServiceSettingsResponse
	if err := s.call(ctx, "GetStreamServiceSettings", nil, &resp); err != nil {
		return StreamServiceSettings{}, err
	}

	return StreamServiceSettings{
		Type:   resp.StreamServiceType,
		Server: resp.StreamServiceSettings.Server,
		Key:    resp.StreamServiceSettings.Key,
	}, nil
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))

	if err := s.conn.Close(); err != nil {
		return errors.New().Wrap(ErrClosed, err)
	}
	return nil
}
