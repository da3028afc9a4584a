package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/avolkov/mucbridge/internal/auth"
	"github.com/avolkov/mucbridge/internal/muc"
	"github.com/avolkov/mucbridge/internal/proto"
	"github.com/avolkov/mucbridge/internal/session"
	"github.com/avolkov/mucbridge/internal/utils"
)

// SessionFactory opens a fresh XMPP session for one websocket client.
type SessionFactory func(ctx context.Context) (*session.Session, error)

// Handler upgrades HTTP connections and bridges them to a per-client
// muc.Bridge backed by its own XMPP session.
type Handler struct {
	auth       *auth.Service
	newSession SessionFactory
	log        *zerolog.Logger
}

// NewHandler builds a new websocket handler.
func NewHandler(authService *auth.Service, factory SessionFactory, logger *zerolog.Logger) *Handler {
	return &Handler{
		auth:       authService,
		newSession: factory,
		log:        logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	claims, err := h.authenticate(ctx, conn, r.URL.Query().Get("token"))
	if err != nil {
		h.log.Warn().Err(err).Msg("ws auth failed")
		conn.Close(websocket.StatusPolicyViolation, "unauthorized")
		return
	}

	sess, err := h.newSession(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("user", claims.Username).Msg("xmpp session dial failed")
		conn.Close(websocket.StatusInternalError, "upstream unavailable")
		return
	}
	defer sess.Close()

	cl := newClient(utils.NewID(), claims.Username, claims.Nick)
	bridge := muc.New(sess, cl, h.log)
	sess.Register(bridge)

	errCh := make(chan error, 3)
	go func() {
		errCh <- sess.Run(ctx)
	}()
	go func() {
		errCh <- h.readLoop(ctx, conn, bridge, cl)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, cl)
	}()

	err = <-errCh
	cancel()
	<-errCh
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("user", claims.Username).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// authenticate validates the query token, or waits for a hello frame
// carrying one when the query is empty.
func (h *Handler) authenticate(ctx context.Context, conn *websocket.Conn, queryToken string) (*auth.Claims, error) {
	token := queryToken
	if token == "" {
		var hello proto.Inbound
		if err := wsjson.Read(ctx, conn, &hello); err != nil {
			return nil, err
		}
		if hello.Type != proto.InboundTypeHello {
			return nil, errors.New("expected hello frame")
		}
		var data proto.HelloData
		if len(hello.Data) > 0 {
			if err := json.Unmarshal(hello.Data, &data); err != nil {
				return nil, err
			}
		}
		token = data.Token
	}
	return h.auth.ValidateToken(token)
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, bridge *muc.Bridge, cl *client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}
		if inbound.Type == proto.InboundTypeHello {
			continue
		}
		if perr := dispatch(bridge, inbound, cl.nick, cl.result); perr != nil {
			h.log.Debug().
				Str("code", perr.Code).
				Str("command", inbound.Command).
				Str("client", cl.id).
				Str("user", cl.user).
				Msg("rejected inbound frame")
			cl.transportError(perr)
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, cl *client) error {
	for {
		select {
		case env := <-cl.out:
			if err := wsjson.Write(ctx, conn, env); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
