package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/errors"
	fio "github.com/flowatlas/flowatlas/pkg/io"
	"github.com/flowatlas/flowatlas/pkg/observability"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/session"
	"github.com/flowatlas/flowatlas/pkg/timelapse"
)

const writeWait = 10 * time.Second

// Message types sent to timelapse clients.
const (
	msgSession = "session"
	msgFrame   = "frame"
	msgState   = "state"
	msgError   = "error"
)

// Actions accepted from timelapse clients.
const (
	actionPlay   = "play"
	actionPause  = "pause"
	actionToggle = "toggle"
	actionStep   = "step"
	actionYear   = "year"
)

type clientMessage struct {
	Action string `json:"action"`
	Year   string `json:"year,omitempty"`
}

type serverMessage struct {
	Type    string         `json:"type"`
	Session string         `json:"session,omitempty"`
	Years   []string       `json:"years,omitempty"`
	Legend  *binner.Legend `json:"legend,omitempty"`
	Frame   *fio.Frame     `json:"frame,omitempty"`
	State   string         `json:"state,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// wsConn serialises writes. The sequencer goroutine and the read loop both
// send frames.
type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) send(m serverMessage) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(writeWait))
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) sendError(err error) error {
	return w.send(serverMessage{Type: msgError, Error: errors.UserMessage(err)})
}

func (s *Server) handleTimelapse(w http.ResponseWriter, r *http.Request) {
	if len(s.regions) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no map geometry loaded"))
		return
	}
	q := r.URL.Query()
	opts := s.requestOptions(r)
	if m := q.Get("mode"); m != "" {
		opts.Mode = m
	}
	if v := q.Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid interval: %q", v))
			return
		}
		opts.Interval = d
	}
	mode, err := timelapse.ParseMode(opts.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	ws := &wsConn{c: conn}

	emit := pipeline.EmitterFunc(func(ctx context.Context, cmd pipeline.RenderCommand) error {
		m, ok := cmd.(pipeline.MapCommand)
		if !ok {
			return nil
		}
		fr := m.Frame()
		return ws.send(serverMessage{Type: msgFrame, Frame: &fr})
	})
	ctrl, err := pipeline.NewController(s.runner, s.mapDS, s.names, opts, emit)
	if err != nil {
		ws.sendError(err)
		conn.Close()
		return
	}
	sess := session.New(ctrl, ctrl.Timelapse(mode), s.ttl)

	// The request context is not cancelled when a hijacked connection
	// drops, so the sequencer gets its own.
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		conn.Close()
		s.store.Delete(context.Background(), sess.ID)
		s.logger.Debug("timelapse session closed", "session", sess.ID)
	}()
	if err := s.store.Set(ctx, sess); err != nil {
		ws.sendError(err)
		return
	}

	legend := ctrl.Legend()
	if err := ws.send(serverMessage{Type: msgSession, Session: sess.ID, Years: sess.Sequencer.Years(), Legend: &legend}); err != nil {
		return
	}
	s.logger.Debug("timelapse session opened", "session", sess.ID, "mode", mode, "interval", opts.Interval)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "session", sess.ID, "error", err)
			}
			return
		}
		sess.Touch()

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			ws.sendError(errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed message"))
			continue
		}
		if err := s.dispatch(ctx, ws, sess, msg); err != nil {
			ws.sendError(err)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, ws *wsConn, sess *session.Session, msg clientMessage) error {
	seq := sess.Sequencer
	switch msg.Action {
	case actionPlay:
		seq.Start(ctx)
	case actionPause:
		seq.Stop()
	case actionToggle:
		seq.Toggle(ctx)
	case actionStep:
		if year, _ := seq.Step(); year == "" {
			return errors.New(errors.ErrCodeInvalidInput, "timelapse has finished")
		}
		return nil
	case actionYear:
		if !seq.Override(msg.Year) {
			return errors.New(errors.ErrCodeInvalidYear, "year %q is not in the timelapse", msg.Year)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown action %q", msg.Action)
	}

	state := seq.State()
	observability.Timelapse().OnStateChange(ctx, state == timelapse.Running)
	return ws.send(serverMessage{Type: msgState, State: state.String()})
}
