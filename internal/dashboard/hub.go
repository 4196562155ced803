package dashboard

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Plant3D/internal/equipment"
	"Plant3D/internal/observability"
	"Plant3D/internal/review"
)

const (
	TypeScenario    = "scenario"
	TypeBaseline    = "baseline"
	TypeReset       = "reset"
	TypeOutcome     = "outcome"
	TypeBaselineSet = "baselineSet"
	TypeError       = "error"
)

// Msg is one websocket frame. Content carries JSON for the given type.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// BaselineReply is the content of a baselineSet message.
type BaselineReply struct {
	Baseline equipment.Baseline  `json:"baseline"`
	Warnings []equipment.Warning `json:"warnings,omitempty"`
}

// Hub processes one connection. Only handleRequest touches the baseline and
// only handleResponse writes to the connection.
type Hub struct {
	conn     *websocket.Conn
	initial  equipment.Baseline
	baseline equipment.Baseline
	defaults equipment.Defaults
	logger   *zap.Logger
	metrics  *observability.Metrics

	// request
	msg chan Msg
	// response
	reply chan Msg
}

func newHub(conn *websocket.Conn, base equipment.Baseline, d equipment.Defaults, logger *zap.Logger, m *observability.Metrics) *Hub {
	return &Hub{
		conn:     conn,
		initial:  base,
		baseline: base,
		defaults: d,
		logger:   logger,
		metrics:  m,
		msg:      make(chan Msg, 10),
		reply:    make(chan Msg, 10),
	}
}

func (h *Hub) handleRequest(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.msg:
			reply := h.dispatch(msg)
			select {
			case h.reply <- reply:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) handleResponse(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				h.logger.Warn("write dashboard reply", zap.String("type", reply.Type), zap.Error(err))
			}
		}
	}
}

func (h *Hub) dispatch(msg Msg) Msg {
	switch msg.Type {
	case TypeScenario:
		var sc review.Scenario
		if msg.Content != "" {
			if err := json.Unmarshal([]byte(msg.Content), &sc); err != nil {
				return errorMsg("invalid scenario: " + err.Error())
			}
		}
		out, err := review.Evaluate(h.baseline, sc)
		if err != nil {
			return errorMsg(err.Error())
		}
		h.metrics.ScenariosEvaluated.WithLabelValues(out.Risk.Band).Inc()
		return encode(TypeOutcome, out)
	case TypeBaseline:
		var p equipment.Parameters
		if err := json.Unmarshal([]byte(msg.Content), &p); err != nil {
			return errorMsg("invalid parameters: " + err.Error())
		}
		b, warns := review.Resolve(p, h.defaults)
		h.baseline = b
		return encode(TypeBaselineSet, BaselineReply{Baseline: b, Warnings: warns})
	case TypeReset:
		h.baseline = h.initial
		return encode(TypeBaselineSet, BaselineReply{Baseline: h.baseline})
	default:
		h.logger.Debug("unknown dashboard message", zap.String("type", msg.Type))
		return errorMsg("unknown message type " + msg.Type)
	}
}

func encode(typ string, v any) Msg {
	data, err := json.Marshal(v)
	if err != nil {
		return errorMsg(err.Error())
	}
	return Msg{Type: typ, Content: string(data)}
}

func errorMsg(text string) Msg {
	return Msg{Type: TypeError, Content: text}
}
