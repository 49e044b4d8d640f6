package space

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"tela/canvas"
	"tela/geometry"
)

// MessageAddElement is the only bridge message type the session accepts.
const MessageAddElement = "ADD_ELEMENT"

// addJitter spreads repeated adds so they don't land on the exact same spot.
const addJitter = 24.0

// BridgeMessage is the envelope external surfaces use to push an element
// into a running session.
type BridgeMessage struct {
	Type    string        `json:"type"`
	Payload BridgePayload `json:"payload"`
}

// BridgePayload describes the element to create. Data carries optional
// type-specific seed fields; unknown keys are ignored.
type BridgePayload struct {
	ElementType string                 `json:"elementType"`
	Data        map[string]interface{} `json:"data"`
}

// ParseBridgeMessage decodes and validates a bridge message.
func ParseBridgeMessage(raw []byte) (BridgeMessage, error) {
	var msg BridgeMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return BridgeMessage{}, fmt.Errorf("decoding bridge message: %w", err)
	}
	if msg.Type != MessageAddElement {
		return BridgeMessage{}, fmt.Errorf("unsupported bridge message type %q", msg.Type)
	}
	if msg.Payload.ElementType == "" {
		return BridgeMessage{}, fmt.Errorf("bridge message missing elementType")
	}
	return msg, nil
}

// HandleAddMessage creates the element a bridge message describes, centered
// near the given world point with a small jitter, and schedules a save.
func (s *Session) HandleAddMessage(raw []byte, center geometry.Point) (canvas.Element, error) {
	msg, err := ParseBridgeMessage(raw)
	if err != nil {
		return canvas.Element{}, err
	}

	if _, ok := s.Current(); !ok {
		return canvas.Element{}, fmt.Errorf("no open workspace")
	}
	col := s.Collection()

	t := canvas.Type(msg.Payload.ElementType)
	sz := canvas.DefaultSize(t)
	pos := geometry.Point{
		X: center.X - sz.W/2 + (rand.Float64()*2-1)*addJitter,
		Y: center.Y - sz.H/2 + (rand.Float64()*2-1)*addJitter,
	}

	el := col.Create(t, pos)
	applySeedData(&el, msg.Payload.Data)
	col.Replace(el)
	s.MarkElementsDirty()
	return el, nil
}

func applySeedData(el *canvas.Element, data map[string]interface{}) {
	str := func(key string) string {
		v, _ := data[key].(string)
		return v
	}
	el.Text = str("text")
	el.URL = str("url")
	el.EmbedURL = str("embedUrl")
	el.Symbol = str("symbol")
	el.Quote = str("quote")
	if done, ok := data["done"].(bool); ok {
		el.Done = done
	}
}
