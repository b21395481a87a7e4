package push_dispatcher

import (
	"encoding/json"

	"github.com/gomezmon2/latidos/internal/domain/notification"
)

const (
	payloadIcon  = "/logo.png"
	payloadBadge = "/badge.png"
	tagPrefix    = "latidos-"
)

type pushPayload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon"`
	Badge string         `json:"badge"`
	Tag   string         `json:"tag"`
	Data  map[string]any `json:"data"`
}

// buildPayload shapes the message the service worker displays. The tag
// is derived from the kind so the client can collapse duplicate-kind
// pushes. Data always carries a navigation URL; a producer-supplied
// url wins over the "/" fallback.
func buildPayload(n *notification.Queued) ([]byte, error) {
	data := map[string]any{
		"url":  "/",
		"type": string(n.Kind),
	}
	for k, v := range n.Data {
		data[k] = v
	}

	return json.Marshal(pushPayload{
		Title: n.Title,
		Body:  n.Body,
		Icon:  payloadIcon,
		Badge: payloadBadge,
		Tag:   tagPrefix + string(n.Kind),
		Data:  data,
	})
}
