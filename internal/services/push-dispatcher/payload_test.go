package push_dispatcher

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gomezmon2/latidos/internal/domain/notification"
)

func decodePayload(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestBuildPayload_Shape(t *testing.T) {
	n := &notification.Queued{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Kind:   notification.KindNewComment,
		Title:  "Nuevo comentario",
		Body:   `Ana comentó en "Mi historia"`,
		Data:   map[string]any{"url": "/experience/abc", "experience_id": "abc"},
	}

	b, err := buildPayload(n)
	require.NoError(t, err)

	m := decodePayload(t, b)
	require.Equal(t, "Nuevo comentario", m["title"])
	require.Equal(t, `Ana comentó en "Mi historia"`, m["body"])
	require.Equal(t, "/logo.png", m["icon"])
	require.Equal(t, "/badge.png", m["badge"])
	require.Equal(t, "latidos-new_comment", m["tag"])

	data, ok := m["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "/experience/abc", data["url"])
	require.Equal(t, "new_comment", data["type"])
	require.Equal(t, "abc", data["experience_id"])
}

func TestBuildPayload_DefaultURL(t *testing.T) {
	n := &notification.Queued{
		ID:    uuid.New(),
		Kind:  notification.KindNewReaction,
		Title: "Nueva reacción",
		Body:  "A Luis le gustó tu historia",
	}

	b, err := buildPayload(n)
	require.NoError(t, err)

	data := decodePayload(t, b)["data"].(map[string]any)
	require.Equal(t, "/", data["url"], "missing navigation URL falls back to the app root")
}

func TestBuildPayload_ProducerURLWins(t *testing.T) {
	n := &notification.Queued{
		ID:    uuid.New(),
		Kind:  notification.KindConnectionRequest,
		Title: "Nueva solicitud de conexión",
		Body:  "Eva quiere conectar contigo",
		Data:  map[string]any{"url": "/compartidos"},
	}

	b, err := buildPayload(n)
	require.NoError(t, err)

	data := decodePayload(t, b)["data"].(map[string]any)
	require.Equal(t, "/compartidos", data["url"])
}
