package notification

import (
	"fmt"

	"github.com/google/uuid"
)

const maxBodyRunes = 120

// Constructors below are the executable form of the producer contract:
// every queue row carries a ready-to-display title/body pair plus a
// navigation URL in Data.

func NewMessage(userID uuid.UUID, sender, text string, conversationID uuid.UUID) *Queued {
	return &Queued{
		UserID: userID,
		Kind:   KindNewMessage,
		Title:  fmt.Sprintf("Nuevo mensaje de %s", sender),
		Body:   truncateRunes(text, maxBodyRunes),
		Data: map[string]any{
			"url": "/chat/" + conversationID.String(),
		},
	}
}

func NewComment(userID uuid.UUID, author, storyTitle string, experienceID uuid.UUID) *Queued {
	return &Queued{
		UserID: userID,
		Kind:   KindNewComment,
		Title:  "Nuevo comentario",
		Body:   fmt.Sprintf("%s comentó en %q", author, storyTitle),
		Data: map[string]any{
			"url": "/experience/" + experienceID.String(),
		},
	}
}

func NewReaction(userID uuid.UUID, reactor, storyTitle string, experienceID uuid.UUID) *Queued {
	return &Queued{
		UserID: userID,
		Kind:   KindNewReaction,
		Title:  "Nueva reacción",
		Body:   fmt.Sprintf("A %s le gustó tu historia %q", reactor, storyTitle),
		Data: map[string]any{
			"url": "/experience/" + experienceID.String(),
		},
	}
}

func NewConnectionRequest(userID uuid.UUID, requester string) *Queued {
	return &Queued{
		UserID: userID,
		Kind:   KindConnectionRequest,
		Title:  "Nueva solicitud de conexión",
		Body:   fmt.Sprintf("%s quiere conectar contigo", requester),
		Data: map[string]any{
			"url": "/compartidos",
		},
	}
}

func NewConnectionAccepted(userID uuid.UUID, accepter string) *Queued {
	return &Queued{
		UserID: userID,
		Kind:   KindConnectionAccepted,
		Title:  "Solicitud aceptada",
		Body:   fmt.Sprintf("%s aceptó tu solicitud de conexión", accepter),
		Data: map[string]any{
			"url": "/compartidos",
		},
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
