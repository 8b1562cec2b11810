package chat

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/onnwee/slot-tender/slots"
)

const (
	replyUnauthorized   = "⛔ No autorizado."
	replyReset          = "🔄 Todos los números desmarcados."
	replyStorageFailure = "⚠️ No se pudo acceder al registro. Intentá de nuevo."
)

// Replies that name a command use the prefix the sender typed: "/" on
// Telegram, "!" on Twitch.

func startReply(prefix string) string {
	return fmt.Sprintf("¡Hola! Este es tu bot de números.\nUsá %shelp para ver comandos.", prefix)
}

func helpReply(prefix string, listLimit int) string {
	return fmt.Sprintf(`Comandos:
%[1]stoggle 025  -> Tacha/destacha el número 025
%[1]sstatus 025  -> Muestra si 025 está ocupado o disponible
%[1]slista       -> Lista números ocupados (primeros %[2]d)
%[1]sreset       -> Limpia todos los marcados`, prefix, listLimit)
}

func toggleReply(slot slots.Slot, state slots.State) string {
	if state == slots.Occupied {
		return fmt.Sprintf("✅ %s marcado como OCUPADO.", slot)
	}
	return fmt.Sprintf("↩️ %s desmarcado (disponible).", slot)
}

func statusReply(slot slots.Slot, state slots.State) string {
	if state == slots.Occupied {
		return fmt.Sprintf("%s está OCUPADO.", slot)
	}
	return fmt.Sprintf("%s está DISPONIBLE.", slot)
}

// listReply shows the listed slots and the true total, which may exceed len(listed).
func listReply(listed []slots.Slot, total int) string {
	joined := strings.Join(lo.Map(listed, func(s slots.Slot, _ int) string { return s.String() }), ", ")
	if joined == "" {
		joined = "Ninguno"
	}
	return fmt.Sprintf("Ocupados (%d): %s", total, joined)
}

func usageReply(prefix, command string) string { return fmt.Sprintf("Usá: %s%s 025", prefix, command) }

func invalidReply(prefix, command string) string {
	return fmt.Sprintf("Número inválido. Ej: %s%s 025", prefix, command)
}
