package llm

import "fmt"

const (
	placeholderEN = "No message provided"
	placeholderFR = "Pas de message fourni"
)

const promptEN = `Analyze the following mirror hour and message. Return a short spiritual interpretation:

Time: %s
Message: %s

Response:`

const promptFR = `Analysez l'heure miroir et le message suivants. Retournez une interprétation spirituelle concise et directe, sans commencer par "Interprétation en français:" :

Heure: %s
Message: %s

Réponse:`

// BuildPrompt embeds the time and message verbatim into the template
// for the given language code. "fr" selects the French wording; every
// other code falls back to English. An empty message is replaced by the
// language's placeholder.
func BuildPrompt(timeStr, message, language string) string {
	if language == "fr" {
		if message == "" {
			message = placeholderFR
		}
		return fmt.Sprintf(promptFR, timeStr, message)
	}
	if message == "" {
		message = placeholderEN
	}
	return fmt.Sprintf(promptEN, timeStr, message)
}
