// Package mcp exposes cardfont's card search and rendering as Model Context
// Protocol tools.
package mcp

const (
	name         = "cardfont"
	instructions = `MCP Server 'cardfont' inspects an Anki collection with the rule sets ("panels") that decide which cards are rendered in a random font.

When to use these tools:
- Checking which cards a panel selects before studying
- Explaining why a card was or was not selected
- Previewing the markup produced for a card's question or answer
- Listing the font families that may be chosen for a writing system

REQUIRED workflow:
1. Use 'find_cards' to list the cards selected by one panel or by every panel
2. Use 'evaluate_card' with a card id from that output to see the result of each predicate
3. Use 'render_card' with the card's question or answer text to see the transformed markup
`

	// Output limits keep tool results readable.
	defaultLimit = 50
	maxTextLen   = 4000
)

// truncateString truncates a string to maxLen bytes with a marker if needed.
func truncateString(str string, maxLen int) string {
	if len(str) > maxLen {
		return str[:maxLen] + "\n[OUTPUT TRUNCATED]"
	}

	return str
}
