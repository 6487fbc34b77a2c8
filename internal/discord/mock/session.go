// Package mock holds Discord test doubles.
package mock

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// InteractionResponder stands in for a *discordgo.Session wherever a
// discord.Responder is accepted. Set Err to make every reply fail.
type InteractionResponder struct {
	Err error

	mu           sync.Mutex
	Responses    []*discordgo.InteractionResponse
	Interactions []*discordgo.Interaction
}

// InteractionRespond records the reply together with the interaction it
// answers.
func (m *InteractionResponder) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Interactions = append(m.Interactions, i)
	m.Responses = append(m.Responses, resp)
	return m.Err
}

// LastResponse returns the latest recorded reply, or nil before the first.
func (m *InteractionResponder) LastResponse() *discordgo.InteractionResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.Responses); n > 0 {
		return m.Responses[n-1]
	}
	return nil
}
