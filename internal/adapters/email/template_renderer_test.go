package email

import (
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_Render(t *testing.T) {
	data := &domain.TicketEmailData{
		Email:      "a@example.com",
		TicketID:   "t-42",
		EventTitle: "Go <Meetup>",
		EventCity:  "Almaty",
		EventPlace: "Hub",
		StartAt:    time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	}
	r := NewTemplateRenderer()

	t.Run("confirmation", func(t *testing.T) {
		subject, html, text, err := r.Render("ticket_confirmed", data)
		require.NoError(t, err)
		assert.Equal(t, "Your ticket for Go <Meetup>", subject)
		assert.Contains(t, html, "Go &lt;Meetup&gt;")
		assert.Contains(t, html, "t-42")
		assert.Contains(t, text, "Hub, Almaty")
		assert.Contains(t, text, "Sun, 01 Jun 2025 18:00 UTC")
	})

	t.Run("cancellation", func(t *testing.T) {
		subject, _, text, err := r.Render("ticket_cancelled", data)
		require.NoError(t, err)
		assert.Equal(t, "Registration cancelled: Go <Meetup>", subject)
		assert.Contains(t, text, "t-42")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, _, _, err := r.Render("welcome", data)
		assert.Error(t, err)
	})
}
