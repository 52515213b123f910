package handlers

import (
	"net/http"
	"testing"

	"github.com/lifeline/backend/internal/models"
)

func TestContactDonor(t *testing.T) {
	env := setupTestEnv(t)

	_, donorToken := createTestUser(t, env, "donor1", "pw12345", models.UserRoleUser)
	sender, senderToken := createTestUser(t, env, "seeker", "pw12345", models.UserRoleUser)

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/donors", donorPayload("Springfield"), sessionHeaders(donorToken))
	assertSuccessMessage(t, resp, "Successfully registered as donor")

	var donor models.Donor
	if err := env.db.First(&donor).Error; err != nil {
		t.Fatalf("expected donor row: %v", err)
	}

	t.Run("rejects a malformed donor id", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/contact-donor", map[string]any{
			"donorId":       "nope",
			"message":       "hi",
			"senderContact": "555-0000",
		}, sessionHeaders(senderToken))
		body := decodeJSONMap(t, resp)
		assertErrorResponse(t, resp.StatusCode, body, http.StatusBadRequest, "invalid donor id")
	})

	t.Run("stores the message for the donor", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/contact-donor", map[string]any{
			"donorId":       donor.ID.String(),
			"message":       "Can you donate this weekend?",
			"senderContact": "555-0000",
		}, sessionHeaders(senderToken))
		assertSuccessMessage(t, resp, "Message sent to donor")

		var message models.ContactMessage
		if err := env.db.First(&message, "donor_id = ?", donor.ID).Error; err != nil {
			t.Fatalf("expected message row: %v", err)
		}
		if message.SenderID != sender.ID {
			t.Fatalf("expected sender %s, got %s", sender.ID, message.SenderID)
		}
		if message.Status != models.MessageStatusUnread {
			t.Fatalf("expected unread status, got %q", message.Status)
		}
	})
}

func TestReceivedMessages(t *testing.T) {
	env := setupTestEnv(t)

	_, donorToken := createTestUser(t, env, "donor1", "pw12345", models.UserRoleUser)
	_, otherToken := createTestUser(t, env, "donor2", "pw12345", models.UserRoleUser)
	_, senderToken := createTestUser(t, env, "seeker", "pw12345", models.UserRoleUser)

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/donors", donorPayload("Springfield"), sessionHeaders(donorToken))
	assertSuccessMessage(t, resp, "Successfully registered as donor")
	resp = performJSONRequest(t, env.app, http.MethodPost, "/api/donors", donorPayload("Portland"), sessionHeaders(otherToken))
	assertSuccessMessage(t, resp, "Successfully registered as donor")

	var donor models.Donor
	if err := env.db.First(&donor, "city = ?", "Springfield").Error; err != nil {
		t.Fatalf("expected donor row: %v", err)
	}

	resp = performJSONRequest(t, env.app, http.MethodPost, "/api/contact-donor", map[string]any{
		"donorId":       donor.ID.String(),
		"message":       "Urgent O+ needed",
		"senderContact": "555-0000",
	}, sessionHeaders(senderToken))
	assertSuccessMessage(t, resp, "Message sent to donor")

	t.Run("message routes to the donor's owning user", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/contact-messages/received", nil, sessionHeaders(donorToken))
		assertStatus(t, resp, http.StatusOK)
		messages := decodeJSONSlice(t, resp)

		if len(messages) != 1 {
			t.Fatalf("expected 1 message, got %d", len(messages))
		}
		if messages[0]["message"] != "Urgent O+ needed" {
			t.Fatalf("unexpected message body: %v", messages[0])
		}
		if messages[0]["senderName"] != "Test User" || messages[0]["senderEmail"] != "seeker@test.local" {
			t.Fatalf("expected joined sender identity, got %v", messages[0])
		}
	})

	t.Run("message is invisible to other donor owners", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/contact-messages/received", nil, sessionHeaders(otherToken))
		messages := decodeJSONSlice(t, resp)
		if len(messages) != 0 {
			t.Fatalf("expected no messages for the other donor, got %d", len(messages))
		}
	})

	t.Run("message is invisible to the sender's own inbox", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/contact-messages/received", nil, sessionHeaders(senderToken))
		messages := decodeJSONSlice(t, resp)
		if len(messages) != 0 {
			t.Fatalf("expected no messages for the sender, got %d", len(messages))
		}
	})
}
