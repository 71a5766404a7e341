package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/houseoftheai/server/internal/middleware"
)

func postJSON(t *testing.T, client *http.Client, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, client *http.Client, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// signupAndVerify drives the full two-step registration and returns the
// client holding the session cookie.
func signupAndVerify(t *testing.T, ts *testServer, name, email, password string) (*http.Client, map[string]any) {
	t.Helper()
	client := ts.client(t)
	base := ts.Server.URL

	resp, body := postJSON(t, client, base+"/api/auth/signup", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "signup: %v", body)
	tempID, _ := body["tempId"].(string)
	require.NotEmpty(t, tempID)

	resp, body = postJSON(t, client, base+"/api/auth/verify-otp", map[string]string{
		"tempId": tempID, "otp": ts.sender.lastCode(t),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "verify-otp: %v", body)
	return client, body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := getJSON(t, ts.client(t), ts.Server.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
}

func TestSignupVerifyFlow(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL
	client := ts.client(t)

	resp, body := postJSON(t, client, base+"/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP sent. Please verify to complete signup.", body["message"])
	tempID := body["tempId"].(string)

	msg, ok := ts.sender.last()
	require.True(t, ok)
	assert.Equal(t, "ada@x.com", msg.To)

	resp, body = postJSON(t, client, base+"/api/auth/verify-otp", map[string]string{
		"tempId": tempID, "otp": ts.sender.lastCode(t),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Signup complete!", body["message"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@x.com", user["email"])
	assert.Equal(t, true, user["emailVerified"])
	assert.NotContains(t, user, "password", "password hash must never be serialized")

	// Session cookie from verify-otp authenticates /me.
	resp, body = getJSON(t, client, base+"/api/auth/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := body["user"].(map[string]any)
	assert.Equal(t, "ada@x.com", me["email"])
}

func TestSignupDuplicateAccount(t *testing.T) {
	ts := newTestServer(t)
	signupAndVerify(t, ts, "Ada", "ada@x.com", "secret123")

	resp, body := postJSON(t, ts.client(t), ts.Server.URL+"/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered.", body["message"])
}

func TestVerifyOTPErrors(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL
	client := ts.client(t)

	resp, bodyMap := postJSON(t, client, base+"/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tempID := bodyMap["tempId"].(string)
	code := ts.sender.lastCode(t)

	t.Run("wrong code", func(t *testing.T) {
		resp, body := postJSON(t, client, base+"/api/auth/verify-otp", map[string]string{
			"tempId": tempID, "otp": "000000",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid OTP.", body["message"])
	})

	t.Run("unknown tempId", func(t *testing.T) {
		resp, body := postJSON(t, client, base+"/api/auth/verify-otp", map[string]string{
			"tempId": bson.NewObjectID().Hex(), "otp": code,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Signup session expired.", body["message"])
	})

	t.Run("expired code", func(t *testing.T) {
		id, err := bson.ObjectIDFromHex(tempID)
		require.NoError(t, err)
		ts.pending.setExpiry(id, time.Now().Add(-time.Minute))

		resp, body := postJSON(t, client, base+"/api/auth/verify-otp", map[string]string{
			"tempId": tempID, "otp": code,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "OTP expired.", body["message"])
	})
}

func TestResendOTP(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL
	client := ts.client(t)

	resp, body := postJSON(t, client, base+"/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tempID := body["tempId"].(string)
	firstCode := ts.sender.lastCode(t)

	resp, body = postJSON(t, client, base+"/api/auth/resend-otp", map[string]string{"tempId": tempID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP resent successfully.", body["message"])
	secondCode := ts.sender.lastCode(t)

	if firstCode != secondCode {
		resp, body = postJSON(t, client, base+"/api/auth/verify-otp", map[string]string{
			"tempId": tempID, "otp": firstCode,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid OTP.", body["message"], "superseded code must not verify")
	}

	resp, body = postJSON(t, client, base+"/api/auth/verify-otp", map[string]string{
		"tempId": tempID, "otp": secondCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", body)

	// The pending record is gone after promotion; resend now fails.
	resp, body = postJSON(t, client, base+"/api/auth/resend-otp", map[string]string{"tempId": tempID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Signup expired.", body["message"])
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL
	signupAndVerify(t, ts, "Ada", "ada@x.com", "secret123")

	t.Run("indistinguishable failures", func(t *testing.T) {
		resp1, body1 := postJSON(t, ts.client(t), base+"/api/auth/login", map[string]string{
			"email": "ada@x.com", "password": "wrong-password",
		})
		resp2, body2 := postJSON(t, ts.client(t), base+"/api/auth/login", map[string]string{
			"email": "nobody@x.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, resp1.StatusCode)
		assert.Equal(t, resp1.StatusCode, resp2.StatusCode)
		assert.Equal(t, body1["message"], body2["message"])
		assert.Equal(t, "Invalid email or password.", body1["message"])
	})

	t.Run("success issues session", func(t *testing.T) {
		client := ts.client(t)
		resp, body := postJSON(t, client, base+"/api/auth/login", map[string]string{
			"email": "ada@x.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Login successful", body["message"])

		resp, body = getJSON(t, client, base+"/api/auth/me")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ada@x.com", body["user"].(map[string]any)["email"])
	})
}

func TestGoogleLogin(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL

	t.Run("creates account on first contact", func(t *testing.T) {
		client := ts.client(t)
		resp, body := postJSON(t, client, base+"/api/auth/google", map[string]string{
			"googleId": "goog-1", "email": "grace@x.com", "name": "Grace",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Google login successful", body["message"])
		assert.Equal(t, true, body["user"].(map[string]any)["emailVerified"])

		resp, _ = getJSON(t, client, base+"/api/auth/me")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("reuses existing password account", func(t *testing.T) {
		_, verified := signupAndVerify(t, ts, "Ada", "ada@x.com", "secret123")
		existingID := verified["user"].(map[string]any)["id"]

		resp, body := postJSON(t, ts.client(t), base+"/api/auth/google", map[string]string{
			"googleId": "goog-2", "email": "ada@x.com", "name": "Ada",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, body["user"].(map[string]any)["id"])
	})
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL

	t.Run("me without cookie", func(t *testing.T) {
		resp, body := getJSON(t, ts.client(t), base+"/api/auth/me")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Not authorized — No token", body["message"])
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		client, _ := signupAndVerify(t, ts, "Ada", "ada@x.com", "secret123")

		resp, body := postJSON(t, client, base+"/api/auth/logout", map[string]string{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Logged out successfully", body["message"])

		resp, _ = getJSON(t, client, base+"/api/auth/me")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deleted account invalidates session", func(t *testing.T) {
		client, verified := signupAndVerify(t, ts, "Linus", "linus@x.com", "secret123")

		idHex := verified["user"].(map[string]any)["id"].(string)
		id, err := bson.ObjectIDFromHex(idHex)
		require.NoError(t, err)
		ts.users.delete(id)

		resp, body := getJSON(t, client, base+"/api/auth/me")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "User no longer exists", body["message"])
	})

	t.Run("cookie attributes", func(t *testing.T) {
		client := ts.client(t)
		resp, bodyMap := postJSON(t, client, base+"/api/auth/signup", map[string]string{
			"name": "Tim", "email": "tim@x.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, _ := json.Marshal(map[string]string{
			"tempId": bodyMap["tempId"].(string), "otp": ts.sender.lastCode(t),
		})
		req, err := http.NewRequest(http.MethodPost, base+"/api/auth/verify-otp", bytes.NewReader(data))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		raw, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer raw.Body.Close()

		var sessionCookie *http.Cookie
		for _, c := range raw.Cookies() {
			if c.Name == middleware.SessionCookieName {
				sessionCookie = c
			}
		}
		require.NotNil(t, sessionCookie, "verify-otp must set the session cookie")
		assert.True(t, sessionCookie.HttpOnly)
		assert.Equal(t, 7*24*60*60, sessionCookie.MaxAge)
		assert.Equal(t, http.SameSiteStrictMode, sessionCookie.SameSite)
	})
}

func TestChatEndpoints(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL

	t.Run("unauthorized", func(t *testing.T) {
		resp, _ := postJSON(t, ts.client(t), base+"/api/chats/save", map[string]string{
			"aiType": "poet", "message": "hi", "response": "verse",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	client, _ := signupAndVerify(t, ts, "Ada", "ada@x.com", "secret123")

	t.Run("save and history", func(t *testing.T) {
		resp, body := postJSON(t, client, base+"/api/chats/save", map[string]string{
			"aiType": "poet", "message": "write me a poem", "response": "roses are red",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "%v", body)
		assert.Equal(t, true, body["success"])

		resp, body = getJSON(t, client, base+"/api/chats/history/poet")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		history := body["history"].([]any)
		require.Len(t, history, 1)
		entry := history[0].(map[string]any)
		assert.Equal(t, "write me a poem", entry["message"])
		assert.Equal(t, "roses are red", entry["response"])

		// Other assistants keep separate histories.
		resp, body = getJSON(t, client, base+"/api/chats/history/coder")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, body["history"])
	})

	t.Run("invalid assistant type", func(t *testing.T) {
		resp, body := postJSON(t, client, base+"/api/chats/save", map[string]string{
			"aiType": "doctor", "message": "hi", "response": "hello",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid AI type: doctor", body["error"])

		resp, _ = getJSON(t, client, base+"/api/chats/history/doctor")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := postJSON(t, client, base+"/api/chats/save", map[string]string{"aiType": "poet"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestVisitorCounter(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL
	client := ts.client(t)

	resp, body := getJSON(t, client, base+"/api/visitors")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"], "no visitorId just reads the count")

	resp, body = getJSON(t, client, base+"/api/visitors?visitorId=v-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, body = getJSON(t, client, base+"/api/visitors?visitorId=v-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"], "repeat visitor must not double count")

	resp, body = getJSON(t, client, base+"/api/visitors?visitorId=v-2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])
}

func TestFeedback(t *testing.T) {
	ts := newTestServer(t)
	base := ts.Server.URL

	t.Run("persists and forwards", func(t *testing.T) {
		resp, body := postJSON(t, ts.client(t), base+"/api/feedback", map[string]string{
			"name": "Ada", "email": "ada@x.com", "message": "love the poet bot",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Feedback sent successfully!", body["message"])

		msg, ok := ts.sender.last()
		require.True(t, ok)
		assert.Equal(t, "support@houseoftheai.app", msg.To)
		assert.Equal(t, "ada@x.com", msg.ReplyTo)
		assert.Equal(t, "New Feedback from Ada", msg.Subject)
		assert.Contains(t, msg.BodyHTML, "love the poet bot")

		require.Len(t, ts.feedback.feedback, 1)
	})

	t.Run("email failure", func(t *testing.T) {
		ts.sender.setErr(errors.New("smtp down"))
		defer ts.sender.setErr(nil)

		resp, body := postJSON(t, ts.client(t), base+"/api/feedback", map[string]string{
			"name": "Ada", "email": "ada@x.com", "message": "hello?",
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Unable to send feedback.", body["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := postJSON(t, ts.client(t), base+"/api/feedback", map[string]string{"name": "Ada"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSignupEmailFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.sender.setErr(fmt.Errorf("provider unavailable"))

	resp, body := postJSON(t, ts.client(t), ts.Server.URL+"/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Signup failed.", body["message"])

	// The staged record was compensated away; a later signup starts clean.
	ts.sender.setErr(nil)
	resp, _ = postJSON(t, ts.client(t), ts.Server.URL+"/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
