// ToDo List Mail Relay Receiver Example
//
// A minimal endpoint for MAIL_DRIVER=relay. It verifies the request
// signature and prints the reminder instead of sending it; a real relay
// would hand the message to its mail provider at the marked spot.
//
// Usage:
//   export MAIL_RELAY_SECRET="the same value the API uses"
//   go run main.go
//
// Then start the API with MAIL_RELAY_URL=http://your-host:9000/relay

package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

const (
	maxBodyBytes = 1 << 20
	replayWindow = 5 * time.Minute
)

// RelayMessage is the body posted by the API for every reminder.
type RelayMessage struct {
	MessageID string `json:"message_id"`
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
}

func main() {
	secret := os.Getenv("MAIL_RELAY_SECRET")
	if secret == "" {
		log.Fatal("MAIL_RELAY_SECRET environment variable is required")
	}

	seen := newSeenSet(10_000)

	http.HandleFunc("/relay", relayHandler(secret, seen))
	http.HandleFunc("/health", healthHandler)

	log.Println("Starting mail relay receiver on :9000")
	log.Fatal(http.ListenAndServe(":9000", nil))
}

func relayHandler(secret string, seen *seenSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		ts, err := strconv.ParseInt(r.Header.Get("X-Todo-Timestamp"), 10, 64)
		if err != nil {
			http.Error(w, "Missing timestamp", http.StatusUnauthorized)
			return
		}
		if !verifySignature(secret, r.Header.Get("X-Todo-Signature"), ts, body, time.Now()) {
			log.Println("Rejected request with invalid or stale signature")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		var msg RelayMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		// Retries reuse the message id.
		if !seen.add(msg.MessageID) {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Hand msg to the mail provider here.
		log.Printf("Reminder %s to %s: %q", msg.MessageID, msg.To, msg.Subject)

		w.WriteHeader(http.StatusAccepted)
	}
}

// verifySignature checks the hex HMAC-SHA256 of "{timestamp}.{body}".
func verifySignature(secret, signature string, ts int64, body []byte, now time.Time) bool {
	if d := now.Sub(time.Unix(ts, 0)); d > replayWindow || d < -replayWindow {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10) + "."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// seenSet remembers recent message ids, forgetting everything once full.
type seenSet struct {
	mu    sync.Mutex
	limit int
	ids   map[string]struct{}
}

func newSeenSet(limit int) *seenSet {
	return &seenSet{limit: limit, ids: make(map[string]struct{})}
}

func (s *seenSet) add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	if len(s.ids) >= s.limit {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
	return true
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
