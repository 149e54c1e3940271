package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// idemRecord stores the first completed response for an Idempotency-Key.
type idemRecord struct {
	requestHash string
	status      int
	body        []byte
	done        bool
}

// idemStore is a bounded in-process key store. There is exactly one writer
// process, so no durable table is needed; the oldest key is evicted once
// the cap is reached.
type idemStore struct {
	mu    sync.Mutex
	keys  map[string]*idemRecord
	order []string
	cap   int
}

func newIdemStore(cap int) *idemStore {
	return &idemStore{keys: map[string]*idemRecord{}, cap: cap}
}

// put inserts under the caller-held lock.
func (s *idemStore) put(key string, rec *idemRecord) {
	if len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.keys, oldest)
	}
	s.keys[key] = rec
	s.order = append(s.order, key)
}

const maxIdemKeys = 4096

// Idempotency processes Idempotency-Key for mutating HTTP methods: replays
// the stored response on retry, rejects key reuse with a different request,
// and otherwise lets the handler run once. Guards cash-receipt and import
// endpoints against double submits. Each call owns its own key store.
func Idempotency() fiber.Handler {
	store := newIdemStore(maxIdemKeys)

	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		// Deterministic request hash: method|path|body
		h := sha256.New()
		h.Write([]byte(method))
		h.Write([]byte{'\n'})
		h.Write([]byte(c.OriginalURL()))
		h.Write([]byte{'\n'})
		h.Write(c.Body())
		reqHash := hex.EncodeToString(h.Sum(nil))

		store.mu.Lock()
		rec, seen := store.keys[key]
		if seen {
			if rec.requestHash != reqHash {
				store.mu.Unlock()
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Idempotency-Key reuse with different request"})
			}
			if rec.done {
				status, body := rec.status, rec.body
				store.mu.Unlock()
				c.Status(status)
				return c.Send(body)
			}
			// In-flight request with the same key: let it race; single-writer
			// stores make the second application a no-op.
		} else {
			store.put(key, &idemRecord{requestHash: reqHash})
		}
		store.mu.Unlock()

		if err := c.Next(); err != nil {
			return err
		}

		resp := c.Response().Body()
		body := make([]byte, len(resp))
		copy(body, resp)

		store.mu.Lock()
		if rec := store.keys[key]; rec != nil {
			rec.status = c.Response().StatusCode()
			rec.body = body
			rec.done = true
		}
		store.mu.Unlock()
		return nil
	}
}
