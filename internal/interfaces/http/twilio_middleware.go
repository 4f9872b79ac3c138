package http

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"

	"github.com/gofiber/fiber/v2"
)

// TwilioSignatureMiddleware valida la cabecera X-Twilio-Signature del webhook:
// HMAC-SHA1 del auth token sobre la URL pública más los parámetros del form
// ordenados alfabéticamente (esquema de firma de Twilio). Con authToken vacío
// la validación se desactiva (entorno de desarrollo).
func TwilioSignatureMiddleware(authToken, publicURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authToken == "" {
			return c.Next()
		}

		got := c.Get("X-Twilio-Signature")
		if got == "" {
			return c.Status(fiber.StatusForbidden).SendString("firma ausente")
		}

		args := c.Request().PostArgs()
		keys := make([]string, 0, args.Len())
		params := make(map[string]string, args.Len())
		args.VisitAll(func(k, v []byte) {
			keys = append(keys, string(k))
			params[string(k)] = string(v)
		})
		sort.Strings(keys)

		mac := hmac.New(sha1.New, []byte(authToken))
		mac.Write([]byte(publicURL))
		for _, k := range keys {
			mac.Write([]byte(k))
			mac.Write([]byte(params[k]))
		}
		want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(want), []byte(got)) {
			return c.Status(fiber.StatusForbidden).SendString("firma inválida")
		}
		return c.Next()
	}
}
