package middlewares

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"

	"kajianku_backend/internals/configs"
)

// CronSecretMiddleware menggate varian HTTP dari operasi scheduler.
// Secret dibandingkan constant-time; CRON_SECRET kosong → tolak semua.
func CronSecretMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := configs.CronSecret
		if secret == "" {
			log.Println("[WARNING] CRON_SECRET kosong — trigger scheduler ditolak")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Scheduler trigger belum dikonfigurasi",
			})
		}

		got := c.Get("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			log.Printf("[WARNING] trigger scheduler tanpa secret valid dari %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
