// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	schedulerRoute "kajianku_backend/internals/features/school/scheduler/route"
	schedulerService "kajianku_backend/internals/features/school/scheduler/service"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, scheduler *schedulerService.SchedulerService, engines *schedulerService.EngineSet) {
	startTime = time.Now()

	BaseRoutes(app)

	api := app.Group("/api")

	log.Println("[INFO] Setting up SchedulerRoutes...")
	schedulerRoute.SchedulerRoutes(api, scheduler, engines)
}
