package route

import (
	"github.com/gofiber/fiber/v2"

	"kajianku_backend/internals/constants"
	schedulerController "kajianku_backend/internals/features/school/scheduler/controller"
	"kajianku_backend/internals/features/school/scheduler/service"
	"kajianku_backend/internals/middlewares"
	authMiddleware "kajianku_backend/internals/middlewares/auth"
)

func SchedulerRoutes(router fiber.Router, scheduler *service.SchedulerService, engines *service.EngineSet) {
	ctrl := schedulerController.NewSchedulerController(scheduler, engines)

	schedulerRoutes := router.Group("/scheduler")

	// ⏱ Trigger dari cron eksternal / operator — digate CRON_SECRET
	schedulerRoutes.Post("/run",
		middlewares.SchedulerTriggerRateLimiter(),
		middlewares.CronSecretMiddleware(),
		ctrl.Run)

	// 👀 Status boleh dilihat teacher ke atas; start khusus admin/owner (JWT)
	schedulerRoutes.Get("/status",
		authMiddleware.AuthMiddleware(),
		authMiddleware.OnlyRoles(constants.RoleErrorTeacher("melihat status scheduler"), constants.TeacherAndAbove...),
		ctrl.Status)

	schedulerRoutes.Post("/start",
		authMiddleware.AuthMiddleware(),
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("menjalankan scheduler"), constants.AdminAndAbove...),
		ctrl.Start)
}
