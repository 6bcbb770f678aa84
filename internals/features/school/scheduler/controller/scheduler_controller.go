package controller

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kajianku_backend/internals/features/school/scheduler/dto"
	"kajianku_backend/internals/features/school/scheduler/service"
	helper "kajianku_backend/internals/helpers"
)

var validate = validator.New()

// Budget satu job trigger manual — sama dengan timeout tick cron.
const runTimeout = 5 * time.Minute

type SchedulerController struct {
	Scheduler *service.SchedulerService
	Engines   *service.EngineSet
}

func NewSchedulerController(scheduler *service.SchedulerService, engines *service.EngineSet) *SchedulerController {
	return &SchedulerController{Scheduler: scheduler, Engines: engines}
}

// 🟢 GET /api/scheduler/status
// Status driver: jalan/tidak + jadwal firing berikutnya per job.
func (ctrl *SchedulerController) Status(c *fiber.Ctx) error {
	return helper.Success(c, "Status scheduler", ctrl.Scheduler.Status())
}

// 🟡 POST /api/scheduler/start
// Idempoten: dipanggil saat sudah jalan → laporkan already-running, bukan error.
func (ctrl *SchedulerController) Start(c *fiber.Ctx) error {
	started := ctrl.Scheduler.Start()
	msg := "Scheduler dijalankan"
	if !started {
		msg = "Scheduler sudah jalan"
	}
	return helper.Success(c, msg, ctrl.Scheduler.Status())
}

// 🟡 POST /api/scheduler/run
// Trigger manual satu engine (varian HTTP dari tick) — digate CRON_SECRET
// di middleware. Job berjalan sinkron di context sendiri, bukan context
// request: timeout request 5 detik terlalu pendek untuk satu pass penuh.
func (ctrl *SchedulerController) Run(c *fiber.Ctx) error {
	var req dto.RunSchedulerRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format data tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	log.Printf("[SCHEDULER] trigger manual job=%s", req.Job)
	if err := ctrl.Engines.Run(ctx, req.Job); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "Job selesai", fiber.Map{"job": req.Job})
}
