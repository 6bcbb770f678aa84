// Varian standalone sekali-jalan: dipanggil dari cron eksternal / operator.
// Exit code 0 hanya bila semua sub-task sukses; pekerjaan yang gagal aman
// diulang karena semua operasi engine idempoten.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"kajianku_backend/internals/configs"
	database "kajianku_backend/internals/databases"
	schedulerService "kajianku_backend/internals/features/school/scheduler/service"
)

const runTimeout = 10 * time.Minute

func main() {
	// 📝 Log ke file append + console sekaligus
	logFile, err := os.OpenFile("taskrunner.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("⚠️ Gagal buka taskrunner.log, log hanya ke console: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	configs.LoadEnv()
	database.ConnectDB()
	database.TunePool()

	loc := configs.Location()
	store := schedulerService.NewStore(database.DB)
	engines := schedulerService.NewEngineSet(store, loc)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	failed := 0

	run := func(job string) {
		log.Printf("[TASKRUNNER] menjalankan job %s...", job)
		if err := engines.Run(ctx, job); err != nil {
			log.Printf("[TASKRUNNER] job %s gagal: %v", job, err)
			failed++
			return
		}
		log.Printf("[TASKRUNNER] job %s selesai", job)
	}

	run(schedulerService.JobRelease)
	run(schedulerService.JobExpiryDaily)
	run(schedulerService.JobExpiryFixed)

	// Evaluasi performa hanya di jam yang dikonfigurasi (default 23 lokal)
	evalHour := 23
	if v := configs.GetEnv("TASKRUNNER_EVAL_HOUR"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			evalHour = parsed
		}
	}
	if time.Now().In(loc).Hour() == evalHour {
		run(schedulerService.JobPerformance)
	} else {
		log.Printf("[TASKRUNNER] evaluasi performa dilewati (bukan jam %d)", evalHour)
	}

	run(schedulerService.JobAutoLaunch)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if failed > 0 {
		log.Printf("[TASKRUNNER] selesai dengan %d job gagal", failed)
		os.Exit(1)
	}
	log.Println("[TASKRUNNER] semua job sukses")
}
