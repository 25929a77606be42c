package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"gamevault-backend/internal/models"
	"gamevault-backend/internal/services"
)

const emailQueue = "queue:email"

// Mailer drains the email queue so auth requests never wait on SMTP.
type Mailer struct {
	redis       *redis.Client
	email       *services.EmailService
	workerCount int
	stopChan    chan struct{}
}

func NewMailer(redisClient *redis.Client, email *services.EmailService, workerCount int) *Mailer {
	return &Mailer{
		redis:       redisClient,
		email:       email,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (m *Mailer) Start() {
	for i := 0; i < m.workerCount; i++ {
		go m.worker(i)
	}
	log.Printf("Started %d mailer goroutines", m.workerCount)
}

func (m *Mailer) Stop() {
	close(m.stopChan)
}

func (m *Mailer) worker(id int) {
	for {
		select {
		case <-m.stopChan:
			log.Printf("Mailer %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := m.redis.BLPop(ctx, 30*time.Second, emailQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.EmailJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Mailer %d: failed to parse email job: %v", id, err)
			continue
		}

		switch job.Kind {
		case "verify":
			err = m.email.SendVerificationCode(job.To, job.Code)
		case "reset":
			err = m.email.SendPasswordResetCode(job.To, job.Code)
		default:
			log.Printf("Mailer %d: unknown email kind %q", id, job.Kind)
			continue
		}

		if err != nil {
			log.Printf("Mailer %d: failed to send %s email to %s: %v", id, job.Kind, job.To, err)
		}
	}
}
