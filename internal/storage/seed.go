package storage

import (
	"context"
	"time"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

type demoJob struct {
	platform int
	jobType  types.JobType
	subType  string
	reward   string
	data     models.JobData
	age      time.Duration
	result   string
	failure  string
}

// seedDemoData fills a fresh store with a small, consistent history. Every
// completed job goes through CompleteJob so the balance matches the ledger.
func seedDemoData(s *Store) {
	ctx := context.Background()
	now := s.now()

	var platformIDs []string
	for _, p := range []models.Platform{
		{Name: "2Captcha", APIKey: "demo-2captcha-key", APIURL: "https://2captcha.com/in.php", Status: types.PlatformConnected},
		{Name: "Anti-Captcha", APIKey: "demo-anticaptcha-key", APIURL: "https://api.anti-captcha.com", Status: types.PlatformConnected},
		{Name: "CapMonster Cloud", APIKey: "", APIURL: "https://api.capmonster.cloud", Status: types.PlatformDisconnected},
	} {
		p.CreatedAt = now.Add(-72 * time.Hour)
		created, err := s.CreatePlatform(ctx, &p)
		if err != nil {
			return
		}
		platformIDs = append(platformIDs, created.ID)
	}

	jobs := []demoJob{
		{platform: 0, jobType: types.JobTypeCaptcha, subType: "image", reward: "0.0025",
			data: models.JobData{ImageURL: "https://example.com/captcha/4711.png"}, age: 3 * time.Hour, result: "X7K9P2"},
		{platform: 0, jobType: types.JobTypeCaptcha, subType: "math", reward: "0.0010",
			data: models.JobData{Text: "What is 3 + 5?"}, age: 2 * time.Hour, result: "8"},
		{platform: 1, jobType: types.JobTypeTyping, subType: "transcription", reward: "0.0150",
			data: models.JobData{ImageURL: "https://example.com/scans/receipt-0192.jpg"}, age: 90 * time.Minute,
			result: "ACME Hardware\nReceipt 0192\nTotal: 42.17"},
		{platform: 0, jobType: types.JobTypeCaptcha, subType: "image", reward: "0.0030",
			data: models.JobData{ImageURL: "https://example.com/captcha/blurred.png"}, age: time.Hour,
			failure: "image could not be decoded"},
		{platform: 1, jobType: types.JobTypeTyping, subType: "formatting", reward: "0.0200",
			data: models.JobData{Text: "name: Jane Doe; city: Lisbon; age: 34", Format: "json"}, age: 20 * time.Minute},
		{platform: 0, jobType: types.JobTypeCaptcha, subType: "text", reward: "0.0010",
			data: models.JobData{Text: "Type the word shown backwards: nohtyp"}, age: 5 * time.Minute},
	}

	for _, dj := range jobs {
		platformID := platformIDs[dj.platform]
		subType := dj.subType
		job, err := s.CreateJob(ctx, &models.Job{
			PlatformID: &platformID,
			Type:       dj.jobType,
			SubType:    &subType,
			Reward:     decimal.RequireFromString(dj.reward),
			Data:       dj.data,
			CreatedAt:  now.Add(-dj.age),
		})
		if err != nil {
			return
		}
		s.logDemoActivity(ctx, job.ID, "Job created", string(dj.jobType)+" job queued", types.ActivityInfo)

		switch {
		case dj.result != "":
			if _, err := s.BeginJobProcessing(ctx, job.ID); err != nil {
				return
			}
			if _, _, err := s.CompleteJob(ctx, job.ID, dj.result); err != nil {
				return
			}
			s.logDemoActivity(ctx, job.ID, "Job completed", "earned $"+dj.reward, types.ActivitySuccess)
		case dj.failure != "":
			if _, err := s.BeginJobProcessing(ctx, job.ID); err != nil {
				return
			}
			if _, err := s.FailJob(ctx, job.ID, dj.failure); err != nil {
				return
			}
			s.logDemoActivity(ctx, job.ID, "Job failed", dj.failure, types.ActivityError)
		}
	}

	for _, id := range platformIDs {
		_, _ = s.RefreshPlatformStats(ctx, id)
	}
}

func (s *Store) logDemoActivity(ctx context.Context, jobID, action, details string, status types.ActivityStatus) {
	_, _ = s.CreateActivityLog(ctx, &models.ActivityLog{
		JobID:   &jobID,
		Action:  action,
		Details: &details,
		Status:  status,
	})
}
