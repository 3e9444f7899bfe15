package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeRankingRecompute JobType = "ranking_recompute"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// Recompute trigger reasons
const (
	ReasonManual    = "manual"
	ReasonScheduled = "scheduled"
)

// RankingRecomputeJobPayload contains the payload for ranking recompute jobs
type RankingRecomputeJobPayload struct {
	RequestedBy uint   `json:"requested_by"` // admin user id, 0 for the scheduler
	Reason      string `json:"reason"`
}

// ToMap converts the payload to a map for storage
func (p RankingRecomputeJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"requested_by": p.RequestedBy,
		"reason":       p.Reason,
	}
}

// RankingRecomputeJobPayloadFromMap creates a payload from a map
func RankingRecomputeJobPayloadFromMap(data map[string]interface{}) (*RankingRecomputeJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload RankingRecomputeJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing marks the job as processing
func (j *Job) MarkAsProcessing() {
	j.Status = JobStatusProcessing
	now := time.Now()
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted marks the job as completed
func (j *Job) MarkAsCompleted() {
	j.Status = JobStatusCompleted
	now := time.Now()
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed marks the job as failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying marks the job for retry
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
