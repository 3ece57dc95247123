package models

import (
	"time"

	"github.com/dmitrymomot/swallow/pkg/model"
	"github.com/dmitrymomot/swallow/pkg/query"
)

// JobsTable is the table job postings live in.
const JobsTable = "jobs"

// Job is one job posting.
type Job struct {
	CreatedAt time.Time `json:"createdAt"`
	Company   *string   `json:"company"`
	Title     string    `json:"title"`
	ID        int64     `json:"id"`
}

// JobFields maps the columns of JobsTable onto Job.
var JobFields = model.Fields[Job]{
	"id":         model.Int64(func(j *Job) *int64 { return &j.ID }),
	"title":      model.String(func(j *Job) *string { return &j.Title }),
	"company":    model.StringPtr(func(j *Job) **string { return &j.Company }),
	"created_at": model.Time(func(j *Job) *time.Time { return &j.CreatedAt }),
}

// NewJobs returns the Job model over exec.
func NewJobs(exec query.Executor, opts ...model.Option) *model.Model[Job] {
	return model.New(exec, JobsTable, JobFields, opts...)
}
