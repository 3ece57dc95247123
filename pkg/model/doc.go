// Package model maps query results onto typed records.
//
// Each record type declares the columns it understands as [Fields], built
// from typed setters instead of reflection:
//
//	type Job struct {
//	    ID    int64
//	    Title string
//	}
//
//	var jobFields = model.Fields[Job]{
//	    "id":    model.Int64(func(j *Job) *int64 { return &j.ID }),
//	    "title": model.String(func(j *Job) *string { return &j.Title }),
//	}
//
//	jobs := model.New(exec, "jobs", jobFields)
//	open, err := jobs.Get(ctx, jobs.Query().Where("status", "=", "open"))
//
// Columns the record does not declare are dropped by default; use
// WithUnknownColumns(FailOnUnknown) to reject them instead.
package model
