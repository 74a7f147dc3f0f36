package query

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"time-ledger/internal/apperr"
	"time-ledger/internal/cost"
	"time-ledger/internal/csvexport"
	"time-ledger/internal/models"
)

// Row is a matching entry enriched with reference names and billed cost.
type Row struct {
	ID uint `json:"id"`
	models.EntryFields

	Username      string `json:"username"`
	ProjectName   string `json:"project"`
	TaskName      string `json:"task,omitempty"`
	LaborCodeName string `json:"labor_code,omitempty"`

	Rate decimal.Decimal `json:"rate"`
	Cost decimal.Decimal `json:"cost"`
}

type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// Run returns every entry matching f ordered by id, costed at each
// project's current rate.
func (e *Engine) Run(ctx context.Context, f Filter) ([]Row, error) {
	f = f.Normalize()

	var entries []models.TimeEntry
	err := e.DB.WithContext(ctx).
		Scopes(f.Scope).
		Preload("User").
		Preload("Project").
		Preload("Task").
		Preload("LaborCode").
		Order("time_entries.id asc").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Persistence("query entries", err)
	}

	rows := make([]Row, 0, len(entries))
	for _, te := range entries {
		if !f.Match(te.EntryFields) {
			continue
		}
		rows = append(rows, toRow(te))
	}
	return rows, nil
}

func toRow(te models.TimeEntry) Row {
	row := Row{
		ID:          te.ID,
		EntryFields: te.EntryFields,
		Username:    te.User.Username,
		ProjectName: te.Project.Name,
		Rate:        te.Project.Rate,
		Cost:        cost.Cost(te.Project.Rate, te.Hours, te.Minutes),
	}
	if te.Task != nil {
		row.TaskName = te.Task.Name
	}
	if te.LaborCode != nil {
		row.LaborCodeName = te.LaborCode.Name
	}
	return row
}

// ExportRows projects query rows onto the CSV export shape.
func ExportRows(rows []Row) []csvexport.Row {
	out := make([]csvexport.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, csvexport.Row{
			Username:    r.Username,
			Project:     r.ProjectName,
			Task:        r.TaskName,
			LaborCode:   r.LaborCodeName,
			Description: r.Description,
			Date:        r.Date,
			Hours:       r.Hours,
			Minutes:     r.Minutes,
			Cost:        r.Cost,
		})
	}
	return out
}

type Summary struct {
	Entries int             `json:"entries"`
	Hours   int             `json:"hours"`
	Minutes int             `json:"minutes"`
	Cost    decimal.Decimal `json:"cost"`
}

// Totals sums durations and costs; minutes are carried into hours.
func Totals(rows []Row) Summary {
	var s Summary
	s.Cost = decimal.Zero
	total := 0
	for _, r := range rows {
		total += int(r.Hours)*60 + int(r.Minutes)
		s.Cost = s.Cost.Add(r.Cost)
	}
	s.Entries = len(rows)
	s.Hours, s.Minutes = total/60, total%60
	return s
}
