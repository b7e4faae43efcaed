package survey

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

type (
	// Survey is a student's weekly wellbeing check-in, tied to a module registration.
	Survey struct {
		SurveyID              int          `db:"survey_id" json:"survey_id"`
		RegistrationID        int          `db:"registration_id" json:"registration_id"`
		WeekNumber            int          `db:"week_number" json:"week_number"`
		SubmittedAt           time.Time    `db:"submitted_at" json:"submitted_at"`
		StressLevel           null.Int     `db:"stress_level" json:"stress_level"`
		SleepHours            null.Float64 `db:"sleep_hours" json:"sleep_hours"`
		SocialConnectionScore null.Int     `db:"social_connection_score" json:"social_connection_score"`
		Comments              null.String  `db:"comments" json:"comments"`
	}

	NewSurvey struct {
		RegistrationID        int         `json:"registration_id" validate:"required"`
		WeekNumber            int         `json:"week_number" validate:"required,min=1,max=52"`
		StressLevel           int         `json:"stress_level" validate:"required,min=1,max=5"`
		SleepHours            float64     `json:"sleep_hours" validate:"min=0,max=24"`
		SocialConnectionScore int         `json:"social_connection_score" validate:"required,min=1,max=5"`
		Comments              null.String `json:"comments"`
	}

	// BulkRequest wraps a batch of surveys submitted in one call.
	BulkRequest struct {
		Surveys []NewSurvey `json:"surveys"`
	}

	QueryFilter struct {
		StudentID  string `query:"student_id"`
		ModuleID   string `query:"module_id"`
		WeekNumber int    `query:"week_number"`
	}
)

func (ns *NewSurvey) Validate(validate *validator.Validate) error {
	if ns.Comments.Valid {
		ns.Comments.String = core.CleanString(ns.Comments.String)
	}
	return validate.Struct(ns)
}

func (br *BulkRequest) Validate(validate *validator.Validate) error {
	if len(br.Surveys) == 0 {
		return core.NewValidationError(errors.New("no surveys provided"))
	}
	for i := range br.Surveys {
		if err := br.Surveys[i].Validate(validate); err != nil {
			return err
		}
	}
	return nil
}

func (f *QueryFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.StudentID == "" && f.ModuleID == "" && f.WeekNumber == 0
}

func (f *QueryFilter) Clean() {
	if f == nil {
		return
	}
	f.StudentID = core.CleanString(f.StudentID)
	f.ModuleID = core.CleanString(f.ModuleID)
}
