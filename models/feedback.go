package models

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackEntry is one stored student submission
type FeedbackEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	EnrollmentNo string             `bson:"enrollment_no" json:"enrollment_no"`
	Feedback     string             `bson:"feedback" json:"feedback"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// FeedbackInput is what a student submits, before it is stored
type FeedbackInput struct {
	Name         string `json:"name" validate:"required,min=2"`
	EnrollmentNo string `json:"enrollment_no" validate:"required,min=5"`
	Feedback     string `json:"feedback" validate:"required,min=10,max=2000"`
}

// FieldErrors maps a json field name to the message shown next to it.
type FieldErrors map[string]string

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "Name must be at least 2 characters",
		"min":      "Name must be at least 2 characters",
	},
	"enrollment_no": {
		"required": "Invalid enrollment number format",
		"min":      "Invalid enrollment number format",
	},
	"feedback": {
		"required": "Feedback must be at least 10 characters",
		"min":      "Feedback must be at least 10 characters",
		"max":      "Feedback must be at most 2000 characters",
	},
}

// Validate checks the input against the form rules. The result is empty when the input is valid.
func (in FeedbackInput) Validate() FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(in)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		errs[fe.Field()] = msg
	}
	return errs
}

// MissingFields returns the json names of empty fields, in form order.
func (in FeedbackInput) MissingFields() []string {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.EnrollmentNo == "" {
		missing = append(missing, "enrollment_no")
	}
	if in.Feedback == "" {
		missing = append(missing, "feedback")
	}
	return missing
}

// NewFeedbackEntry builds the document to store, stamping it with now in UTC.
// The ID is left empty for the store to assign.
func NewFeedbackEntry(in FeedbackInput, now time.Time) FeedbackEntry {
	return FeedbackEntry{
		Name:         in.Name,
		EnrollmentNo: in.EnrollmentNo,
		Feedback:     in.Feedback,
		CreatedAt:    now.UTC(),
	}
}
